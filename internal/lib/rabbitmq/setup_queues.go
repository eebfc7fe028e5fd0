package rabbitmq

// QueueConfig связывает имя очереди с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// Ключи маршрутизации событий биллинга.
const (
	RoutingPurchaseSucceeded  = "purchase.succeeded"
	RoutingPurchaseStatus     = "purchase.status"
	RoutingSubscriptionStatus = "subscription.status"
)

// GetBillingQueues возвращает очереди, которые слушают потребители событий биллинга.
func GetBillingQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "billing.purchases", RoutingKey: RoutingPurchaseSucceeded},
		{QueueName: "billing.purchases", RoutingKey: RoutingPurchaseStatus},
		{QueueName: "billing.subscriptions", RoutingKey: RoutingSubscriptionStatus},
	}
}
