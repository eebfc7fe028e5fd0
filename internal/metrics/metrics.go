// Package metrics собирает метрики сервиса для Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder — интерфейс, через который сервисы пишут метрики.
type Recorder interface {
	RecordCsvImport(rows int, err error)
	RecordWebhookEvent(eventType string)
	RecordAuthAttempt(op string, ok bool)
}

// Collector реализует Recorder поверх Prometheus.
type Collector struct {
	rowsImported  prometheus.Counter
	imports       *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	authAttempts  *prometheus.CounterVec
}

// NewCollector создаёт Collector и регистрирует метрики в reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		rowsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csvmanager_csv_rows_imported_total",
			Help: "Количество импортированных строк CSV",
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csvmanager_csv_imports_total",
			Help: "Количество загрузок CSV по результату",
		}, []string{"result"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csvmanager_webhook_events_total",
			Help: "Количество принятых событий вебхука по типу",
		}, []string{"type"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csvmanager_auth_attempts_total",
			Help: "Попытки регистрации и входа",
		}, []string{"op", "result"}),
	}

	reg.MustRegister(c.rowsImported, c.imports, c.webhookEvents, c.authAttempts)
	return c
}

func (c *Collector) RecordCsvImport(rows int, err error) {
	if err != nil {
		c.imports.WithLabelValues("error").Inc()
		return
	}
	c.imports.WithLabelValues("ok").Inc()
	c.rowsImported.Add(float64(rows))
}

func (c *Collector) RecordWebhookEvent(eventType string) {
	c.webhookEvents.WithLabelValues(eventType).Inc()
}

func (c *Collector) RecordAuthAttempt(op string, ok bool) {
	result := "fail"
	if ok {
		result = "ok"
	}
	c.authAttempts.WithLabelValues(op, result).Inc()
}

// Handler отдаёт метрики из gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop ничего не записывает.
type Noop struct{}

func (Noop) RecordCsvImport(int, error) {}
func (Noop) RecordWebhookEvent(string) {}
func (Noop) RecordAuthAttempt(string, bool) {}
