package csvmanager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/csv-manager/internal/config"
	"github.com/magabrotheeeer/csv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/csv-manager/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/csv-manager/internal/lib/sl"
	"github.com/magabrotheeeer/csv-manager/internal/metrics"
	"github.com/magabrotheeeer/csv-manager/internal/migrations"
	"github.com/magabrotheeeer/csv-manager/internal/paymentprovider"
	"github.com/magabrotheeeer/csv-manager/internal/services/auth"
	"github.com/magabrotheeeer/csv-manager/internal/services/billing"
	"github.com/magabrotheeeer/csv-manager/internal/services/csvdata"
	"github.com/magabrotheeeer/csv-manager/internal/storage/repository"
)

// App — HTTP-сервер вместе с ресурсами, которые нужно закрыть при остановке.
type App struct {
	server        *http.Server
	logger        *slog.Logger
	cfg           *config.Config
	handle        *repository.Handle
	rabbitConn    *amqp.Connection
	rabbitChannel *amqp.Channel
}

// New подключается к базе, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "csvmanager.New"

	handle := repository.NewHandle(cfg.StorageConnectionString)
	db, err := handle.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		cfg:    cfg,
		handle: handle,
	}

	var publisher billing.Publisher = billing.NoopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := app.connectRabbit(ctx, cfg.RabbitMQ)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = p
	} else {
		logger.Info("rabbitmq url is empty, billing events will not be published")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	jwtMaker := jwt.NewJWTMaker(cfg.Session.Secret, cfg.Session.TTL)
	provider := paymentprovider.NewStripeClient(cfg.Stripe.SecretKey, cfg.WebhookSecret, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:     logger,
		Session:    cfg.Session,
		HTTPServer: cfg.HTTPServer,
		JWTMaker:   jwtMaker,
		Users:      db,
		DB:         db,
		AuthSvc:    auth.New(db, jwtMaker, collector),
		CsvSvc:     csvdata.New(logger, db, collector),
		BillingSvc: billing.New(logger, provider, db, publisher, collector, cfg.DefaultOrigin),
		Gatherer:   reg,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

func (a *App) connectRabbit(ctx context.Context, cfg config.RabbitMQ) (*rabbitmq.Publisher, error) {
	conn, err := rabbitmq.Connect(ctx, cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetBillingQueues())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	a.rabbitConn = conn
	a.rabbitChannel = ch
	a.logger.Info("billing events publisher is ready", slog.String("exchange", cfg.Exchange))
	return rabbitmq.NewPublisher(ch, cfg.Exchange), nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.rabbitChannel != nil {
		if err := a.rabbitChannel.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.rabbitConn != nil {
		if err := a.rabbitConn.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if a.handle.Ready() {
		db, _ := a.handle.Acquire(context.Background())
		if err := db.Close(); err != nil {
			a.logger.Warn("failed to close database", sl.Err(err))
		}
	}
}
