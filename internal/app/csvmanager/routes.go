// Package csvmanager собирает HTTP-приложение: маршруты, сервисы и их зависимости.
package csvmanager

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/csv-manager/internal/config"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/csv/csvdownload"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/csv/csvlist"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/csv/csvupload"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/purchase/purchaselist"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/stripe/checkout"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/stripe/paymenthistory"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/stripe/subcancel"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/stripe/substatus"
	"github.com/magabrotheeeer/csv-manager/internal/http/handlers/stripe/webhook"
	"github.com/magabrotheeeer/csv-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/csv-manager/internal/metrics"
	"github.com/magabrotheeeer/csv-manager/internal/services/auth"
	"github.com/magabrotheeeer/csv-manager/internal/services/billing"
	"github.com/magabrotheeeer/csv-manager/internal/services/csvdata"
)

// Deps — зависимости, нужные маршрутам.
type Deps struct {
	Logger     *slog.Logger
	Session    config.Session
	HTTPServer config.HTTPServer
	JWTMaker   jwt.Maker
	Users      middlewarectx.UserLookup
	DB         health.Pinger
	AuthSvc    *auth.Service
	CsvSvc     *csvdata.Service
	BillingSvc *billing.Service
	Gatherer   prometheus.Gatherer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	logger := d.Logger
	loginLimiter := middlewarectx.NewIPRateLimiter(rate.Limit(d.HTTPServer.LoginRPS), d.HTTPServer.LoginBurst)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, d.DB).ServeHTTP)
	r.Handle("/metrics", metrics.Handler(d.Gatherer))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	// Вебхук проверяется подписью, а не сессией
	r.Post("/api/stripe/webhook", webhook.New(logger, d.BillingSvc).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.SessionMiddleware(logger, d.JWTMaker, d.Users, d.Session.CookieName))

		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, loginLimiter))
			r.Post("/auth/register", register.New(logger, d.AuthSvc, d.Session.CookieName, d.Session.TTL).ServeHTTP)
			r.Post("/auth/login", login.New(logger, d.AuthSvc, d.Session.CookieName, d.Session.TTL).ServeHTTP)
		})
		r.Post("/auth/logout", logout.New(logger, d.Session.CookieName).ServeHTTP)
		r.Get("/auth/me", me.New(logger, d.AuthSvc).ServeHTTP)

		// Группа с обязательной сессией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireUser(logger))

			r.Get("/csv", csvlist.New(logger, d.CsvSvc).ServeHTTP)
			r.Get("/csv/download", csvdownload.New(logger, d.CsvSvc).ServeHTTP)
			r.Post("/csv/upload", csvupload.New(logger, d.CsvSvc).ServeHTTP)

			r.Get("/purchases", purchaselist.New(logger, d.BillingSvc).ServeHTTP)

			r.Post("/stripe/checkout", checkout.New(logger, d.BillingSvc).ServeHTTP)
			r.Get("/stripe/subscription", substatus.New(logger, d.BillingSvc).ServeHTTP)
			r.Post("/stripe/subscription/cancel", subcancel.New(logger, d.BillingSvc).ServeHTTP)
			r.Get("/stripe/payments", paymenthistory.New(logger, d.BillingSvc).ServeHTTP)
		})
	})
}
