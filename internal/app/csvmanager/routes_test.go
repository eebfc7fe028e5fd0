package csvmanager

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/csv-manager/internal/config"
	"github.com/magabrotheeeer/csv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/csv-manager/internal/metrics"
	"github.com/magabrotheeeer/csv-manager/internal/models"
	"github.com/magabrotheeeer/csv-manager/internal/paymentprovider"
	"github.com/magabrotheeeer/csv-manager/internal/services/auth"
	"github.com/magabrotheeeer/csv-manager/internal/services/billing"
	"github.com/magabrotheeeer/csv-manager/internal/services/csvdata"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUserByOpenID(_ context.Context, openID string) (*models.User, error) {
	if u, ok := f[openID]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

type fakeCsvRepo struct {
	rows []models.CsvRow
}

func (f *fakeCsvRepo) ListCsvData(context.Context) ([]models.CsvRow, error) { return f.rows, nil }
func (f *fakeCsvRepo) CountCsvData(context.Context) (int, error)            { return len(f.rows), nil }

func (f *fakeCsvRepo) InsertCsvData(_ context.Context, rows []models.CsvRow) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeCsvRepo) ReplaceCsvData(_ context.Context, rows []models.CsvRow) error {
	f.rows = rows
	return nil
}

type pingOK struct{}

func (pingOK) Ping(context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, jwt.Maker) {
	t.Helper()
	return newTestRouterWithBurst(t, 100)
}

func newTestRouterWithBurst(t *testing.T, loginBurst int) (http.Handler, jwt.Maker) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("secret", time.Hour)
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	repo := &fakeCsvRepo{rows: []models.CsvRow{
		{ID: 1, Product: "Laptop", Quantity: 10, Price: decimal.RequireFromString("120000")},
	}}
	provider := paymentprovider.NewStripeClient("sk_test_123", "whsec_test", logger)

	r := chi.NewRouter()
	RegisterRoutes(r, Deps{
		Logger:     logger,
		Session:    config.Session{Secret: "secret", TTL: time.Hour, CookieName: "app_session_id"},
		HTTPServer: config.HTTPServer{LoginRPS: 0.001, LoginBurst: loginBurst},
		JWTMaker:   maker,
		Users:      fakeUsers{"local_alice_1": {ID: 1, OpenID: "local_alice_1", Name: "alice"}},
		DB:         pingOK{},
		AuthSvc:    auth.New(nil, maker, collector),
		CsvSvc:     csvdata.New(logger, repo, collector),
		BillingSvc: billing.New(logger, provider, nil, nil, collector, "http://localhost:3000"),
		Gatherer:   reg,
	})
	return r, maker
}

func TestRoutes_ProtectedRequireSession(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, rt := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/csv"},
		{http.MethodGet, "/api/v1/csv/download"},
		{http.MethodPost, "/api/v1/csv/upload"},
		{http.MethodGet, "/api/v1/purchases"},
		{http.MethodPost, "/api/v1/stripe/checkout"},
		{http.MethodGet, "/api/v1/stripe/subscription"},
		{http.MethodPost, "/api/v1/stripe/subscription/cancel"},
		{http.MethodGet, "/api/v1/stripe/payments"},
	} {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Please login")
		})
	}
}

func TestRoutes_SessionCookieGrantsAccess(t *testing.T) {
	router, maker := newTestRouter(t)
	token, err := maker.GenerateToken("local_alice_1", "alice", 1)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/csv/download", nil)
	req.AddCookie(&http.Cookie{Name: "app_session_id", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `Product,Quantity,Price\nLaptop,10,120000.00`)
}

func TestRoutes_Public(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("me without session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"OK","data":null}`, rec.Body.String())
	})

	t.Run("logout", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "csvmanager_csv_rows_imported_total")
	})

	t.Run("swagger ui", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/index.html", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "swagger-ui")
	})

	t.Run("webhook with bad signature", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/stripe/webhook", strings.NewReader(`{"id":"evt_1"}`))
		req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Webhook signature verification failed")
	})
}

func TestRoutes_LoginRateLimitIsPerClient(t *testing.T) {
	router, _ := newTestRouterWithBurst(t, 1)

	login := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnprocessableEntity, login("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, login("203.0.113.7"))
	assert.Equal(t, http.StatusUnprocessableEntity, login("198.51.100.9"))
}
