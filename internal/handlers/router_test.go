package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eventflow/internal/logging"
	"eventflow/internal/middleware"
	"eventflow/internal/repositories"
	"eventflow/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 7, 20, 18, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type testApp struct {
	server *httptest.Server
	client *http.Client
	orders *repositories.OrderRepository
	store  *repositories.CheckoutStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := logging.Discard()

	events, err := repositories.NewFixtureEventRepository()
	require.NoError(t, err)
	tickets, err := repositories.NewFixtureTicketRepository()
	require.NoError(t, err)
	orders := repositories.NewOrderRepository()

	checkoutSvc := services.NewCheckoutService(services.CheckoutOptions{
		Pricing: services.Pricing{
			TaxRate:       decimal.RequireFromString("0.08"),
			ProcessingFee: decimal.RequireFromString("2.50"),
		},
		Payments: services.NewMockPaymentService(0, fixedClock, logger),
		Orders:   orders,
		Clock:    fixedClock,
		Logger:   logger,
	})
	store := repositories.NewCheckoutStore(checkoutSvc)

	router := NewRouter(RouterConfig{
		Discovery: services.NewEventDiscoveryService(events, services.DiscoveryOptions{
			PageSize:    12,
			MaxPerOrder: 10,
			Clock:       fixedClock,
			Logger:      logger,
		}),
		Tickets: services.NewTicketService(tickets, services.TicketOptions{
			QRURLTemplate: "https://qr.example/?data=%s",
			Clock:         fixedClock,
			Logger:        logger,
		}),
		Admin:          services.NewAdminService(events, orders, fixedClock, logger),
		Checkouts:      store,
		Session:        middleware.NewCheckoutSession("test-session-secret", 3600, false),
		PromoLimiter:   middleware.NewRateLimiter(100, time.Minute),
		AllowedOrigins: []string{"http://localhost:4028"},
		Logger:         logger,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: server,
		client: &http.Client{Jar: jar},
		orders: orders,
		store:  store,
	}
}

func (a *testApp) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeBody[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestPages(t *testing.T) {
	app := newTestApp(t)

	for _, page := range Pages {
		t.Run(page.Path, func(t *testing.T) {
			resp, body := app.do(t, http.MethodGet, page.Path, nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, page, decodeBody[Page](t, body))
		})
	}

	resp, body := app.do(t, http.MethodGet, "/no-such-page", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, Page{Path: "/no-such-page", View: NotFoundView}, decodeBody[Page](t, body))
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","service":"eventflow"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))

	resp, body = app.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "eventflow_http_requests_total")
}

func TestAPINotFoundAndMethodNotAllowed(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.do(t, http.MethodGet, "/api/nothing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "doesn't exist")

	resp, _ = app.do(t, http.MethodPut, "/api/events", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodOptions, app.server.URL+"/api/checkout/items", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:4028")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := app.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:4028", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.do(t, http.MethodGet, "/api/admin/overview", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	overview := decodeBody[services.AdminOverview](t, body)
	assert.Equal(t, 8, overview.TotalEvents)
	assert.Equal(t, 884, overview.TicketsLeft)
	assert.Equal(t, "0.00", overview.Revenue)

	resp, body = app.do(t, http.MethodPost, "/api/admin/actions", map[string]string{
		"action":   "event_suspend",
		"targetId": "6",
		"note":     "duplicate listing",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	entry := decodeBody[map[string]any](t, body)
	assert.Equal(t, "event", entry["targetType"])
	assert.Equal(t, "127.0.0.1", entry["ipAddress"])

	resp, _ = app.do(t, http.MethodPost, "/api/admin/actions", map[string]string{"action": "drop_tables"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = app.do(t, http.MethodGet, "/api/admin/audit?action=event_suspend", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodeBody[AuditLogPage](t, body)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "6", page.Entries[0].TargetID)
	assert.Contains(t, page.Actions, "payment_refund")
}

func TestCheckoutRoutes_PromoRateLimited(t *testing.T) {
	app := newTestApp(t)
	limited := NewRouter(RouterConfig{
		Discovery:    services.NewEventDiscoveryService(repositories.NewEventRepository(nil), services.DiscoveryOptions{Logger: logging.Discard()}),
		Tickets:      services.NewTicketService(repositories.NewTicketRepository(nil), services.TicketOptions{Logger: logging.Discard()}),
		Admin:        services.NewAdminService(repositories.NewEventRepository(nil), app.orders, fixedClock, logging.Discard()),
		Checkouts:    app.store,
		Session:      middleware.NewCheckoutSession("secret", 3600, false),
		PromoLimiter: middleware.NewRateLimiter(1, time.Minute),
		Logger:       logging.Discard(),
	})

	post := func(forwardedFor string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/checkout/promo", strings.NewReader(`{"code":"nope"}`))
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rr := httptest.NewRecorder()
		limited.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusUnprocessableEntity, post("10.0.0.0").Code)
	// a rotated forwarding header is not a new client
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		assert.Equal(t, http.StatusTooManyRequests, post(ip).Code)
	}
}
