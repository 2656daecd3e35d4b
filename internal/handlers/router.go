package handlers

import (
	"log/slog"
	"net/http"
	"net/netip"

	"eventflow/internal/middleware"
	"eventflow/internal/repositories"
	"eventflow/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds everything the HTTP routes need
type RouterConfig struct {
	Discovery      *services.EventDiscoveryService
	Tickets        *services.TicketService
	Admin          *services.AdminService
	Checkouts      *repositories.CheckoutStore
	Session        *middleware.CheckoutSession
	PromoLimiter   *middleware.RateLimiter
	AllowedOrigins []string
	TrustedProxies []netip.Prefix
	Logger         *slog.Logger
}

// NewRouter builds the application's routes
func NewRouter(cfg RouterConfig) http.Handler {
	eventHandler := NewEventHandler(cfg.Discovery, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Checkouts, cfg.Discovery, cfg.Session, cfg.Logger)
	ticketHandler := NewTicketHandler(cfg.Tickets, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Admin, cfg.Checkouts, cfg.Logger)

	r := chi.NewRouter()

	r.Use(middleware.TrustedRealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.ErrorHandling(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.CleanPath)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))

	for _, page := range Pages {
		r.Get(page.Path, pageHandler(page))
	}
	r.NotFound(notFoundPage)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(middleware.NotFoundHandler().ServeHTTP)
		r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", eventHandler.ListEvents)
			r.Get("/more", eventHandler.LoadMore)
			r.Get("/{id}", eventHandler.GetEvent)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetCheckout)
			r.Delete("/", checkoutHandler.Reset)
			r.Post("/items", checkoutHandler.AddItem)
			r.Patch("/items/{itemID}", checkoutHandler.UpdateItem)
			r.Delete("/items/{itemID}", checkoutHandler.RemoveItem)
			r.With(middleware.RateLimit(cfg.PromoLimiter)).Post("/promo", checkoutHandler.ApplyPromo)
			r.Delete("/promo", checkoutHandler.RemovePromo)
			r.Put("/billing", checkoutHandler.UpdateBilling)
			r.Post("/proceed", checkoutHandler.Proceed)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/payment", checkoutHandler.SubmitPayment)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", ticketHandler.ListTickets)
			r.Get("/{id}", ticketHandler.GetTicket)
			r.Get("/{id}/qr", ticketHandler.QRCode)
			r.Post("/{id}/download", ticketHandler.Download)
			r.Post("/{id}/resend", ticketHandler.ResendEmail)
			r.Post("/{id}/transfer", ticketHandler.Transfer)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/overview", adminHandler.Overview)
			r.Post("/actions", adminHandler.LogAction)
			r.Get("/audit", adminHandler.AuditLog)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "eventflow"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
