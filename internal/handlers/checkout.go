package handlers

import (
	"log/slog"
	"net/http"

	"eventflow/internal/middleware"
	"eventflow/internal/models"
	"eventflow/internal/repositories"
	"eventflow/internal/services"

	"github.com/go-chi/chi/v5"
)

// CheckoutHandler serves the cart and checkout flow. The checkout id lives
// in the session cookie.
type CheckoutHandler struct {
	checkouts *repositories.CheckoutStore
	discovery *services.EventDiscoveryService
	session   *middleware.CheckoutSession
	logger    *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkouts *repositories.CheckoutStore, discovery *services.EventDiscoveryService, session *middleware.CheckoutSession, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkouts: checkouts,
		discovery: discovery,
		session:   session,
		logger:    logger,
	}
}

// AddItemRequest selects tickets for an event
type AddItemRequest struct {
	EventID    int    `json:"eventId"`
	TicketType string `json:"ticketType"`
	Quantity   int    `json:"quantity"`
}

// UpdateQuantityRequest sets a line item quantity; 0 removes it
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PromoRequest carries a promo code
type PromoRequest struct {
	Code string `json:"code"`
}

// PaymentRequest submits the payment form
type PaymentRequest struct {
	Method models.PaymentMethod `json:"method"`
	Card   models.CardDetails   `json:"card"`
}

// current returns the visitor's checkout, starting one when the session
// has none or names a checkout that no longer exists
func (h *CheckoutHandler) current(w http.ResponseWriter, r *http.Request) (*services.Checkout, bool) {
	c, created := h.checkouts.GetOrCreate(h.session.CheckoutID(r))
	if created {
		if err := h.session.SetCheckoutID(w, r, c.ID()); err != nil {
			h.checkouts.Delete(c.ID())
			writeServiceError(w, r, h.logger, err)
			return nil, false
		}
		h.logger.DebugContext(r.Context(), "Checkout: started", "checkout", c.ID())
	}
	return c, true
}

// GetCheckout handles GET /api/checkout. Visitors without a live checkout
// see an empty review stage; nothing is stored until they add a ticket.
func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	c, err := h.checkouts.Get(h.session.CheckoutID(r))
	if err != nil {
		c = h.checkouts.Blank()
	}
	writeJSON(w, http.StatusOK, c.View())
}

// Reset handles DELETE /api/checkout, abandoning the checkout. The next
// request starts an empty one.
func (h *CheckoutHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if id := h.session.CheckoutID(r); id != "" {
		h.checkouts.Delete(id)
	}
	if err := h.session.Clear(w, r); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/checkout/items
func (h *CheckoutHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	item, err := h.discovery.SelectTickets(req.EventID, req.TicketType, req.Quantity)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	c, ok := h.current(w, r)
	if !ok {
		return
	}
	if err := c.AddItem(item); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c.View())
}

// UpdateItem handles PATCH /api/checkout/items/{itemID}
func (h *CheckoutHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	h.mutate(w, r, func(c *services.Checkout) error {
		return c.UpdateQuantity(chi.URLParam(r, "itemID"), req.Quantity)
	})
}

// RemoveItem handles DELETE /api/checkout/items/{itemID}
func (h *CheckoutHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(c *services.Checkout) error {
		return c.RemoveItem(chi.URLParam(r, "itemID"))
	})
}

// ApplyPromo handles POST /api/checkout/promo
func (h *CheckoutHandler) ApplyPromo(w http.ResponseWriter, r *http.Request) {
	var req PromoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	h.mutate(w, r, func(c *services.Checkout) error {
		_, err := c.ApplyPromo(r.Context(), req.Code)
		return err
	})
}

// RemovePromo handles DELETE /api/checkout/promo
func (h *CheckoutHandler) RemovePromo(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(c *services.Checkout) error {
		return c.RemovePromo()
	})
}

// UpdateBilling handles PUT /api/checkout/billing. Fields are stored as
// typed; validation happens when moving to payment or paying.
func (h *CheckoutHandler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	h.mutate(w, r, func(c *services.Checkout) error {
		return c.UpdateBilling(fields)
	})
}

// Proceed handles POST /api/checkout/proceed
func (h *CheckoutHandler) Proceed(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(c *services.Checkout) error {
		return c.ProceedToPayment()
	})
}

// Back handles POST /api/checkout/back
func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, func(c *services.Checkout) error {
		return c.BackToReview()
	})
}

// SubmitPayment handles POST /api/checkout/payment. The request context
// bounds the payment wait; a client that goes away leaves the checkout in
// payment.
func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	c, ok := h.current(w, r)
	if !ok {
		return
	}

	order, err := c.SubmitPayment(r.Context(), req.Method, req.Card)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// mutate runs fn on the current checkout and answers with the new view
func (h *CheckoutHandler) mutate(w http.ResponseWriter, r *http.Request, fn func(*services.Checkout) error) {
	c, ok := h.current(w, r)
	if !ok {
		return
	}
	if err := fn(c); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c.View())
}
