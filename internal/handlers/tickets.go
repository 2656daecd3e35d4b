package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"eventflow/internal/models"
	"eventflow/internal/services"

	"github.com/go-chi/chi/v5"
)

// TicketHandler serves the My Tickets page
type TicketHandler struct {
	tickets *services.TicketService
	logger  *slog.Logger
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(tickets *services.TicketService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{tickets: tickets, logger: logger}
}

// TransferRequest is the transfer form. Confirm false only validates and
// returns the confirmation step; true performs the transfer.
type TransferRequest struct {
	models.TransferRequest
	Confirm bool `json:"confirm"`
}

// ListTickets handles GET /api/tickets?filter=&q=&sort=
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, h.tickets.List(q.Get("filter"), q.Get("q"), q.Get("sort")))
}

// GetTicket handles GET /api/tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.tickets.GetTicket(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// QRCode handles GET /api/tickets/{id}/qr
func (h *TicketHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	qrURL, err := h.tickets.QRCodeURL(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ticketId": id, "qrCodeUrl": qrURL})
}

// Download handles POST /api/tickets/{id}/download
func (h *TicketHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := h.tickets.DownloadPDF(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ticket-"+id+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// ResendEmail handles POST /api/tickets/{id}/resend
func (h *TicketHandler) ResendEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.tickets.ResendEmail(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Ticket email sent"})
}

// Transfer handles POST /api/tickets/{id}/transfer
func (h *TicketHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	flow, err := h.tickets.StartTransfer(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if err := flow.Submit(req.TransferRequest); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	if !req.Confirm {
		writeJSON(w, http.StatusOK, flow.View())
		return
	}

	if _, err := flow.Confirm(r.Context()); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeServiceError(w, r, h.logger, err)
			return
		}
		view := flow.View()
		if view.Errors != nil {
			writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: services.MsgTransferFailed, Fields: view.Errors})
			return
		}
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, flow.View())
}
