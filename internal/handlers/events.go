package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventflow/internal/models"
	"eventflow/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// EventHandler serves the discovery dashboard and event details
type EventHandler struct {
	discovery *services.EventDiscoveryService
	logger    *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(discovery *services.EventDiscoveryService, logger *slog.Logger) *EventHandler {
	return &EventHandler{discovery: discovery, logger: logger}
}

// EventDetail is the event details page payload
type EventDetail struct {
	*models.Event
	SoldOut     bool `json:"soldOut"`
	Free        bool `json:"free"`
	MaxPerOrder int  `json:"maxPerOrder"`
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filters, err := parseDiscoveryFilters(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, h.discovery.Discover(r.Context(), filters))
}

// LoadMore handles GET /api/events/more, returning the page after ?page=
func (h *EventHandler) LoadMore(w http.ResponseWriter, r *http.Request) {
	filters, err := parseDiscoveryFilters(r.URL.Query())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	result, err := h.discovery.LoadMore(r.Context(), filters)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetEvent handles GET /api/events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID")
		return
	}

	event, err := h.discovery.GetEvent(id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, EventDetail{
		Event:       event,
		SoldOut:     event.IsSoldOut(),
		Free:        event.IsFree(),
		MaxPerOrder: h.discovery.MaxPerOrder(),
	})
}

// parseDiscoveryFilters reads the dashboard filters from query parameters.
// List parameters accept repeats and comma separated values.
func parseDiscoveryFilters(q url.Values) (services.DiscoveryFilters, error) {
	errs := models.ValidationErrors{}

	filters := services.DiscoveryFilters{
		Query:      q.Get("q"),
		Categories: listParam(q, "category"),
		Locations:  listParam(q, "location"),
		EventTypes: listParam(q, "type"),
		QuickDate:  q.Get("date"),
		PriceRange: q.Get("price"),
		SortBy:     q.Get("sort"),
	}

	for key, dst := range map[string]**time.Time{"from": &filters.DateFrom, "to": &filters.DateTo} {
		if v := q.Get(key); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				errs.Add(key, "Use the YYYY-MM-DD format")
				continue
			}
			*dst = &t
		}
	}

	for key, dst := range map[string]*decimal.NullDecimal{"minPrice": &filters.PriceMin, "maxPrice": &filters.PriceMax} {
		if v := q.Get(key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil || d.IsNegative() {
				errs.Add(key, "Enter a valid amount")
				continue
			}
			*dst = decimal.NewNullDecimal(d)
		}
	}

	for key, dst := range map[string]*int{"page": &filters.Page, "perPage": &filters.PerPage} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				errs.Add(key, "Must be a positive number")
				continue
			}
			*dst = n
		}
	}
	if filters.PerPage > services.MaxPageSize {
		errs.Add("perPage", fmt.Sprintf("Must be at most %d", services.MaxPageSize))
	}

	return filters, errs.OrNil()
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
