package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"eventflow/internal/middleware"
	"eventflow/internal/models"
	"eventflow/internal/services"
)

// AdminHandler serves the admin control panel
type AdminHandler struct {
	admin     *services.AdminService
	checkouts interface{ Len() int }
	logger    *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *services.AdminService, checkouts interface{ Len() int }, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, checkouts: checkouts, logger: logger}
}

// AuditLogPage is one page of the audit log
type AuditLogPage struct {
	Entries []*models.AuditLog `json:"entries"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	Actions []string           `json:"actions"`
}

// Overview handles GET /api/admin/overview
func (h *AdminHandler) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.admin.Overview(h.checkouts.Len()))
}

// LogAction handles POST /api/admin/actions. The action is recorded and
// logged; nothing is changed.
func (h *AdminHandler) LogAction(w http.ResponseWriter, r *http.Request) {
	var req models.AuditLogCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.IPAddress = middleware.GetClientIP(r)
	req.UserAgent = r.UserAgent()

	entry, err := h.admin.LogAction(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// AuditLog handles GET /api/admin/audit?page=&limit=&action=
func (h *AdminHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	page = max(page, 1)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	entries, total := h.admin.GetAuditLogs(page, limit, q.Get("action"))
	writeJSON(w, http.StatusOK, AuditLogPage{
		Entries: entries,
		Total:   total,
		Page:    page,
		Limit:   limit,
		Actions: models.AuditActions(),
	})
}
