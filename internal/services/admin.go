package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"eventflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogStats is what the admin overview needs from the catalog
type CatalogStats interface {
	Count() int
	TicketsLeft() int
}

// OrderStats is what the admin overview needs from confirmed orders
type OrderStats interface {
	GetOrderCount() int
	GetTotalRevenue() decimal.Decimal
	GetTicketsSold() int
}

// AdminOverview holds the dashboard metric cards
type AdminOverview struct {
	TotalEvents     int    `json:"totalEvents"`
	TicketsLeft     int    `json:"ticketsLeft"`
	OrdersPlaced    int    `json:"ordersPlaced"`
	TicketsSold     int    `json:"ticketsSold"`
	Revenue         string `json:"revenue"`
	LiveCheckouts   int    `json:"liveCheckouts"`
	AuditLogEntries int    `json:"auditLogEntries"`
}

// MaxAuditEntries bounds the audit log; the oldest entries are dropped first
const MaxAuditEntries = 1000

// AdminService handles the admin control panel
type AdminService struct {
	events CatalogStats
	orders OrderStats
	clock  Clock
	logger *slog.Logger

	mu    sync.RWMutex
	audit []*models.AuditLog
}

// NewAdminService creates a new admin service
func NewAdminService(events CatalogStats, orders OrderStats, clock Clock, logger *slog.Logger) *AdminService {
	if clock == nil {
		clock = time.Now
	}
	return &AdminService{events: events, orders: orders, clock: clock, logger: logger}
}

// Overview computes the dashboard numbers. liveCheckouts comes from the
// caller since checkouts live outside the service.
func (s *AdminService) Overview(liveCheckouts int) *AdminOverview {
	s.mu.RLock()
	entries := len(s.audit)
	s.mu.RUnlock()

	return &AdminOverview{
		TotalEvents:     s.events.Count(),
		TicketsLeft:     s.events.TicketsLeft(),
		OrdersPlaced:    s.orders.GetOrderCount(),
		TicketsSold:     s.orders.GetTicketsSold(),
		Revenue:         models.FormatAmount(s.orders.GetTotalRevenue()),
		LiveCheckouts:   liveCheckouts,
		AuditLogEntries: entries,
	}
}

// LogAction records an administrative action. Actions are not applied to
// any data; they are only logged.
func (s *AdminService) LogAction(ctx context.Context, req *models.AuditLogCreateRequest) (*models.AuditLog, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	entry := &models.AuditLog{
		ID:         uuid.New().String(),
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Note:       req.Note,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
		CreatedAt:  s.clock(),
	}

	s.mu.Lock()
	if len(s.audit) >= MaxAuditEntries {
		s.audit = slices.Delete(s.audit, 0, len(s.audit)-MaxAuditEntries+1)
	}
	s.audit = append(s.audit, entry)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Admin: action recorded",
		"action", entry.Action,
		"target_type", entry.TargetType,
		"target_id", entry.TargetID,
		"ip", entry.IPAddress,
	)

	out := *entry
	return &out, nil
}

// GetAuditLogs returns audit entries newest first, optionally for one
// action, with page/limit paging
func (s *AdminService) GetAuditLogs(page, limit int, action string) ([]*models.AuditLog, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.AuditLog
	for _, e := range slices.Backward(s.audit) {
		if action == "" || e.Action == action {
			cp := *e
			matched = append(matched, &cp)
		}
	}
	total := len(matched)

	if limit <= 0 {
		limit = 20
	}
	start, end := PageBounds(total, page, limit)
	if start == end {
		return []*models.AuditLog{}, total
	}
	return matched[start:end], total
}
