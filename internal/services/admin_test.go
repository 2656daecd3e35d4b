package services

import (
	"context"
	"math"
	"strconv"
	"testing"

	"eventflow/internal/logging"
	"eventflow/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct{ events, left int }

func (s stubCatalog) Count() int       { return s.events }
func (s stubCatalog) TicketsLeft() int { return s.left }

type stubOrders struct {
	count   int
	revenue decimal.Decimal
	sold    int
}

func (s stubOrders) GetOrderCount() int               { return s.count }
func (s stubOrders) GetTotalRevenue() decimal.Decimal { return s.revenue }
func (s stubOrders) GetTicketsSold() int              { return s.sold }

func newAdminService() *AdminService {
	return NewAdminService(
		stubCatalog{events: 8, left: 884},
		stubOrders{count: 2, revenue: decimal.RequireFromString("763.1"), sold: 7},
		fixedClock,
		logging.Discard(),
	)
}

func TestAdminService_Overview(t *testing.T) {
	svc := newAdminService()

	got := svc.Overview(3)
	assert.Equal(t, &AdminOverview{
		TotalEvents:   8,
		TicketsLeft:   884,
		OrdersPlaced:  2,
		TicketsSold:   7,
		Revenue:       "763.10",
		LiveCheckouts: 3,
	}, got)
}

func TestAdminService_LogAction(t *testing.T) {
	svc := newAdminService()
	ctx := context.Background()

	entry, err := svc.LogAction(ctx, &models.AuditLogCreateRequest{
		Action:    models.AuditActionEventApprove,
		TargetID:  "4",
		IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.AuditTargetEvent, entry.TargetType)
	assert.Equal(t, fixedNow, entry.CreatedAt)
	assert.Equal(t, 1, svc.Overview(0).AuditLogEntries)
}

func TestAdminService_LogAction_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  models.AuditLogCreateRequest
	}{
		{"unknown action", models.AuditLogCreateRequest{Action: "event_delete", TargetID: "1"}},
		{"missing target", models.AuditLogCreateRequest{Action: models.AuditActionPaymentRefund}},
		{"wrong target type", models.AuditLogCreateRequest{Action: models.AuditActionEventReject, TargetType: models.AuditTargetPayment, TargetID: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newAdminService()
			_, err := svc.LogAction(context.Background(), &tt.req)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
			assert.Zero(t, svc.Overview(0).AuditLogEntries)
		})
	}
}

func TestAdminService_GetAuditLogs(t *testing.T) {
	svc := newAdminService()
	ctx := context.Background()

	for _, req := range []models.AuditLogCreateRequest{
		{Action: models.AuditActionEventApprove, TargetID: "1"},
		{Action: models.AuditActionPaymentRefund, TargetID: "EVT-1"},
		{Action: models.AuditActionEventApprove, TargetID: "2"},
		{Action: models.AuditActionSettingsSave},
	} {
		_, err := svc.LogAction(ctx, &req)
		require.NoError(t, err)
	}

	logs, total := svc.GetAuditLogs(1, 20, "")
	assert.Equal(t, 4, total)
	assert.Equal(t, models.AuditActionSettingsSave, logs[0].Action)

	logs, total = svc.GetAuditLogs(1, 20, models.AuditActionEventApprove)
	assert.Equal(t, 2, total)
	assert.Equal(t, "2", logs[0].TargetID)
	assert.Equal(t, "1", logs[1].TargetID)

	logs, total = svc.GetAuditLogs(2, 3, "")
	assert.Equal(t, 4, total)
	require.Len(t, logs, 1)
	assert.Equal(t, "1", logs[0].TargetID)

	logs, _ = svc.GetAuditLogs(5, 3, "")
	assert.Empty(t, logs)

	logs, total = svc.GetAuditLogs(math.MaxInt/20+1, 20, "")
	assert.Equal(t, 4, total)
	assert.Empty(t, logs)

	logs, _ = svc.GetAuditLogs(math.MaxInt, math.MaxInt, "")
	assert.Empty(t, logs)
}

func TestAdminService_AuditLogIsBounded(t *testing.T) {
	svc := newAdminService()
	ctx := context.Background()

	for i := range MaxAuditEntries + 5 {
		_, err := svc.LogAction(ctx, &models.AuditLogCreateRequest{
			Action:   models.AuditActionEventApprove,
			TargetID: strconv.Itoa(i),
		})
		require.NoError(t, err)
	}

	assert.Equal(t, MaxAuditEntries, svc.Overview(0).AuditLogEntries)

	logs, total := svc.GetAuditLogs(1, MaxAuditEntries, "")
	assert.Equal(t, MaxAuditEntries, total)
	require.Len(t, logs, MaxAuditEntries)
	assert.Equal(t, strconv.Itoa(MaxAuditEntries+4), logs[0].TargetID)
	assert.Equal(t, "5", logs[len(logs)-1].TargetID)
}
