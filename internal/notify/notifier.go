// Package notify tells downstream systems about confirmed orders.
package notify

import (
	"context"
	"log/slog"

	"eventflow/internal/models"
)

// Notifier is called once per confirmed order
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *models.OrderRecord) error
	Close() error
}

// LogNotifier stands in for the confirmation email by writing a log record
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// OrderConfirmed logs the confirmation
func (n *LogNotifier) OrderConfirmed(ctx context.Context, order *models.OrderRecord) error {
	n.logger.InfoContext(ctx, "Notify: confirmation email sent",
		"order", order.OrderNumber,
		"email", order.Email,
		"total", order.Total,
		"tickets", order.TicketCount(),
	)
	return nil
}

// Close is a no-op
func (n *LogNotifier) Close() error {
	return nil
}
