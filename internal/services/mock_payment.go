package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"eventflow/internal/models"

	"github.com/shopspring/decimal"
)

// PaymentProcessor charges an order total
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, amount decimal.Decimal, method models.PaymentMethod, email string) (*models.PaymentResult, error)
}

// MockPaymentService simulates a payment gateway. Every payment succeeds
// after the configured delay unless ctx is cancelled first.
type MockPaymentService struct {
	delay  time.Duration
	clock  Clock
	logger *slog.Logger
}

// NewMockPaymentService creates a new mock payment service
func NewMockPaymentService(delay time.Duration, clock Clock, logger *slog.Logger) *MockPaymentService {
	if clock == nil {
		clock = time.Now
	}
	logger.Info("Payment service: using mock processor", "delay", delay)
	return &MockPaymentService{delay: delay, clock: clock, logger: logger}
}

// ProcessPayment processes a payment
func (s *MockPaymentService) ProcessPayment(ctx context.Context, amount decimal.Decimal, method models.PaymentMethod, email string) (*models.PaymentResult, error) {
	if err := sleepCtx(ctx, s.delay); err != nil {
		return nil, err
	}

	now := s.clock()
	cents := amount.Shift(2).Round(0).IntPart()

	s.logger.InfoContext(ctx, "Mock Payment: processed payment",
		"amount", models.FormatAmount(amount),
		"method", string(method),
		"email", email,
	)

	return &models.PaymentResult{
		PaymentID:     fmt.Sprintf("mock_pay_%d_%d", now.Unix(), cents),
		Status:        "success",
		Amount:        amount,
		TransactionID: fmt.Sprintf("txn_%d", now.UnixNano()),
		ProcessedAt:   now,
	}, nil
}
