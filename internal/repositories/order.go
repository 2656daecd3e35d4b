package repositories

import (
	"fmt"
	"sync"

	"eventflow/internal/models"

	"github.com/shopspring/decimal"
)

// OrderRepository keeps confirmed orders in memory
type OrderRepository struct {
	mu       sync.RWMutex
	orders   []*models.OrderRecord
	byNumber map[string]*models.OrderRecord
}

// NewOrderRepository creates a new order repository
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byNumber: make(map[string]*models.OrderRecord)}
}

// Save stores a confirmed order. Order numbers are unique.
func (r *OrderRepository) Save(order *models.OrderRecord) error {
	if order == nil || order.OrderNumber == "" {
		return fmt.Errorf("%w: order number is required", models.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byNumber[order.OrderNumber]; exists {
		return fmt.Errorf("%w: duplicate order number %s", models.ErrInvalidInput, order.OrderNumber)
	}

	cp := *order
	cp.Tickets = append([]models.OrderTicket(nil), order.Tickets...)
	r.orders = append(r.orders, &cp)
	r.byNumber[cp.OrderNumber] = &cp
	return nil
}

// GetByOrderNumber retrieves an order by its order number
func (r *OrderRepository) GetByOrderNumber(orderNumber string) (*models.OrderRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.byNumber[orderNumber]
	if !ok {
		return nil, false
	}
	cp := *order
	return &cp, true
}

// List returns orders newest first with limit/offset paging.
// A limit of 0 or less returns everything after offset.
func (r *OrderRepository) List(limit, offset int) []*models.OrderRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.OrderRecord, 0, len(r.orders))
	for i := len(r.orders) - 1; i >= 0; i-- {
		cp := *r.orders[i]
		out = append(out, &cp)
	}

	if offset >= len(out) {
		return []*models.OrderRecord{}
	}
	out = out[max(offset, 0):]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Admin-specific methods

// GetOrderCount returns the total number of orders
func (r *OrderRepository) GetOrderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

// GetTotalRevenue returns the summed totals of all confirmed orders
func (r *OrderRepository) GetTotalRevenue() decimal.Decimal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	revenue := decimal.Zero
	for _, o := range r.orders {
		revenue = revenue.Add(o.TotalAmount())
	}
	return revenue
}

// GetTicketsSold returns the number of tickets across all orders
func (r *OrderRepository) GetTicketsSold() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sold := 0
	for _, o := range r.orders {
		sold += o.TicketCount()
	}
	return sold
}
