package repositories

import (
	"fmt"
	"slices"
	"sync"

	"eventflow/internal/models"
)

// TicketRepository serves the demo account's tickets and records transfers
type TicketRepository struct {
	tickets []*models.Ticket
	byID    map[string]*models.Ticket

	mu        sync.RWMutex
	transfers []*models.TransferReceipt
}

// NewTicketRepository creates a new ticket repository over tickets
func NewTicketRepository(tickets []*models.Ticket) *TicketRepository {
	r := &TicketRepository{
		tickets: tickets,
		byID:    make(map[string]*models.Ticket, len(tickets)),
	}
	for _, t := range tickets {
		r.byID[t.ID] = t
	}
	return r
}

// NewFixtureTicketRepository loads the embedded tickets
func NewFixtureTicketRepository() (*TicketRepository, error) {
	tickets, err := LoadTickets(mustReadFixture(TicketsFixture))
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}
	return NewTicketRepository(tickets), nil
}

// List returns every ticket in fixture order
func (r *TicketRepository) List() []*models.Ticket {
	return slices.Clone(r.tickets)
}

// GetByID retrieves a ticket by ID
func (r *TicketRepository) GetByID(id string) (*models.Ticket, error) {
	ticket, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrTicketNotFound, id)
	}
	return ticket, nil
}

// RecordTransfer stores a completed transfer. The ticket itself is unchanged.
func (r *TicketRepository) RecordTransfer(receipt *models.TransferReceipt) error {
	if _, ok := r.byID[receipt.TicketID]; !ok {
		return fmt.Errorf("%w: %s", models.ErrTicketNotFound, receipt.TicketID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *receipt
	r.transfers = append(r.transfers, &cp)
	return nil
}

// GetTransfers returns the transfers recorded for a ticket, oldest first
func (r *TicketRepository) GetTransfers(ticketID string) []*models.TransferReceipt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.TransferReceipt
	for _, t := range r.transfers {
		if t.TicketID == ticketID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}
