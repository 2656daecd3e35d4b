package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus represents the status of a purchased ticket.
// Statuses come from fixture data; nothing in the service moves a ticket
// between them.
type TicketStatus string

const (
	TicketValid   TicketStatus = "valid"
	TicketUsed    TicketStatus = "used"
	TicketExpired TicketStatus = "expired"
)

// Ticket represents a purchased ticket shown on the my-tickets page
type Ticket struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"orderId"`
	EventTitle   string          `json:"eventTitle"`
	EventDate    time.Time       `json:"eventDate"`
	EventTime    string          `json:"eventTime"`
	Venue        string          `json:"venue"`
	TicketType   string          `json:"ticketType"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Status       TicketStatus    `json:"status"`
	PurchaseDate time.Time       `json:"purchaseDate"`
	EventBanner  string          `json:"eventBanner,omitempty"`
	SeatInfo     string          `json:"seatInfo,omitempty"`
	EntryGate    string          `json:"entryGate,omitempty"`
	CheckedIn    bool            `json:"checkedIn"`
}

// Validate validates the ticket data
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return errors.New("ticket id is required")
	}

	if t.Quantity < 1 {
		return errors.New("ticket quantity must be at least 1")
	}

	switch t.Status {
	case TicketValid, TicketUsed, TicketExpired:
		return nil
	default:
		return errors.New("invalid ticket status")
	}
}

// IsUpcoming returns true if the event is still ahead of now
func (t *Ticket) IsUpcoming(now time.Time) bool {
	return t.EventDate.After(now)
}

// CanBeTransferred returns true if the ticket can still change hands
func (t *Ticket) CanBeTransferred() bool {
	return t.Status == TicketValid && !t.CheckedIn
}

// Total returns price times quantity
func (t *Ticket) Total() decimal.Decimal {
	return t.Price.Mul(decimal.NewFromInt(int64(t.Quantity)))
}
