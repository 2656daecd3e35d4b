package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EventType represents how attendees take part in an event
type EventType string

const (
	EventInPerson EventType = "in-person"
	EventVirtual  EventType = "virtual"
	EventHybrid   EventType = "hybrid"
)

// Event represents a catalog item shown on the discovery dashboard
type Event struct {
	ID            int              `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Image         string           `json:"image"`
	Date          time.Time        `json:"date"`
	Location      string           `json:"location"`
	Venue         string           `json:"venue"`
	Organizer     string           `json:"organizer"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
	TicketsLeft   int              `json:"ticketsLeft"`
	TotalTickets  int              `json:"totalTickets"`
	Categories    []string         `json:"categories"`
	Type          EventType        `json:"type"`
	Timezone      string           `json:"timezone"`
	SaleEndDate   *time.Time       `json:"saleEndDate,omitempty"`
}

// Validate validates the event data
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("event title is required")
	}

	if e.Date.IsZero() {
		return errors.New("event date is required")
	}

	if e.Price.IsNegative() {
		return errors.New("event price cannot be negative")
	}

	if e.TicketsLeft < 0 || e.TicketsLeft > e.TotalTickets {
		return errors.New("tickets left must be between 0 and total tickets")
	}

	switch e.Type {
	case EventInPerson, EventVirtual, EventHybrid:
	default:
		return errors.New("invalid event type")
	}

	return nil
}

// IsFree returns true if the event costs nothing to attend
func (e *Event) IsFree() bool {
	return e.Price.IsZero()
}

// IsSoldOut returns true if no tickets are left
func (e *Event) IsSoldOut() bool {
	return e.TicketsLeft <= 0
}

// Sold returns the number of tickets already sold
func (e *Event) Sold() int {
	return e.TotalTickets - e.TicketsLeft
}

// SaleEnded returns true if the ticket sale closed before now
func (e *Event) SaleEnded(now time.Time) bool {
	return e.SaleEndDate != nil && now.After(*e.SaleEndDate)
}

// HasCategory reports whether the event is tagged with category, ignoring case
func (e *Event) HasCategory(category string) bool {
	for _, c := range e.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// DiscountPercent returns how much cheaper the event is than its original price
func (e *Event) DiscountPercent() int {
	if e.OriginalPrice == nil || !e.OriginalPrice.IsPositive() || !e.OriginalPrice.GreaterThan(e.Price) {
		return 0
	}
	saved := e.OriginalPrice.Sub(e.Price).Div(*e.OriginalPrice).Mul(hundred)
	return int(saved.Round(0).IntPart())
}
