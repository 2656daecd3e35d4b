package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CartLineItem represents one ticket type selection inside a checkout
type CartLineItem struct {
	ID         string          `json:"id"`
	EventID    int             `json:"eventId"`
	EventTitle string          `json:"eventTitle"`
	TicketType string          `json:"ticketType"`
	EventDate  string          `json:"eventDate"`
	EventTime  string          `json:"eventTime"`
	Venue      string          `json:"venue"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	EventImage string          `json:"eventImage"`
}

// LineTotal returns price times quantity
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Validate validates the line item data
func (i CartLineItem) Validate() error {
	if strings.TrimSpace(i.ID) == "" {
		return errors.New("line item id is required")
	}

	if strings.TrimSpace(i.EventTitle) == "" {
		return errors.New("event title is required")
	}

	if !i.Price.IsPositive() {
		return errors.New("ticket price must be greater than 0")
	}

	if i.Quantity < 1 {
		return errors.New("ticket quantity must be at least 1")
	}

	return nil
}

// LineItemID builds the cart key for a ticket type of an event
func LineItemID(eventID int, ticketType string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(ticketType), "-"))
	if slug == "" {
		slug = "general"
	}
	return strconv.Itoa(eventID) + ":" + slug
}
