package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderTicket is one line of a confirmed order
type OrderTicket struct {
	EventTitle string `json:"eventTitle"`
	TicketType string `json:"ticketType"`
	Quantity   int    `json:"quantity"`
	Price      string `json:"price"` // line total, 2 decimals
	EventDate  string `json:"eventDate"`
}

// OrderRecord is the immutable result of a successful checkout
type OrderRecord struct {
	OrderNumber        string        `json:"orderNumber"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`
	PaymentMethodLabel string        `json:"paymentMethodLabel"`
	PaymentID          string        `json:"paymentId,omitempty"`
	Total              string        `json:"total"`
	PurchaseDateLabel  string        `json:"purchaseDate"`
	Email              string        `json:"email"`
	Tickets            []OrderTicket `json:"tickets"`
	PlacedAt           time.Time     `json:"placedAt"`
}

// Purchase date label layout, e.g. "July 20, 2024 at 06:00 PM"
const purchaseDateLayout = "January 2, 2006 at 03:04 PM"

// GenerateOrderNumber derives an order number from the purchase timestamp
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("EVT-%d", now.UnixMilli())
}

// FormatPurchaseDate returns the label shown on the confirmation page
func FormatPurchaseDate(now time.Time) string {
	return now.Format(purchaseDateLayout)
}

// FormatAmount renders a money amount with two decimals
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// TotalAmount parses the frozen total back into a decimal
func (o *OrderRecord) TotalAmount() decimal.Decimal {
	d, err := decimal.NewFromString(o.Total)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// TicketCount returns the number of tickets bought across all lines
func (o *OrderRecord) TicketCount() int {
	count := 0
	for _, t := range o.Tickets {
		count += t.Quantity
	}
	return count
}
