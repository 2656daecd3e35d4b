package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validEvent() Event {
	return Event{
		ID:           7,
		Title:        "Jazz Night Under the Stars",
		Date:         time.Date(2024, 8, 18, 20, 0, 0, 0, time.UTC),
		Price:        decimal.RequireFromString("45.00"),
		TicketsLeft:  35,
		TotalTickets: 150,
		Categories:   []string{"Music", "Jazz", "Outdoor"},
		Type:         EventInPerson,
	}
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *Event)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid event",
			mutate: func(e *Event) {},
		},
		{
			name:   "free event",
			mutate: func(e *Event) { e.Price = decimal.Zero },
		},
		{
			name:    "missing title",
			mutate:  func(e *Event) { e.Title = "   " },
			wantErr: true,
			errMsg:  "event title is required",
		},
		{
			name:    "missing date",
			mutate:  func(e *Event) { e.Date = time.Time{} },
			wantErr: true,
			errMsg:  "event date is required",
		},
		{
			name:    "negative price",
			mutate:  func(e *Event) { e.Price = decimal.RequireFromString("-1") },
			wantErr: true,
			errMsg:  "event price cannot be negative",
		},
		{
			name:    "more left than total",
			mutate:  func(e *Event) { e.TicketsLeft = 151 },
			wantErr: true,
			errMsg:  "tickets left must be between 0 and total tickets",
		},
		{
			name:    "negative tickets left",
			mutate:  func(e *Event) { e.TicketsLeft = -1 },
			wantErr: true,
			errMsg:  "tickets left must be between 0 and total tickets",
		},
		{
			name:    "unknown type",
			mutate:  func(e *Event) { e.Type = "outdoor" },
			wantErr: true,
			errMsg:  "invalid event type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)

			err := e.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Event.Validate() expected error but got none")
				}
				if err.Error() != tt.errMsg {
					t.Errorf("Event.Validate() error = %v, want %v", err.Error(), tt.errMsg)
				}
			} else if err != nil {
				t.Errorf("Event.Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestEvent_Availability(t *testing.T) {
	e := validEvent()
	if e.IsFree() {
		t.Error("paid event reported as free")
	}
	if e.IsSoldOut() {
		t.Error("event with tickets left reported as sold out")
	}
	if got := e.Sold(); got != 115 {
		t.Errorf("Sold() = %d, want 115", got)
	}

	e.TicketsLeft = 0
	if !e.IsSoldOut() {
		t.Error("event with no tickets left should be sold out")
	}
}

func TestEvent_SaleEnded(t *testing.T) {
	end := time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)
	e := validEvent()

	if e.SaleEnded(end.Add(time.Hour)) {
		t.Error("event without a sale end should never end")
	}

	e.SaleEndDate = &end
	if e.SaleEnded(end) {
		t.Error("sale should still be open at the exact end instant")
	}
	if !e.SaleEnded(end.Add(time.Second)) {
		t.Error("sale should be closed after the end instant")
	}
}

func TestEvent_HasCategory(t *testing.T) {
	e := validEvent()
	for _, c := range []string{"Music", "music", "JAZZ"} {
		if !e.HasCategory(c) {
			t.Errorf("HasCategory(%q) = false, want true", c)
		}
	}
	if e.HasCategory("Sports") {
		t.Error("HasCategory(Sports) = true, want false")
	}
}

func TestEvent_DiscountPercent(t *testing.T) {
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	tests := []struct {
		name     string
		price    string
		original *decimal.Decimal
		want     int
	}{
		{name: "no original price", price: "45", want: 0},
		{name: "quarter off", price: "75", original: price("100"), want: 25},
		{name: "rounded", price: "299", original: price("399"), want: 25},
		{name: "original not higher", price: "50", original: price("50"), want: 0},
		{name: "zero original", price: "0", original: price("0"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			e.Price = decimal.RequireFromString(tt.price)
			e.OriginalPrice = tt.original
			if got := e.DiscountPercent(); got != tt.want {
				t.Errorf("DiscountPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}
