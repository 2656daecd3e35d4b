package repositories

import (
	"embed"
	"fmt"
	"time"

	"eventflow/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFS embed.FS

// Fixture file names inside the embedded filesystem
const (
	EventsFixture  = "fixtures/events.yaml"
	TicketsFixture = "fixtures/tickets.yaml"
)

const fixtureDayLayout = "2006-01-02"

type eventFixture struct {
	ID            int      `yaml:"id"`
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description"`
	Image         string   `yaml:"image"`
	Date          string   `yaml:"date"`
	Location      string   `yaml:"location"`
	Venue         string   `yaml:"venue"`
	Organizer     string   `yaml:"organizer"`
	Price         string   `yaml:"price"`
	OriginalPrice string   `yaml:"originalPrice"`
	TicketsLeft   int      `yaml:"ticketsLeft"`
	TotalTickets  int      `yaml:"totalTickets"`
	Categories    []string `yaml:"categories"`
	Type          string   `yaml:"type"`
	Timezone      string   `yaml:"timezone"`
	SaleEndDate   string   `yaml:"saleEndDate"`
}

type ticketFixture struct {
	ID           string `yaml:"id"`
	OrderID      string `yaml:"orderId"`
	EventTitle   string `yaml:"eventTitle"`
	EventDate    string `yaml:"eventDate"`
	EventTime    string `yaml:"eventTime"`
	Venue        string `yaml:"venue"`
	TicketType   string `yaml:"ticketType"`
	Price        string `yaml:"price"`
	Quantity     int    `yaml:"quantity"`
	Status       string `yaml:"status"`
	PurchaseDate string `yaml:"purchaseDate"`
	EventBanner  string `yaml:"eventBanner"`
	SeatInfo     string `yaml:"seatInfo"`
	EntryGate    string `yaml:"entryGate"`
	CheckedIn    bool   `yaml:"checkedIn"`
}

// LoadEvents parses an events fixture document
func LoadEvents(data []byte) ([]*models.Event, error) {
	var doc struct {
		Events []eventFixture `yaml:"events"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse events fixture: %w", err)
	}

	events := make([]*models.Event, 0, len(doc.Events))
	seen := make(map[int]bool, len(doc.Events))
	for _, f := range doc.Events {
		event, err := f.toModel()
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", f.ID, err)
		}
		if seen[event.ID] {
			return nil, fmt.Errorf("event %d: duplicate id", event.ID)
		}
		seen[event.ID] = true
		events = append(events, event)
	}
	return events, nil
}

func (f eventFixture) toModel() (*models.Event, error) {
	date, err := time.Parse(time.RFC3339, f.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	event := &models.Event{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		Image:        f.Image,
		Date:         date,
		Location:     f.Location,
		Venue:        f.Venue,
		Organizer:    f.Organizer,
		Price:        price,
		TicketsLeft:  f.TicketsLeft,
		TotalTickets: f.TotalTickets,
		Categories:   f.Categories,
		Type:         models.EventType(f.Type),
		Timezone:     f.Timezone,
	}

	if f.OriginalPrice != "" {
		original, err := decimal.NewFromString(f.OriginalPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid original price: %w", err)
		}
		event.OriginalPrice = &original
	}
	if f.SaleEndDate != "" {
		end, err := time.Parse(time.RFC3339, f.SaleEndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid sale end date: %w", err)
		}
		event.SaleEndDate = &end
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

// LoadTickets parses a tickets fixture document
func LoadTickets(data []byte) ([]*models.Ticket, error) {
	var doc struct {
		Tickets []ticketFixture `yaml:"tickets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse tickets fixture: %w", err)
	}

	tickets := make([]*models.Ticket, 0, len(doc.Tickets))
	seen := make(map[string]bool, len(doc.Tickets))
	for _, f := range doc.Tickets {
		ticket, err := f.toModel()
		if err != nil {
			return nil, fmt.Errorf("ticket %s: %w", f.ID, err)
		}
		if seen[ticket.ID] {
			return nil, fmt.Errorf("ticket %s: duplicate id", ticket.ID)
		}
		seen[ticket.ID] = true
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

func (f ticketFixture) toModel() (*models.Ticket, error) {
	eventDate, err := time.Parse(fixtureDayLayout, f.EventDate)
	if err != nil {
		return nil, fmt.Errorf("invalid event date: %w", err)
	}
	purchaseDate, err := time.Parse(fixtureDayLayout, f.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase date: %w", err)
	}
	price, err := decimal.NewFromString(f.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price: %w", err)
	}

	ticket := &models.Ticket{
		ID:           f.ID,
		OrderID:      f.OrderID,
		EventTitle:   f.EventTitle,
		EventDate:    eventDate,
		EventTime:    f.EventTime,
		Venue:        f.Venue,
		TicketType:   f.TicketType,
		Price:        price,
		Quantity:     f.Quantity,
		Status:       models.TicketStatus(f.Status),
		PurchaseDate: purchaseDate,
		EventBanner:  f.EventBanner,
		SeatInfo:     f.SeatInfo,
		EntryGate:    f.EntryGate,
		CheckedIn:    f.CheckedIn,
	}
	if err := ticket.Validate(); err != nil {
		return nil, err
	}
	return ticket, nil
}

func mustReadFixture(name string) []byte {
	data, err := fixtureFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("missing embedded fixture %s: %v", name, err))
	}
	return data
}
