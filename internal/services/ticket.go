package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"
	"time"

	"eventflow/internal/metrics"
	"eventflow/internal/models"
)

// TicketRepository interface for ticket data operations
type TicketRepository interface {
	List() []*models.Ticket
	GetByID(id string) (*models.Ticket, error)
	RecordTransfer(receipt *models.TransferReceipt) error
}

// Ticket list filters
const (
	TicketFilterAll      = "all"
	TicketFilterUpcoming = "upcoming"
	TicketFilterPast     = "past"
	TicketFilterValid    = "valid"
	TicketFilterUsed     = "used"
	TicketFilterExpired  = "expired"
)

// Ticket list sort keys
const (
	TicketSortDateDesc     = "date-desc"
	TicketSortDateAsc      = "date-asc"
	TicketSortPurchaseDesc = "purchase-desc"
	TicketSortPurchaseAsc  = "purchase-asc"
	TicketSortTitleAsc     = "title-asc"
	TicketSortTitleDesc    = "title-desc"
)

// TicketFilters lists the filter tabs in display order
var TicketFilters = []string{TicketFilterAll, TicketFilterUpcoming, TicketFilterPast, TicketFilterValid, TicketFilterUsed, TicketFilterExpired}

// TicketSortOptions lists the accepted sort keys in display order
var TicketSortOptions = []string{TicketSortDateDesc, TicketSortDateAsc, TicketSortPurchaseDesc, TicketSortPurchaseAsc, TicketSortTitleAsc, TicketSortTitleDesc}

// Empty state kinds for the ticket list
const (
	EmptyKindNone          = ""
	EmptyKindNoTickets     = "no-tickets"
	EmptyKindSearchResults = "no-search-results"
)

// TicketListResult is the derived ticket list view
type TicketListResult struct {
	Tickets    []*models.Ticket `json:"tickets"`
	Filter     string           `json:"filter"`
	Query      string           `json:"query"`
	SortBy     string           `json:"sortBy"`
	Counts     []FacetCount     `json:"counts"`
	EmptyStage EmptyStage       `json:"emptyStage,omitempty"`
	EmptyKind  string           `json:"emptyKind,omitempty"`
}

// TicketOptions configures a TicketService
type TicketOptions struct {
	QRURLTemplate string
	TransferDelay time.Duration
	Clock         Clock
	Logger        *slog.Logger
}

// TicketService handles the customer's purchased tickets
type TicketService struct {
	tickets       TicketRepository
	pdf           *PDFService
	qrTemplate    string
	transferDelay time.Duration
	clock         Clock
	logger        *slog.Logger
}

// NewTicketService creates a new ticket service
func NewTicketService(tickets TicketRepository, opts TicketOptions) *TicketService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &TicketService{
		tickets:       tickets,
		pdf:           NewPDFService(opts.Clock),
		qrTemplate:    opts.QRURLTemplate,
		transferDelay: opts.TransferDelay,
		clock:         opts.Clock,
		logger:        opts.Logger,
	}
}

// List filters, searches and sorts the tickets. Unknown filters and sort
// keys fall back to "all" and "date-desc".
func (s *TicketService) List(filter, query, sortBy string) *TicketListResult {
	if !slices.Contains(TicketFilters, filter) {
		filter = TicketFilterAll
	}
	if !slices.Contains(TicketSortOptions, sortBy) {
		sortBy = TicketSortDateDesc
	}

	base := s.tickets.List()
	now := s.clock()
	facets := ticketFacets(now)

	var match func(*models.Ticket) bool
	for _, f := range facets {
		if f.Key == filter {
			match = f.Match
		}
	}

	q := RunQuery(base, Query[*models.Ticket]{
		Filter:  match,
		Search:  query,
		Fields:  ticketSearchFields,
		Compare: ticketComparator(sortBy),
	})
	metrics.RecordCatalogQuery("tickets", string(q.EmptyStage))

	return &TicketListResult{
		Tickets:    q.Items,
		Filter:     filter,
		Query:      strings.TrimSpace(query),
		SortBy:     sortBy,
		Counts:     CountFacets(base, facets),
		EmptyStage: q.EmptyStage,
		EmptyKind:  ticketEmptyKind(q.EmptyStage, filter),
	}
}

// GetTicket retrieves a ticket by ID
func (s *TicketService) GetTicket(id string) (*models.Ticket, error) {
	return s.tickets.GetByID(id)
}

// QRCodeURL returns the image URL encoding the ticket id
func (s *TicketService) QRCodeURL(ticketID string) (string, error) {
	ticket, err := s.tickets.GetByID(ticketID)
	if err != nil {
		return "", err
	}
	return s.qrURL(ticket.ID), nil
}

func (s *TicketService) qrURL(ticketID string) string {
	return fmt.Sprintf(s.qrTemplate, url.QueryEscape(ticketID))
}

// DownloadPDF renders the printable ticket
func (s *TicketService) DownloadPDF(ctx context.Context, ticketID string) ([]byte, error) {
	ticket, err := s.tickets.GetByID(ticketID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Tickets: downloading PDF", "ticket", ticket.ID, "order", ticket.OrderID)
	return s.pdf.GenerateTicketPDF(ticket, s.qrURL(ticket.ID)), nil
}

// ResendEmail asks for the ticket email to be sent again. Nothing is
// delivered; the request is logged.
func (s *TicketService) ResendEmail(ctx context.Context, ticketID string) error {
	ticket, err := s.tickets.GetByID(ticketID)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Tickets: resending email", "ticket", ticket.ID, "order", ticket.OrderID)
	return nil
}

func ticketSearchFields(t *models.Ticket) []string {
	return []string{t.EventTitle, t.Venue, t.OrderID, t.TicketType}
}

func ticketComparator(sortBy string) func(a, b *models.Ticket) int {
	eventDate := func(t *models.Ticket) time.Time { return t.EventDate }
	purchased := func(t *models.Ticket) time.Time { return t.PurchaseDate }
	title := func(t *models.Ticket) string { return t.EventTitle }

	switch sortBy {
	case TicketSortDateAsc:
		return byTime(eventDate, false)
	case TicketSortPurchaseDesc:
		return byTime(purchased, true)
	case TicketSortPurchaseAsc:
		return byTime(purchased, false)
	case TicketSortTitleAsc:
		return byTitle(title, false)
	case TicketSortTitleDesc:
		return byTitle(title, true)
	default:
		return byTime(eventDate, true)
	}
}

// ticketFacets are the filter tabs; their counts ignore the active filter
func ticketFacets(now time.Time) []Facet[*models.Ticket] {
	status := func(st models.TicketStatus) func(*models.Ticket) bool {
		return func(t *models.Ticket) bool { return t.Status == st }
	}

	return []Facet[*models.Ticket]{
		{Key: TicketFilterAll, Label: "All Tickets", Match: func(*models.Ticket) bool { return true }},
		{Key: TicketFilterUpcoming, Label: "Upcoming", Match: func(t *models.Ticket) bool { return t.IsUpcoming(now) }},
		{Key: TicketFilterPast, Label: "Past Events", Match: func(t *models.Ticket) bool { return !t.IsUpcoming(now) }},
		{Key: TicketFilterValid, Label: "Valid", Match: status(models.TicketValid)},
		{Key: TicketFilterUsed, Label: "Used", Match: status(models.TicketUsed)},
		{Key: TicketFilterExpired, Label: "Expired", Match: status(models.TicketExpired)},
	}
}

func ticketEmptyKind(stage EmptyStage, filter string) string {
	switch stage {
	case EmptySearch:
		return EmptyKindSearchResults
	case EmptyFilter:
		return "no-" + filter
	case EmptyNoData:
		return EmptyKindNoTickets
	default:
		return EmptyKindNone
	}
}
