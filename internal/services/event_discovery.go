package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"eventflow/internal/metrics"
	"eventflow/internal/models"

	"github.com/shopspring/decimal"
)

// EventSource provides the event catalog
type EventSource interface {
	List() []*models.Event
	GetByID(id int) (*models.Event, error)
}

// Quick date presets
const (
	QuickDateToday     = "Today"
	QuickDateTomorrow  = "Tomorrow"
	QuickDateThisWeek  = "This Week"
	QuickDateThisMonth = "This Month"
)

// Price range presets
const (
	PriceRangeFree    = "Free"
	PriceRangeUpTo25  = "$1-25"
	PriceRangeUpTo50  = "$26-50"
	PriceRangeUpTo100 = "$51-100"
	PriceRangeOver100 = "$100+"
)

const (
	MaxPageSize        = 100
	DefaultEventSort   = "date-asc"
	DefaultTicketType  = "General Admission"
	discoveryDayLayout = "2006-01-02"
)

// EventSortOptions lists the accepted sort keys in display order
var EventSortOptions = []string{"date-asc", "date-desc", "price-asc", "price-desc", "title-asc", "title-desc", "popularity"}

// DiscoveryFilters represents the criteria of one discovery query
type DiscoveryFilters struct {
	Query      string              `json:"query"`
	Categories []string            `json:"categories"`
	Locations  []string            `json:"locations"`
	EventTypes []string            `json:"eventTypes"`
	QuickDate  string              `json:"quickDate"`
	DateFrom   *time.Time          `json:"dateFrom,omitempty"` // inclusive day
	DateTo     *time.Time          `json:"dateTo,omitempty"`   // inclusive day
	PriceRange string              `json:"priceRange"`
	PriceMin   decimal.NullDecimal `json:"priceMin"`
	PriceMax   decimal.NullDecimal `json:"priceMax"`
	SortBy     string              `json:"sortBy"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"perPage"`
}

// FilterChip is one removable active filter
type FilterChip struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// DiscoveryResult represents the result of event discovery
type DiscoveryResult struct {
	Events        []*models.Event `json:"events"`
	TotalCount    int             `json:"totalCount"`
	FilteredCount int             `json:"filteredCount"`
	MatchedCount  int             `json:"matchedCount"`
	EmptyStage    EmptyStage      `json:"emptyStage,omitempty"`
	Page          int             `json:"page"`
	PerPage       int             `json:"perPage"`
	HasMore       bool            `json:"hasMore"`
	SortBy        string          `json:"sortBy"`
	Categories    []FacetCount    `json:"categories"`
	Locations     []FacetCount    `json:"locations"`
	EventTypes    []FacetCount    `json:"eventTypes"`
	ActiveFilters []FilterChip    `json:"activeFilters"`
}

// DiscoveryOptions configures an EventDiscoveryService
type DiscoveryOptions struct {
	PageSize      int
	LoadMoreDelay time.Duration
	MaxPerOrder   int
	Clock         Clock
	Logger        *slog.Logger
}

// EventDiscoveryService provides search, filtering and selection over the
// event catalog
type EventDiscoveryService struct {
	events        EventSource
	pageSize      int
	loadMoreDelay time.Duration
	maxPerOrder   int
	clock         Clock
	logger        *slog.Logger
}

// NewEventDiscoveryService creates a new event discovery service
func NewEventDiscoveryService(events EventSource, opts DiscoveryOptions) *EventDiscoveryService {
	if opts.PageSize <= 0 {
		opts.PageSize = 12
	}
	if opts.MaxPerOrder <= 0 {
		opts.MaxPerOrder = 10
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &EventDiscoveryService{
		events:        events,
		pageSize:      opts.PageSize,
		loadMoreDelay: opts.LoadMoreDelay,
		maxPerOrder:   opts.MaxPerOrder,
		clock:         opts.Clock,
		logger:        opts.Logger,
	}
}

// Discover runs the filter, search and sort pipeline and returns one page
func (s *EventDiscoveryService) Discover(ctx context.Context, filters DiscoveryFilters) *DiscoveryResult {
	base := s.events.List()
	now := s.clock()

	page := max(filters.Page, 1)
	perPage := filters.PerPage
	if perPage <= 0 {
		perPage = s.pageSize
	}
	perPage = min(perPage, MaxPageSize)
	sortBy := filters.SortBy
	if !slices.Contains(EventSortOptions, sortBy) {
		sortBy = DefaultEventSort
	}

	q := RunQuery(base, Query[*models.Event]{
		Filter:  func(e *models.Event) bool { return filters.matches(e, now) },
		Search:  filters.Query,
		Fields:  eventSearchFields,
		Compare: eventComparator(sortBy),
	})

	start, end := PageBounds(len(q.Items), page, perPage)

	metrics.RecordCatalogQuery("events", string(q.EmptyStage))
	s.logger.DebugContext(ctx, "Discovery: query",
		"query", filters.Query,
		"matched", q.Matched,
		"page", page,
		"empty_stage", string(q.EmptyStage),
	)

	return &DiscoveryResult{
		Events:        q.Items[start:end],
		TotalCount:    q.Total,
		FilteredCount: q.Filtered,
		MatchedCount:  q.Matched,
		EmptyStage:    q.EmptyStage,
		Page:          page,
		PerPage:       perPage,
		HasMore:       end < len(q.Items),
		SortBy:        sortBy,
		Categories:    CountFacets(base, categoryFacets(base)),
		Locations:     CountFacets(base, locationFacets(base)),
		EventTypes:    CountFacets(base, eventTypeFacets()),
		ActiveFilters: filters.Chips(),
	}
}

// LoadMore waits out the simulated fetch and returns the page after
// filters.Page. A cancelled ctx returns its error and no page.
func (s *EventDiscoveryService) LoadMore(ctx context.Context, filters DiscoveryFilters) (*DiscoveryResult, error) {
	if err := sleepCtx(ctx, s.loadMoreDelay); err != nil {
		return nil, err
	}
	if filters.Page < math.MaxInt {
		filters.Page = max(filters.Page, 1) + 1
	}
	return s.Discover(ctx, filters), nil
}

// GetEvent retrieves an event by ID
func (s *EventDiscoveryService) GetEvent(id int) (*models.Event, error) {
	return s.events.GetByID(id)
}

// MaxPerOrder returns the most tickets one selection may hold
func (s *EventDiscoveryService) MaxPerOrder() int {
	return s.maxPerOrder
}

// SelectTickets checks a ticket selection against the event and builds the
// cart line item for it. Inventory is only checked here; the cart does not
// reconcile later quantity changes.
func (s *EventDiscoveryService) SelectTickets(eventID int, ticketType string, quantity int) (models.CartLineItem, error) {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		return models.CartLineItem{}, err
	}

	if event.SaleEnded(s.clock()) {
		return models.CartLineItem{}, fmt.Errorf("%w: %s", models.ErrSaleEnded, event.Title)
	}
	if event.IsSoldOut() {
		return models.CartLineItem{}, fmt.Errorf("%w: %s", models.ErrSoldOut, event.Title)
	}
	if event.IsFree() {
		return models.CartLineItem{}, fmt.Errorf("%w: %s is free and needs no ticket purchase", models.ErrInvalidInput, event.Title)
	}

	errs := models.ValidationErrors{}
	switch {
	case quantity < 1 || quantity > s.maxPerOrder:
		errs.Add("quantity", fmt.Sprintf("Select between 1 and %d tickets", s.maxPerOrder))
	case quantity > event.TicketsLeft:
		errs.Add("quantity", fmt.Sprintf("Only %d tickets left", event.TicketsLeft))
	}
	if err := errs.OrNil(); err != nil {
		return models.CartLineItem{}, err
	}

	ticketType = strings.TrimSpace(ticketType)
	if ticketType == "" {
		ticketType = DefaultTicketType
	}

	return models.CartLineItem{
		ID:         models.LineItemID(event.ID, ticketType),
		EventID:    event.ID,
		EventTitle: event.Title,
		TicketType: ticketType,
		EventDate:  event.Date.Format(discoveryDayLayout),
		EventTime:  event.Date.Format("15:04"),
		Venue:      event.Venue,
		Price:      event.Price,
		Quantity:   quantity,
		EventImage: event.Image,
	}, nil
}

func eventSearchFields(e *models.Event) []string {
	fields := []string{e.Title, e.Description, e.Location, e.Venue, e.Organizer}
	return append(fields, e.Categories...)
}

func eventComparator(sortBy string) func(a, b *models.Event) int {
	date := func(e *models.Event) time.Time { return e.Date }
	title := func(e *models.Event) string { return e.Title }

	switch sortBy {
	case "date-desc":
		return byTime(date, true)
	case "price-asc":
		return byPrice(false)
	case "price-desc":
		return byPrice(true)
	case "title-asc":
		return byTitle(title, false)
	case "title-desc":
		return byTitle(title, true)
	case "popularity":
		return byOrdered(func(e *models.Event) int { return e.Sold() }, true)
	default:
		return byTime(date, false)
	}
}

func byPrice(desc bool) func(a, b *models.Event) int {
	return func(a, b *models.Event) int {
		c := a.Price.Cmp(b.Price)
		if desc {
			return -c
		}
		return c
	}
}

// matches applies every active filter; empty criteria keep the event
func (f DiscoveryFilters) matches(e *models.Event, now time.Time) bool {
	if len(f.Categories) > 0 && !slices.ContainsFunc(f.Categories, e.HasCategory) {
		return false
	}

	if len(f.Locations) > 0 && !slices.ContainsFunc(f.Locations, func(loc string) bool {
		return strings.Contains(strings.ToLower(e.Location), strings.ToLower(loc))
	}) {
		return false
	}

	if len(f.EventTypes) > 0 && !slices.ContainsFunc(f.EventTypes, func(t string) bool {
		return strings.EqualFold(t, string(e.Type))
	}) {
		return false
	}

	if f.QuickDate != "" && !inQuickDate(f.QuickDate, e.Date, now) {
		return false
	}

	day := startOfDay(e.Date)
	if f.DateFrom != nil && day.Before(startOfDay(*f.DateFrom)) {
		return false
	}
	if f.DateTo != nil && day.After(startOfDay(*f.DateTo)) {
		return false
	}

	if f.PriceRange != "" && !inPriceRange(f.PriceRange, e.Price) {
		return false
	}
	if f.PriceMin.Valid && e.Price.LessThan(f.PriceMin.Decimal) {
		return false
	}
	if f.PriceMax.Valid && e.Price.GreaterThan(f.PriceMax.Decimal) {
		return false
	}

	return true
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// inQuickDate works on UTC calendar days. A week ends on Sunday.
func inQuickDate(preset string, date, now time.Time) bool {
	today := startOfDay(now)
	day := startOfDay(date)

	switch preset {
	case QuickDateToday:
		return day.Equal(today)
	case QuickDateTomorrow:
		return day.Equal(today.AddDate(0, 0, 1))
	case QuickDateThisWeek:
		daysToMonday := (8 - int(today.Weekday())) % 7
		if daysToMonday == 0 {
			daysToMonday = 7
		}
		return !day.Before(today) && day.Before(today.AddDate(0, 0, daysToMonday))
	case QuickDateThisMonth:
		nextMonth := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		return !day.Before(today) && day.Before(nextMonth)
	default:
		// unknown presets do not narrow the result
		return true
	}
}

var (
	price25  = decimal.NewFromInt(25)
	price50  = decimal.NewFromInt(50)
	price100 = decimal.NewFromInt(100)
)

func inPriceRange(preset string, price decimal.Decimal) bool {
	switch preset {
	case PriceRangeFree:
		return price.IsZero()
	case PriceRangeUpTo25:
		return price.IsPositive() && price.LessThanOrEqual(price25)
	case PriceRangeUpTo50:
		return price.GreaterThan(price25) && price.LessThanOrEqual(price50)
	case PriceRangeUpTo100:
		return price.GreaterThan(price50) && price.LessThanOrEqual(price100)
	case PriceRangeOver100:
		return price.GreaterThan(price100)
	default:
		return true
	}
}

// Chips lists the active filters in the order they are shown
func (f DiscoveryFilters) Chips() []FilterChip {
	chips := []FilterChip{}
	for _, c := range f.Categories {
		chips = append(chips, FilterChip{Type: "category", Value: c, Label: c})
	}
	for _, l := range f.Locations {
		chips = append(chips, FilterChip{Type: "location", Value: l, Label: l})
	}
	for _, t := range f.EventTypes {
		chips = append(chips, FilterChip{Type: "eventType", Value: t, Label: eventTypeLabel(models.EventType(t))})
	}
	if f.QuickDate != "" {
		chips = append(chips, FilterChip{Type: "quickDate", Value: f.QuickDate, Label: f.QuickDate})
	}
	if f.DateFrom != nil {
		v := f.DateFrom.Format(discoveryDayLayout)
		chips = append(chips, FilterChip{Type: "dateFrom", Value: v, Label: "From " + f.DateFrom.Format("Jan 2, 2006")})
	}
	if f.DateTo != nil {
		v := f.DateTo.Format(discoveryDayLayout)
		chips = append(chips, FilterChip{Type: "dateTo", Value: v, Label: "Until " + f.DateTo.Format("Jan 2, 2006")})
	}
	if f.PriceRange != "" {
		chips = append(chips, FilterChip{Type: "priceRange", Value: f.PriceRange, Label: f.PriceRange})
	}
	if f.PriceMin.Valid {
		v := f.PriceMin.Decimal.String()
		chips = append(chips, FilterChip{Type: "priceMin", Value: v, Label: "Min $" + v})
	}
	if f.PriceMax.Valid {
		v := f.PriceMax.Decimal.String()
		chips = append(chips, FilterChip{Type: "priceMax", Value: v, Label: "Max $" + v})
	}
	return chips
}

// Without returns a copy of f with the chip's filter removed. Search text,
// sort and paging are kept except that paging restarts at page 1.
func (f DiscoveryFilters) Without(chip FilterChip) DiscoveryFilters {
	out := f
	out.Page = 1

	drop := func(values []string) []string {
		return slices.DeleteFunc(slices.Clone(values), func(v string) bool { return v == chip.Value })
	}

	switch chip.Type {
	case "category":
		out.Categories = drop(f.Categories)
	case "location":
		out.Locations = drop(f.Locations)
	case "eventType":
		out.EventTypes = drop(f.EventTypes)
	case "quickDate":
		out.QuickDate = ""
	case "dateFrom":
		out.DateFrom = nil
	case "dateTo":
		out.DateTo = nil
	case "priceRange":
		out.PriceRange = ""
	case "priceMin":
		out.PriceMin = decimal.NullDecimal{}
	case "priceMax":
		out.PriceMax = decimal.NullDecimal{}
	}
	return out
}

// Cleared drops every filter but keeps the search text and sort
func (f DiscoveryFilters) Cleared() DiscoveryFilters {
	return DiscoveryFilters{Query: f.Query, SortBy: f.SortBy, PerPage: f.PerPage, Page: 1}
}

func eventTypeLabel(t models.EventType) string {
	switch t {
	case models.EventInPerson:
		return "In-Person"
	case models.EventVirtual:
		return "Virtual"
	case models.EventHybrid:
		return "Hybrid"
	default:
		return string(t)
	}
}

func eventTypeFacets() []Facet[*models.Event] {
	types := []models.EventType{models.EventInPerson, models.EventVirtual, models.EventHybrid}
	facets := make([]Facet[*models.Event], 0, len(types))
	for _, t := range types {
		facets = append(facets, Facet[*models.Event]{
			Key:   string(t),
			Label: eventTypeLabel(t),
			Match: func(e *models.Event) bool { return e.Type == t },
		})
	}
	return facets
}

// categoryFacets has one bucket per distinct category in the catalog,
// alphabetical
func categoryFacets(base []*models.Event) []Facet[*models.Event] {
	var names []string
	for _, e := range base {
		for _, c := range e.Categories {
			if !slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, c) }) {
				names = append(names, c)
			}
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})

	facets := make([]Facet[*models.Event], 0, len(names))
	for _, name := range names {
		facets = append(facets, Facet[*models.Event]{
			Key:   name,
			Label: name,
			Match: func(e *models.Event) bool { return e.HasCategory(name) },
		})
	}
	return facets
}

// locationFacets buckets by "City, ST", the last two parts of a location
func locationFacets(base []*models.Event) []Facet[*models.Event] {
	var cities []string
	for _, e := range base {
		city := cityOf(e.Location)
		if !slices.Contains(cities, city) {
			cities = append(cities, city)
		}
	}
	slices.Sort(cities)

	facets := make([]Facet[*models.Event], 0, len(cities))
	for _, city := range cities {
		facets = append(facets, Facet[*models.Event]{
			Key:   city,
			Label: city,
			Match: func(e *models.Event) bool { return cityOf(e.Location) == city },
		})
	}
	return facets
}

func cityOf(location string) string {
	parts := strings.Split(location, ",")
	if len(parts) < 2 {
		return strings.TrimSpace(location)
	}
	city := strings.TrimSpace(parts[len(parts)-2])
	state := strings.TrimSpace(parts[len(parts)-1])
	return city + ", " + state
}
