package services

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"eventflow/internal/logging"
	"eventflow/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventSource struct {
	events []*models.Event
}

func (f *fakeEventSource) List() []*models.Event {
	return append([]*models.Event(nil), f.events...)
}

func (f *fakeEventSource) GetByID(id int) (*models.Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", models.ErrEventNotFound, id)
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func testEvents() []*models.Event {
	saleEnded := at("2024-07-15T23:59:59Z")
	return []*models.Event{
		{
			ID: 1, Title: "Summer Music Festival 2024", Description: "Three days of music",
			Date: at("2024-07-20T18:00:00Z"), Location: "Central Park, New York, NY", Venue: "Great Lawn Amphitheater",
			Organizer: "MusicFest Productions", Price: decimal.NewFromInt(89), TicketsLeft: 45, TotalTickets: 500,
			Categories: []string{"Music", "Festival", "Outdoor"}, Type: models.EventInPerson, SaleEndDate: &saleEnded,
		},
		{
			ID: 2, Title: "Tech Innovation Conference 2024", Description: "Industry leaders and workshops",
			Date: at("2024-08-15T09:00:00Z"), Location: "Convention Center, San Francisco, CA", Venue: "Hall A",
			Organizer: "TechForward Events", Price: decimal.NewFromInt(299), TicketsLeft: 12, TotalTickets: 200,
			Categories: []string{"Technology", "Business"}, Type: models.EventHybrid,
		},
		{
			ID: 3, Title: "Virtual Cooking Masterclass", Description: "Italian cuisine from your kitchen",
			Date: at("2024-07-25T19:00:00Z"), Location: "Online Event", Venue: "Zoom Platform",
			Organizer: "Culinary Masters Academy", Price: decimal.Zero, TicketsLeft: 234, TotalTickets: 1000,
			Categories: []string{"Food"}, Type: models.EventVirtual,
		},
		{
			ID: 4, Title: "Art Gallery Opening Night", Description: "Contemporary art and wine",
			Date: at("2024-07-21T18:30:00Z"), Location: "Modern Art Gallery, Chicago, IL", Venue: "Gallery Main Floor",
			Organizer: "Contemporary Arts Collective", Price: decimal.NewFromInt(25), TicketsLeft: 78, TotalTickets: 150,
			Categories: []string{"Arts"}, Type: models.EventInPerson,
		},
		{
			ID: 5, Title: "Jazz Night Under the Stars", Description: "Smooth jazz under the open sky",
			Date: at("2024-08-18T20:00:00Z"), Location: "Waterfront Park, Seattle, WA", Venue: "Outdoor Amphitheater",
			Organizer: "Seattle Jazz Society", Price: decimal.NewFromInt(35), TicketsLeft: 3, TotalTickets: 400,
			Categories: []string{"Music", "Jazz"}, Type: models.EventInPerson,
		},
	}
}

func newDiscovery(events []*models.Event) *EventDiscoveryService {
	return NewEventDiscoveryService(&fakeEventSource{events: events}, DiscoveryOptions{
		PageSize: 12,
		Clock:    fixedClock, // Saturday 2024-07-20 18:00 UTC
		Logger:   logging.Discard(),
	})
}

func eventIDs(events []*models.Event) []int {
	ids := make([]int, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestDiscover_Filters(t *testing.T) {
	tests := []struct {
		name    string
		filters DiscoveryFilters
		want    []int
	}{
		{name: "no filters sorts by date", filters: DiscoveryFilters{}, want: []int{1, 4, 3, 2, 5}},
		{name: "category ignores case", filters: DiscoveryFilters{Categories: []string{"music"}}, want: []int{1, 5}},
		{name: "categories are any-of", filters: DiscoveryFilters{Categories: []string{"Arts", "Food"}}, want: []int{4, 3}},
		{name: "location substring", filters: DiscoveryFilters{Locations: []string{"chicago"}}, want: []int{4}},
		{name: "event type", filters: DiscoveryFilters{EventTypes: []string{"virtual", "hybrid"}}, want: []int{3, 2}},
		{name: "today", filters: DiscoveryFilters{QuickDate: QuickDateToday}, want: []int{1}},
		{name: "tomorrow", filters: DiscoveryFilters{QuickDate: QuickDateTomorrow}, want: []int{4}},
		{name: "this week ends sunday", filters: DiscoveryFilters{QuickDate: QuickDateThisWeek}, want: []int{1, 4}},
		{name: "this month", filters: DiscoveryFilters{QuickDate: QuickDateThisMonth}, want: []int{1, 4, 3}},
		{name: "date bounds are inclusive", filters: DiscoveryFilters{DateFrom: day("2024-07-21"), DateTo: day("2024-07-25")}, want: []int{4, 3}},
		{name: "free", filters: DiscoveryFilters{PriceRange: PriceRangeFree}, want: []int{3}},
		{name: "up to 25", filters: DiscoveryFilters{PriceRange: PriceRangeUpTo25}, want: []int{4}},
		{name: "26 to 50", filters: DiscoveryFilters{PriceRange: PriceRangeUpTo50}, want: []int{5}},
		{name: "51 to 100", filters: DiscoveryFilters{PriceRange: PriceRangeUpTo100}, want: []int{1}},
		{name: "over 100", filters: DiscoveryFilters{PriceRange: PriceRangeOver100}, want: []int{2}},
		{name: "price bounds", filters: DiscoveryFilters{PriceMin: price("30"), PriceMax: price("100")}, want: []int{1, 5}},
		{name: "filters combine", filters: DiscoveryFilters{Categories: []string{"Music"}, QuickDate: QuickDateThisMonth}, want: []int{1}},
	}

	svc := newDiscovery(testEvents())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Discover(context.Background(), tt.filters)
			assert.Equal(t, tt.want, eventIDs(result.Events))
		})
	}
}

func TestDiscover_Search(t *testing.T) {
	svc := newDiscovery(testEvents())

	tests := []struct {
		name  string
		query string
		want  []int
		stage EmptyStage
	}{
		{name: "title", query: "tech", want: []int{2}},
		{name: "organizer", query: "seattle jazz society", want: []int{5}},
		{name: "venue", query: "zoom", want: []int{3}},
		{name: "category", query: "festival", want: []int{1}},
		{name: "no match", query: "zzz", want: []int{}, stage: EmptySearch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := svc.Discover(context.Background(), DiscoveryFilters{Query: tt.query})
			assert.Equal(t, tt.want, eventIDs(result.Events))
			assert.Equal(t, tt.stage, result.EmptyStage)
		})
	}
}

func TestDiscover_EmptyStages(t *testing.T) {
	empty := newDiscovery(nil).Discover(context.Background(), DiscoveryFilters{})
	assert.Equal(t, EmptyNoData, empty.EmptyStage)

	svc := newDiscovery(testEvents())
	filtered := svc.Discover(context.Background(), DiscoveryFilters{Categories: []string{"Sports"}, Query: "jazz"})
	assert.Equal(t, EmptyFilter, filtered.EmptyStage)
	assert.Equal(t, 5, filtered.TotalCount)
	assert.Equal(t, 0, filtered.FilteredCount)
}

func TestDiscover_Sorts(t *testing.T) {
	svc := newDiscovery(testEvents())

	tests := []struct {
		sortBy string
		want   []int
	}{
		{sortBy: "date-desc", want: []int{5, 2, 3, 4, 1}},
		{sortBy: "price-asc", want: []int{3, 4, 5, 1, 2}},
		{sortBy: "price-desc", want: []int{2, 1, 5, 4, 3}},
		{sortBy: "title-asc", want: []int{4, 5, 1, 2, 3}},
		{sortBy: "title-desc", want: []int{3, 2, 1, 5, 4}},
		{sortBy: "popularity", want: []int{3, 1, 5, 2, 4}},
		{sortBy: "bogus", want: []int{1, 4, 3, 2, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.sortBy, func(t *testing.T) {
			result := svc.Discover(context.Background(), DiscoveryFilters{SortBy: tt.sortBy})
			assert.Equal(t, tt.want, eventIDs(result.Events))
		})
	}
}

func TestDiscover_FacetsIgnoreFilters(t *testing.T) {
	svc := newDiscovery(testEvents())

	result := svc.Discover(context.Background(), DiscoveryFilters{Categories: []string{"Arts"}})
	require.Len(t, result.Events, 1)

	categories := FacetMap(result.Categories)
	assert.Equal(t, 2, categories["Music"])
	assert.Equal(t, 1, categories["Arts"])

	var order []string
	for _, c := range result.Categories {
		order = append(order, c.Value)
	}
	assert.Equal(t, []string{"Arts", "Business", "Festival", "Food", "Jazz", "Music", "Outdoor", "Technology"}, order)

	assert.Equal(t, map[string]int{"in-person": 3, "virtual": 1, "hybrid": 1}, FacetMap(result.EventTypes))

	var cities []string
	for _, l := range result.Locations {
		cities = append(cities, l.Value)
	}
	assert.Equal(t, []string{"Chicago, IL", "New York, NY", "Online Event", "San Francisco, CA", "Seattle, WA"}, cities)
}

func TestDiscover_Pagination(t *testing.T) {
	svc := newDiscovery(testEvents())
	filters := DiscoveryFilters{PerPage: 2}

	first := svc.Discover(context.Background(), filters)
	assert.Equal(t, []int{1, 4}, eventIDs(first.Events))
	assert.True(t, first.HasMore)
	assert.Equal(t, 5, first.MatchedCount)

	second, err := svc.LoadMore(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, []int{3, 2}, eventIDs(second.Events))

	filters.Page = 2
	third, err := svc.LoadMore(context.Background(), filters)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, eventIDs(third.Events))
	assert.False(t, third.HasMore)

	beyond := svc.Discover(context.Background(), DiscoveryFilters{PerPage: 2, Page: 10})
	assert.Empty(t, beyond.Events)
	assert.False(t, beyond.HasMore)
}

func TestDiscover_ExtremePaging(t *testing.T) {
	svc := newDiscovery(testEvents())

	farPage := svc.Discover(context.Background(), DiscoveryFilters{Page: math.MaxInt})
	assert.Empty(t, farPage.Events)
	assert.False(t, farPage.HasMore)
	assert.Equal(t, 5, farPage.MatchedCount)

	wide := svc.Discover(context.Background(), DiscoveryFilters{Page: 2, PerPage: math.MaxInt})
	assert.Equal(t, MaxPageSize, wide.PerPage)
	assert.Empty(t, wide.Events)
	assert.False(t, wide.HasMore)

	more, err := svc.LoadMore(context.Background(), DiscoveryFilters{Page: math.MaxInt})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, more.Page)
	assert.Empty(t, more.Events)
}

func TestLoadMore_Cancelled(t *testing.T) {
	svc := NewEventDiscoveryService(&fakeEventSource{events: testEvents()}, DiscoveryOptions{
		LoadMoreDelay: time.Hour,
		Clock:         fixedClock,
		Logger:        logging.Discard(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := svc.LoadMore(ctx, DiscoveryFilters{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestDiscoveryFilters_Chips(t *testing.T) {
	filters := DiscoveryFilters{
		Query:      "jazz",
		Categories: []string{"Music", "Arts"},
		Locations:  []string{"Seattle, WA"},
		EventTypes: []string{"in-person"},
		QuickDate:  QuickDateThisWeek,
		PriceRange: PriceRangeUpTo50,
		PriceMax:   price("40"),
		Page:       3,
	}

	chips := filters.Chips()
	assert.Equal(t, []FilterChip{
		{Type: "category", Value: "Music", Label: "Music"},
		{Type: "category", Value: "Arts", Label: "Arts"},
		{Type: "location", Value: "Seattle, WA", Label: "Seattle, WA"},
		{Type: "eventType", Value: "in-person", Label: "In-Person"},
		{Type: "quickDate", Value: "This Week", Label: "This Week"},
		{Type: "priceRange", Value: "$26-50", Label: "$26-50"},
		{Type: "priceMax", Value: "40", Label: "Max $40"},
	}, chips)

	without := filters.Without(chips[0])
	assert.Equal(t, []string{"Arts"}, without.Categories)
	assert.Equal(t, []string{"Music", "Arts"}, filters.Categories)
	assert.Equal(t, 1, without.Page)

	without = without.Without(FilterChip{Type: "priceMax"})
	assert.False(t, without.PriceMax.Valid)

	cleared := filters.Cleared()
	assert.Empty(t, cleared.Chips())
	assert.Equal(t, "jazz", cleared.Query)
}

func TestSelectTickets(t *testing.T) {
	svc := newDiscovery(testEvents())

	item, err := svc.SelectTickets(2, " VIP Pass ", 2)
	require.NoError(t, err)
	assert.Equal(t, models.CartLineItem{
		ID:         "2:vip-pass",
		EventID:    2,
		EventTitle: "Tech Innovation Conference 2024",
		TicketType: "VIP Pass",
		EventDate:  "2024-08-15",
		EventTime:  "09:00",
		Venue:      "Hall A",
		Price:      decimal.NewFromInt(299),
		Quantity:   2,
	}, item)

	item, err = svc.SelectTickets(4, "", 1)
	require.NoError(t, err)
	assert.Equal(t, DefaultTicketType, item.TicketType)
	assert.Equal(t, "4:general-admission", item.ID)
}

func TestSelectTickets_Rejected(t *testing.T) {
	soldOut := testEvents()
	soldOut[1].TicketsLeft = 0
	svc := newDiscovery(soldOut)

	tests := []struct {
		name     string
		eventID  int
		quantity int
		wantErr  error
		wantMsg  string
	}{
		{name: "unknown event", eventID: 99, quantity: 1, wantErr: models.ErrEventNotFound},
		{name: "sale ended", eventID: 1, quantity: 1, wantErr: models.ErrSaleEnded},
		{name: "sold out", eventID: 2, quantity: 1, wantErr: models.ErrSoldOut},
		{name: "free event", eventID: 3, quantity: 1, wantErr: models.ErrInvalidInput},
		{name: "zero", eventID: 4, quantity: 0, wantMsg: "Select between 1 and 10 tickets"},
		{name: "over the cap", eventID: 4, quantity: 11, wantMsg: "Select between 1 and 10 tickets"},
		{name: "more than left", eventID: 5, quantity: 4, wantMsg: "Only 3 tickets left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SelectTickets(tt.eventID, "", tt.quantity)
			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			verrs, ok := IsValidationError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, verrs["quantity"])
		})
	}
}
