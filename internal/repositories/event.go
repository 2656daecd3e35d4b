package repositories

import (
	"fmt"
	"slices"

	"eventflow/internal/models"
)

// EventRepository serves the read-only event catalog
type EventRepository struct {
	events []*models.Event
	byID   map[int]*models.Event
}

// NewEventRepository creates a new event repository over events
func NewEventRepository(events []*models.Event) *EventRepository {
	r := &EventRepository{
		events: events,
		byID:   make(map[int]*models.Event, len(events)),
	}
	for _, e := range events {
		r.byID[e.ID] = e
	}
	return r
}

// NewFixtureEventRepository loads the embedded catalog
func NewFixtureEventRepository() (*EventRepository, error) {
	events, err := LoadEvents(mustReadFixture(EventsFixture))
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return NewEventRepository(events), nil
}

// List returns every event in catalog order. The slice is a copy; the
// events themselves are shared and must not be modified.
func (r *EventRepository) List() []*models.Event {
	return slices.Clone(r.events)
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(id int) (*models.Event, error) {
	event, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrEventNotFound, id)
	}
	return event, nil
}

// Count returns the number of events in the catalog
func (r *EventRepository) Count() int {
	return len(r.events)
}

// TicketsLeft returns the remaining inventory across all events
func (r *EventRepository) TicketsLeft() int {
	total := 0
	for _, e := range r.events {
		total += e.TicketsLeft
	}
	return total
}
