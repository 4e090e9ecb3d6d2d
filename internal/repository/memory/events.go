package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/repository"
)

// EventStore keeps events in a map guarded by a mutex.
type EventStore struct {
	mu     sync.RWMutex
	byID   map[string]*domain.Event
	byCode map[string]string
	clock  clock.Clock
}

// NewEventStore returns an empty store.
func NewEventStore(clk clock.Clock) *EventStore {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &EventStore{
		byID:   make(map[string]*domain.Event),
		byCode: make(map[string]string),
		clock:  clk,
	}
}

func (s *EventStore) Create(_ context.Context, event *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[event.RegistrationCode]; exists {
		return repository.ErrDuplicate
	}
	now := s.clock.Now()
	event.ID = uuid.NewString()
	event.CreatedAt = now
	event.UpdatedAt = now

	s.byID[event.ID] = cloneEvent(event)
	s.byCode[event.RegistrationCode] = event.ID
	return nil
}

func (s *EventStore) GetByID(_ context.Context, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneEvent(event), nil
}

// Len reports the number of stored events.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func cloneEvent(e *domain.Event) *domain.Event {
	c := *e
	c.TicketLevels = append([]domain.TicketLevel(nil), e.TicketLevels...)
	return &c
}

var _ repository.EventRepository = (*EventStore)(nil)
