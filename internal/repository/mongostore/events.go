package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/repository"
)

const eventsCollection = "events"

type ticketLevelDoc struct {
	Name  string  `bson:"name"`
	Price float64 `bson:"price"`
}

type eventDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Name             string             `bson:"name"`
	Description      string             `bson:"description,omitempty"`
	Date             time.Time          `bson:"date"`
	Location         string             `bson:"location"`
	TicketLevels     []ticketLevelDoc   `bson:"ticketLevels"`
	CreatedBy        primitive.ObjectID `bson:"createdBy"`
	Status           string             `bson:"status"`
	RegistrationCode string             `bson:"registrationCode"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

func (d *eventDoc) toDomain() *domain.Event {
	levels := make([]domain.TicketLevel, 0, len(d.TicketLevels))
	for _, l := range d.TicketLevels {
		levels = append(levels, domain.TicketLevel{Name: l.Name, Price: l.Price})
	}
	return &domain.Event{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Description:      d.Description,
		Date:             d.Date.UTC(),
		Location:         d.Location,
		TicketLevels:     levels,
		CreatedBy:        d.CreatedBy.Hex(),
		Status:           domain.EventStatus(d.Status),
		RegistrationCode: d.RegistrationCode,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}

// EventStore is the MongoDB-backed repository.EventRepository.
type EventStore struct {
	c     *mongo.Collection
	clock clock.Clock
}

// NewEventStore creates a store over the events collection.
func NewEventStore(db *mongo.Database, clk clock.Clock) *EventStore {
	return &EventStore{c: db.Collection(eventsCollection), clock: clk}
}

// EnsureIndexes creates the registration code and creator indexes.
func (s *EventStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "registrationCode", Value: 1}},
			Options: options.Index().SetName("uniq_events_registration_code").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdBy", Value: 1}},
			Options: options.Index().SetName("idx_events_created_by"),
		},
	}
	if _, err := s.c.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure events indexes: %w", err)
	}
	return nil
}

func (s *EventStore) Create(ctx context.Context, event *domain.Event) error {
	creator, err := primitive.ObjectIDFromHex(event.CreatedBy)
	if err != nil {
		return fmt.Errorf("invalid creator id %q: %w", event.CreatedBy, err)
	}

	levels := make([]ticketLevelDoc, 0, len(event.TicketLevels))
	for _, l := range event.TicketLevels {
		levels = append(levels, ticketLevelDoc{Name: l.Name, Price: l.Price})
	}

	now := s.clock.Now()
	doc := eventDoc{
		ID:               primitive.NewObjectID(),
		Name:             event.Name,
		Description:      event.Description,
		Date:             event.Date,
		Location:         event.Location,
		TicketLevels:     levels,
		CreatedBy:        creator,
		Status:           string(event.Status),
		RegistrationCode: event.RegistrationCode,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert event: %w", err)
	}
	event.ID = doc.ID.Hex()
	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}
	var doc eventDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return doc.toDomain(), nil
}

var _ repository.EventRepository = (*EventStore)(nil)
