package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventdesk/event-ticketing/internal/domain"
)

// EventRepository defines persistence access for events.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository returns a Postgres-backed implementation.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (name, description, date, location, ticket_levels, created_by, status, registration_code)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	levels, err := json.Marshal(event.TicketLevels)
	if err != nil {
		return fmt.Errorf("encode ticket levels: %w", err)
	}

	err = r.pool.QueryRow(ctx, query,
		event.Name,
		event.Description,
		event.Date,
		event.Location,
		levels,
		event.CreatedBy,
		event.Status,
		event.RegistrationCode,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", mapPgError(err))
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	const query = `
        SELECT id, name, description, date, location, ticket_levels, created_by, status, registration_code,
               created_at, updated_at
        FROM events WHERE id=$1`

	var (
		event  domain.Event
		levels []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Location,
		&levels,
		&event.CreatedBy,
		&event.Status,
		&event.RegistrationCode,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	if err := json.Unmarshal(levels, &event.TicketLevels); err != nil {
		return nil, fmt.Errorf("decode ticket levels: %w", err)
	}
	return &event, nil
}
