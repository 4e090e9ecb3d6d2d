package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/api/dto"
	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/events"
	"github.com/eventdesk/event-ticketing/internal/repository"
	"github.com/eventdesk/event-ticketing/internal/validation"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

const (
	MsgTicketLevelsRequired = "At least one ticket level is required."
	MsgInvalidDate          = "Invalid date"
)

var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// EventService creates ticketed events.
type EventService struct {
	events     repository.EventRepository
	validator  *validation.Validator
	dispatcher events.Dispatcher
	sanitizer  *bluemonday.Policy
	clock      clock.Clock
	logger     *zap.Logger
}

// EventDependencies encapsulates requirements for the event service.
type EventDependencies struct {
	Events     repository.EventRepository
	Validator  *validation.Validator
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		events:     deps.Events,
		validator:  deps.Validator,
		dispatcher: deps.Dispatcher,
		sanitizer:  bluemonday.UGCPolicy(),
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
}

// Create persists a new pending event owned by caller.
func (s *EventService) Create(ctx context.Context, caller domain.Identity, req dto.CreateEventRequest) (*domain.Event, error) {
	if len(req.TicketLevels) == 0 {
		return nil, apperrors.NewBadRequest(MsgTicketLevelsRequired)
	}
	req = req.Normalized()
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		return nil, apperrors.NewFieldError("date", MsgInvalidDate)
	}

	levels := make([]domain.TicketLevel, 0, len(req.TicketLevels))
	for _, level := range req.TicketLevels {
		levels = append(levels, domain.TicketLevel{Name: level.Name, Price: *level.Price})
	}

	event := &domain.Event{
		Name:             req.Name,
		Description:      s.sanitizer.Sanitize(req.Description),
		Date:             date,
		Location:         req.Location,
		TicketLevels:     levels,
		CreatedBy:        caller.ID,
		Status:           domain.EventStatusPending,
		RegistrationCode: uuid.NewString(),
	}
	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			event.RegistrationCode = uuid.NewString()
			err = s.events.Create(ctx, event)
		}
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}

	s.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("created_by", caller.ID),
		zap.Int("ticket_levels", len(levels)))
	publishEvent(ctx, s.dispatcher, s.logger, events.New(events.EventEventCreated, event.ID,
		events.Actor{UserID: caller.ID, Role: caller.Role}, s.clock.Now(),
		events.EventCreatedPayload{Name: event.Name, RegistrationCode: event.RegistrationCode}))
	return event, nil
}

func parseEventDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range eventDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
