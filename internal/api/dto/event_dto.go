package dto

import (
	"strings"
	"time"

	"github.com/eventdesk/event-ticketing/internal/domain"
)

// TicketLevelRequest is one ticket tier in a create request.
type TicketLevelRequest struct {
	Name  string   `json:"name" validate:"required"`
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// CreateEventRequest payload for event creation.
type CreateEventRequest struct {
	Name         string               `json:"name" validate:"required"`
	Description  string               `json:"description"`
	Date         string               `json:"date" validate:"required"`
	Location     string               `json:"location" validate:"required"`
	TicketLevels []TicketLevelRequest `json:"ticketLevels" validate:"dive"`
}

// Normalized returns a copy with surrounding whitespace removed from text fields.
func (r CreateEventRequest) Normalized() CreateEventRequest {
	r.Name = strings.TrimSpace(r.Name)
	r.Date = strings.TrimSpace(r.Date)
	r.Location = strings.TrimSpace(r.Location)
	if r.TicketLevels != nil {
		levels := make([]TicketLevelRequest, len(r.TicketLevels))
		for i, level := range r.TicketLevels {
			level.Name = strings.TrimSpace(level.Name)
			levels[i] = level
		}
		r.TicketLevels = levels
	}
	return r
}

// EventView is the wire representation of an event.
type EventView struct {
	ID               string               `json:"id"`
	Name             string               `json:"name"`
	Description      string               `json:"description,omitempty"`
	Date             time.Time            `json:"date"`
	Location         string               `json:"location"`
	TicketLevels     []domain.TicketLevel `json:"ticketLevels"`
	CreatedBy        string               `json:"createdBy"`
	Status           domain.EventStatus   `json:"status"`
	RegistrationCode string               `json:"registrationCode"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// CreateEventResponse is returned after an event is stored.
type CreateEventResponse struct {
	Message string    `json:"message"`
	Event   EventView `json:"event"`
}

// NewEventView builds the wire representation.
func NewEventView(e *domain.Event) EventView {
	return EventView{
		ID:               e.ID,
		Name:             e.Name,
		Description:      e.Description,
		Date:             e.Date,
		Location:         e.Location,
		TicketLevels:     e.TicketLevels,
		CreatedBy:        e.CreatedBy,
		Status:           e.Status,
		RegistrationCode: e.RegistrationCode,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
