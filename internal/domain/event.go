package domain

import "time"

// EventStatus enumerates lifecycle states for events.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusEnded    EventStatus = "ended"
)

// TicketLevel is one purchasable tier of an event.
type TicketLevel struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Event is a ticketed event created by an authenticated user.
type Event struct {
	ID               string
	Name             string
	Description      string
	Date             time.Time
	Location         string
	TicketLevels     []TicketLevel
	CreatedBy        string
	Status           EventStatus
	RegistrationCode string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
