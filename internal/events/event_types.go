package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/eventdesk/event-ticketing/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered         EventType = "user_registered"
	EventUserStatusChanged      EventType = "user_status_changed"
	EventPasswordResetRequested EventType = "password_reset_requested"
	EventPasswordChanged        EventType = "password_changed"
	EventEventCreated           EventType = "event_created"
)

// Actor identifies who caused an event. Empty for unauthenticated flows.
type Actor struct {
	UserID string      `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, subjectID string, actor Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Actor:     actor,
		Timestamp: at,
		Payload:   payload,
	}
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	CompanyID string            `json:"company_id,omitempty"`
	Status    domain.UserStatus `json:"status"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	OldStatus domain.UserStatus `json:"old_status"`
	NewStatus domain.UserStatus `json:"new_status"`
}

// PasswordResetRequestedPayload carries what the reset email needs.
type PasswordResetRequestedPayload struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PasswordChangedPayload payload.
type PasswordChangedPayload struct {
	ViaReset bool `json:"via_reset"`
}

// EventCreatedPayload payload.
type EventCreatedPayload struct {
	Name             string `json:"name"`
	RegistrationCode string `json:"registration_code"`
}
