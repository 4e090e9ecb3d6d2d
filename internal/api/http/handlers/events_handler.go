package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/eventdesk/event-ticketing/internal/api/dto"
	"github.com/eventdesk/event-ticketing/internal/service"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

// EventsHandler exposes event endpoints under /api/events.
type EventsHandler struct {
	events *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{events: eventService}
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest(msgInvalidBody)
	}
	event, err := h.events.Create(c.UserContext(), caller, req)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.CreateEventResponse{
		Message: "Event created successfully",
		Event:   dto.NewEventView(event),
	})
}
