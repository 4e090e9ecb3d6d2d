package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/event-ticketing/internal/api/dto"
	"github.com/eventdesk/event-ticketing/internal/domain"
)

func price(v float64) *float64 { return &v }

func validEventRequest() dto.CreateEventRequest {
	return dto.CreateEventRequest{
		Name:        "Go Meetup",
		Description: `<p>Talks</p><script>alert(1)</script>`,
		Date:        "2025-06-01T18:00:00Z",
		Location:    "Berlin",
		TicketLevels: []dto.TicketLevelRequest{
			{Name: "General", Price: price(10)},
			{Name: "VIP", Price: price(50)},
		},
	}
}

func TestCreateEvent(t *testing.T) {
	h := newHarness(t)
	caller := domain.Identity{ID: "owner-1", Role: domain.RoleEventOwner}

	event, err := h.eventService.Create(context.Background(), caller, validEventRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, caller.ID, event.CreatedBy)
	assert.Equal(t, domain.EventStatusPending, event.Status)
	assert.NotEmpty(t, event.RegistrationCode)
	assert.Equal(t, time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), event.Date)
	assert.Equal(t, []domain.TicketLevel{{Name: "General", Price: 10}, {Name: "VIP", Price: 50}}, event.TicketLevels)
	assert.Equal(t, "<p>Talks</p>", event.Description)

	second, err := h.eventService.Create(context.Background(), caller, validEventRequest())
	require.NoError(t, err)
	assert.NotEqual(t, event.RegistrationCode, second.RegistrationCode)
	assert.Equal(t, 2, h.events.Len())
}

func TestCreateEvent_Rejections(t *testing.T) {
	caller := domain.Identity{ID: "owner-1", Role: domain.RoleEventOwner}

	tests := []struct {
		name   string
		mutate func(*dto.CreateEventRequest)
		status int
		field  string
	}{
		{name: "no ticket levels", mutate: func(r *dto.CreateEventRequest) { r.TicketLevels = nil }, status: http.StatusBadRequest},
		{name: "empty ticket levels with other errors", mutate: func(r *dto.CreateEventRequest) {
			r.TicketLevels = []dto.TicketLevelRequest{}
			r.Name = ""
		}, status: http.StatusBadRequest},
		{name: "missing name", mutate: func(r *dto.CreateEventRequest) { r.Name = "" }, status: http.StatusUnprocessableEntity, field: "name"},
		{name: "negative price", mutate: func(r *dto.CreateEventRequest) { r.TicketLevels[0].Price = price(-1) }, status: http.StatusUnprocessableEntity, field: "ticketLevels[0].price"},
		{name: "missing price", mutate: func(r *dto.CreateEventRequest) { r.TicketLevels[1].Price = nil }, status: http.StatusUnprocessableEntity, field: "ticketLevels[1].price"},
		{name: "blank name", mutate: func(r *dto.CreateEventRequest) { r.Name = "   " }, status: http.StatusUnprocessableEntity, field: "name"},
		{name: "blank location", mutate: func(r *dto.CreateEventRequest) { r.Location = "\t" }, status: http.StatusUnprocessableEntity, field: "location"},
		{name: "blank ticket level name", mutate: func(r *dto.CreateEventRequest) { r.TicketLevels[0].Name = "  " }, status: http.StatusUnprocessableEntity, field: "ticketLevels[0].name"},
		{name: "bad date", mutate: func(r *dto.CreateEventRequest) { r.Date = "next friday" }, status: http.StatusUnprocessableEntity, field: "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := validEventRequest()
			tt.mutate(&req)

			_, err := h.eventService.Create(context.Background(), caller, req)
			de := requireStatus(t, err, tt.status)
			if tt.status == http.StatusBadRequest {
				assert.Equal(t, MsgTicketLevelsRequired, de.Message)
			}
			if tt.field != "" {
				assert.Contains(t, de.Details, tt.field)
			}
			assert.Equal(t, 0, h.events.Len())
		})
	}
}

func TestCreateEvent_TrimsFields(t *testing.T) {
	h := newHarness(t)
	caller := domain.Identity{ID: "owner-1", Role: domain.RoleEventOwner}

	req := validEventRequest()
	req.Name = "  Go Meetup "
	req.Location = "\tBerlin\n"
	req.TicketLevels[0].Name = " General "

	event, err := h.eventService.Create(context.Background(), caller, req)
	require.NoError(t, err)
	assert.Equal(t, "Go Meetup", event.Name)
	assert.Equal(t, "Berlin", event.Location)
	assert.Equal(t, "General", event.TicketLevels[0].Name)
	assert.Equal(t, " General ", req.TicketLevels[0].Name)
}

func TestParseEventDate(t *testing.T) {
	for _, in := range []string{"2025-06-01", "2025-06-01T00:00:00", "2025-06-01T00:00:00Z"} {
		got, err := parseEventDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got, in)
	}
}
