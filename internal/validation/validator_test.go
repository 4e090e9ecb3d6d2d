package validation

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdesk/event-ticketing/internal/api/dto"
	"github.com/eventdesk/event-ticketing/internal/domain"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

func newValidator() *Validator {
	v := New()
	v.RegisterStructRule(dto.RegisterRequestRules, dto.RegisterRequest{})
	return v
}

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
	require.Equal(t, apperrors.InvalidEntryMessage, de.Message)
	return de.Details
}

func TestRegisterRequest(t *testing.T) {
	v := newValidator()

	t.Run("short name and password, base user without company id", func(t *testing.T) {
		err := v.Struct(dto.RegisterRequest{Name: "Al", Email: "a@x.com", Password: "short", Role: domain.RoleBaseUser})
		assert.Equal(t, map[string]string{
			"name":      "Name must be at least 3 characters long",
			"password":  "Password must be at least 8 characters long",
			"companyId": "Company ID is required for base users",
		}, details(t, err))
	})

	t.Run("invalid email and role", func(t *testing.T) {
		err := v.Struct(dto.RegisterRequest{Name: "Alice", Email: "nope", Password: "Password123", Role: "ADMIN"})
		assert.Equal(t, map[string]string{
			"email": "Invalid email format",
			"role":  "Invalid role. Valid roles are SUPER_ADMIN, EVENT_OWNER, BASE_USER",
		}, details(t, err))
	})

	t.Run("event owner needs company", func(t *testing.T) {
		err := v.Struct(dto.RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "Password123", Role: domain.RoleEventOwner})
		assert.Equal(t, map[string]string{"company": "Company name is required for event owners"}, details(t, err))

		err = v.Struct(dto.RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "Password123", Role: domain.RoleEventOwner, Company: "Ac"})
		assert.Equal(t, map[string]string{"company": "Company name must be at least 3 characters long"}, details(t, err))
	})

	t.Run("valid owner", func(t *testing.T) {
		assert.NoError(t, v.Struct(dto.RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "Password123",
			Role: domain.RoleEventOwner, Company: "Acme"}))
	})

	t.Run("super admin needs neither company field", func(t *testing.T) {
		assert.NoError(t, v.Struct(dto.RegisterRequest{Name: "Root", Email: "r@x.com", Password: "Password123",
			Role: domain.RoleSuperAdmin}))
	})
}

func TestPasswordMessagesDifferByRequest(t *testing.T) {
	v := newValidator()

	err := v.Struct(dto.UpdatePasswordRequest{Email: "a@x.com", Token: "12345", Password: "short"})
	assert.Equal(t, map[string]string{"password": "8 characters minimum"}, details(t, err))

	err = v.Struct(dto.ChangePasswordRequest{NewPassword: "short"})
	assert.Equal(t, map[string]string{
		"old_password": "old_password is required",
		"new_password": "8 characters minimum",
	}, details(t, err))

	err = v.Struct(dto.UpdatePasswordRequest{Email: "a@x.com", Password: "Password123"})
	assert.Equal(t, map[string]string{"token": "token is required"}, details(t, err))
}

func TestCreateEventRequest(t *testing.T) {
	v := newValidator()
	negative := -1.0

	err := v.Struct(dto.CreateEventRequest{
		Location: "Berlin",
		Date:     "2030-01-01",
		TicketLevels: []dto.TicketLevelRequest{
			{Name: "", Price: &negative},
			{Name: "VIP"},
		},
	})
	assert.Equal(t, map[string]string{
		"name":                  "Event name is required",
		"ticketLevels[0].name":  "Ticket level name is required",
		"ticketLevels[0].price": "Price must be greater than or equal to 0",
		"ticketLevels[1].price": "Price is required",
	}, details(t, err))

	zero := 0.0
	assert.NoError(t, v.Struct(dto.CreateEventRequest{
		Name: "Launch", Date: "2030-01-01", Location: "Berlin",
		TicketLevels: []dto.TicketLevelRequest{{Name: "Free", Price: &zero}},
	}))
}
