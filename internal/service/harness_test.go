package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/eventdesk/event-ticketing/internal/auth"
	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/config"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/events"
	"github.com/eventdesk/event-ticketing/internal/mail"
	"github.com/eventdesk/event-ticketing/internal/repository/memory"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

const testPassword = "Password123"

type harness struct {
	clock        *clock.Fixed
	users        *memory.UserStore
	events       *memory.EventStore
	queue        mail.Queue
	tokens       *auth.TokenManager
	authService  *AuthService
	userService  *UserService
	eventService *EventService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clk := clock.NewFixed(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	users := memory.NewUserStore(clk)
	eventStore := memory.NewEventStore(clk)
	queue := mail.NewMemoryQueue(16)
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()
	validator := NewRequestValidator()

	tokens, err := auth.NewTokenManager("test-secret", time.Hour, 24*time.Hour, clk)
	require.NoError(t, err)

	NewNotificationService(dispatcher, queue, clk, logger).RegisterHandlers()

	cfg := config.AuthConfig{BcryptCost: bcrypt.MinCost, PasswordResetTTLMinutes: 60}
	return &harness{
		clock:  clk,
		users:  users,
		events: eventStore,
		queue:  queue,
		tokens: tokens,
		authService: NewAuthService(cfg, AuthDependencies{
			Users:      users,
			Tokens:     tokens,
			Validator:  validator,
			Dispatcher: dispatcher,
			Clock:      clk,
			Logger:     logger,
		}),
		userService: NewUserService(UserDependencies{
			Users:      users,
			Dispatcher: dispatcher,
			Clock:      clk,
			Logger:     logger,
		}),
		eventService: NewEventService(EventDependencies{
			Events:     eventStore,
			Validator:  validator,
			Dispatcher: dispatcher,
			Clock:      clk,
			Logger:     logger,
		}),
	}
}

// seedUser stores a user with a known password directly, bypassing registration rules.
func (h *harness) seedUser(t *testing.T, email string, role domain.Role, status domain.UserStatus, companyID string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		Name:         "Test " + string(role),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CompanyID:    companyID,
		Status:       status,
	}
	require.NoError(t, h.users.Create(context.Background(), user))
	return user
}

func (h *harness) nextJob(t *testing.T) mail.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	job, err := h.queue.Dequeue(ctx)
	require.NoError(t, err)
	return job
}

func identityOf(u *domain.User) domain.Identity {
	return domain.Identity{ID: u.ID, Role: u.Role}
}

func requireStatus(t *testing.T, err error, status int) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	de := apperrors.ToDomainError(err)
	require.Equal(t, status, de.HTTPStatus, "unexpected error: %v", err)
	return de
}
