package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/api/dto"
	"github.com/eventdesk/event-ticketing/internal/auth"
	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/config"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/events"
	"github.com/eventdesk/event-ticketing/internal/repository"
	"github.com/eventdesk/event-ticketing/internal/validation"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

const (
	MsgUserExists         = "User already exists"
	MsgInvalidCompany     = "Invalid company (event owner)"
	MsgCompanyRequired    = "Company name is required for event owners"
	MsgInvalidCredentials = "Invalid credentials"
	MsgPendingApproval    = "Your account is pending approval by admin."
	MsgSuspended          = "Your account is suspended."
	MsgRecoverNotFound    = "User not found."
	MsgEmailNotFound      = "Email does not exist"
	MsgInvalidResetToken  = "Invalid or expired token"
	MsgWrongPassword      = "This password is incorrect"
	MsgUserNotFound       = "User not found"
)

const (
	companyIDDigits    = 10
	companyIDAttempts  = 5
	resetCodeMin       = 10000
	resetCodeRangeSize = 90000
)

// Session is the result of a successful login.
type Session struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// AuthService coordinates registration, login and the password lifecycle.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	validator  *validation.Validator
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Users      repository.UserRepository
	Tokens     *auth.TokenManager
	Validator  *validation.Validator
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.Users,
		tokens:     deps.Tokens,
		validator:  deps.Validator,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   cfg.PasswordResetTTL(),
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.NewBadRequest(MsgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	companyID := ""
	switch req.Role {
	case domain.RoleBaseUser:
		if _, err := s.users.GetOwnerByCompanyID(ctx, req.CompanyID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewBadRequest(MsgInvalidCompany)
			}
			return nil, apperrors.NewInternalError(err)
		}
		companyID = req.CompanyID
	case domain.RoleEventOwner:
		if req.Company == "" {
			return nil, apperrors.NewBadRequest(MsgCompanyRequired)
		}
		generated, err := s.newCompanyID(ctx)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		companyID = generated
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Company:      req.Company,
		CompanyID:    companyID,
		Status:       domain.InitialStatus(req.Role),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewBadRequest(MsgUserExists)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
		zap.String("status", string(user.Status)))
	s.publish(ctx, events.New(events.EventUserRegistered, user.ID, events.Actor{}, s.clock.Now(),
		events.UserRegisteredPayload{Email: user.Email, Role: user.Role, CompanyID: user.CompanyID, Status: user.Status}))
	return user, nil
}

// Login authenticates an approved account and issues tokens.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewBadRequest(MsgInvalidCredentials)
		}
		return nil, apperrors.NewInternalError(err)
	}

	switch user.Status {
	case domain.UserStatusPending:
		return nil, apperrors.NewBadRequest(MsgPendingApproval)
	case domain.UserStatusSuspended:
		return nil, apperrors.NewBadRequest(MsgSuspended)
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.NewBadRequest(MsgInvalidCredentials)
	}

	identity := domain.Identity{ID: user.ID, Role: user.Role}
	token, exp, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refresh, _, err := s.tokens.IssueRefresh(identity)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, AccessToken: token, RefreshToken: refresh, ExpiresAt: exp}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (string, time.Time, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", time.Time{}, err
	}

	claims, err := s.tokens.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return "", time.Time{}, apperrors.NewForbidden(auth.MsgInvalidToken)
	}

	user, err := s.users.GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", time.Time{}, apperrors.NewForbidden(auth.MsgInvalidToken)
		}
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	switch user.Status {
	case domain.UserStatusPending:
		return "", time.Time{}, apperrors.NewBadRequest(MsgPendingApproval)
	case domain.UserStatusSuspended:
		return "", time.Time{}, apperrors.NewBadRequest(MsgSuspended)
	}

	token, exp, err := s.tokens.Issue(domain.Identity{ID: user.ID, Role: user.Role})
	if err != nil {
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}

// RecoverPassword stores a one-time reset code and schedules the reset email.
func (s *AuthService) RecoverPassword(ctx context.Context, req dto.RecoverPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(MsgRecoverNotFound)
		}
		return apperrors.NewInternalError(err)
	}

	code, err := randomDigits(resetCodeMin, resetCodeRangeSize)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	expiry := s.clock.Now().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, code, expiry); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventPasswordResetRequested, user.ID, events.Actor{}, s.clock.Now(),
		events.PasswordResetRequestedPayload{Email: user.Email, Name: user.Name, Code: code, ExpiresAt: expiry}))
	return nil
}

// UpdatePassword completes a reset using the emailed code.
func (s *AuthService) UpdatePassword(ctx context.Context, req dto.UpdatePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewFieldError("email", MsgEmailNotFound)
		}
		return apperrors.NewInternalError(err)
	}
	if !user.ResetTokenValid(req.Token, s.clock.Now()) {
		return apperrors.NewFieldError("token", MsgInvalidResetToken)
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.ResetPassword(ctx, user.ID, hash); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventPasswordChanged, user.ID, events.Actor{}, s.clock.Now(),
		events.PasswordChangedPayload{ViaReset: true}))
	return nil
}

// ChangePassword replaces the caller's password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, caller domain.Identity, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewFieldError("message", MsgUserNotFound)
		}
		return apperrors.NewInternalError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, req.OldPassword); err != nil {
		return apperrors.NewFieldError("old_password", MsgWrongPassword)
	}

	hash, err := auth.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.New(events.EventPasswordChanged, user.ID,
		events.Actor{UserID: caller.ID, Role: caller.Role}, s.clock.Now(), events.PasswordChangedPayload{}))
	return nil
}

// newCompanyID draws a zero-padded 10-digit code not yet used by another owner.
func (s *AuthService) newCompanyID(ctx context.Context) (string, error) {
	for i := 0; i < companyIDAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1e10))
		if err != nil {
			return "", fmt.Errorf("generate company id: %w", err)
		}
		id := fmt.Sprintf("%0*d", companyIDDigits, n.Int64())
		if _, err := s.users.GetOwnerByCompanyID(ctx, id); errors.Is(err, repository.ErrNotFound) {
			return id, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", errors.New("generate company id: no free code")
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}

// publishEvent dispatches event and logs handler failures without failing the caller.
func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Error("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject_id", event.SubjectID),
			zap.Error(err))
	}
}

// randomDigits returns a uniformly random number in [base, base+size) as a string.
func randomDigits(base, size int64) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(size))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprint(base + n.Int64()), nil
}
