package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/events"
	"github.com/eventdesk/event-ticketing/internal/policy"
	"github.com/eventdesk/event-ticketing/internal/repository"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

const (
	MsgTargetNotFound     = "User not found"
	MsgNotAllowedApprove  = "You are not authorized to approve this user"
	MsgNotAllowedSuspend  = "You are not authorized to suspend this user"
	MsgNotAllowedResource = "You are not authorized to access this resource."
	MsgEventOwnerNotFound = "Event owner not found."
)

// UserService manages account status transitions and user listings.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	clock      clock.Clock
	logger     *zap.Logger
}

// UserDependencies encapsulates requirements for the user service.
type UserDependencies struct {
	Users      repository.UserRepository
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		clock:      deps.Clock,
		logger:     deps.Logger,
	}
}

// Approve moves the target user to approved.
func (s *UserService) Approve(ctx context.Context, caller domain.Identity, targetID string) error {
	return s.transition(ctx, caller, targetID, policy.ApproveUser, domain.UserStatusApproved, MsgNotAllowedApprove)
}

// Suspend moves the target user to suspended.
func (s *UserService) Suspend(ctx context.Context, caller domain.Identity, targetID string) error {
	return s.transition(ctx, caller, targetID, policy.SuspendUser, domain.UserStatusSuspended, MsgNotAllowedSuspend)
}

func (s *UserService) transition(ctx context.Context, caller domain.Identity, targetID string,
	action policy.Action, status domain.UserStatus, deniedMsg string) error {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(MsgTargetNotFound)
		}
		return apperrors.NewInternalError(err)
	}

	actor, err := s.actor(ctx, caller)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewForbidden(deniedMsg)
		}
		return apperrors.NewInternalError(err)
	}
	if !policy.Allowed(action, actor, target) {
		return apperrors.NewForbidden(deniedMsg)
	}

	if err := s.users.UpdateStatus(ctx, target.ID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(MsgTargetNotFound)
		}
		return apperrors.NewInternalError(err)
	}

	s.logger.Info("user status changed",
		zap.String("user_id", target.ID),
		zap.String("actor_id", caller.ID),
		zap.String("old_status", string(target.Status)),
		zap.String("new_status", string(status)))
	s.publish(ctx, events.New(events.EventUserStatusChanged, target.ID,
		events.Actor{UserID: caller.ID, Role: caller.Role}, s.clock.Now(),
		events.UserStatusChangedPayload{OldStatus: target.Status, NewStatus: status}))
	return nil
}

// ListEventOwners returns every EVENT_OWNER account.
func (s *UserService) ListEventOwners(ctx context.Context, caller domain.Identity) ([]domain.User, error) {
	if !policy.Allowed(policy.ListEventOwners, policy.Actor{ID: caller.ID, Role: caller.Role}, nil) {
		return nil, apperrors.NewForbidden(MsgNotAllowedResource)
	}
	owners, err := s.users.List(ctx, repository.UserFilter{Role: domain.RoleEventOwner})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return owners, nil
}

// ListBaseUsers returns the BASE_USER accounts visible to caller.
func (s *UserService) ListBaseUsers(ctx context.Context, caller domain.Identity) ([]domain.User, error) {
	actor, err := s.actor(ctx, caller)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewBadRequest(MsgEventOwnerNotFound)
		}
		return nil, apperrors.NewInternalError(err)
	}

	scope, ok := policy.BaseUserScope(actor)
	if !ok {
		return nil, apperrors.NewForbidden(MsgNotAllowedResource)
	}

	filter := repository.UserFilter{Role: domain.RoleBaseUser}
	if !scope.All {
		filter.CompanyID = scope.CompanyID
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// actor resolves the caller's company link when the policy needs it.
func (s *UserService) actor(ctx context.Context, caller domain.Identity) (policy.Actor, error) {
	actor := policy.Actor{ID: caller.ID, Role: caller.Role}
	if !policy.NeedsCompany(caller.Role) {
		return actor, nil
	}
	record, err := s.users.GetByID(ctx, caller.ID)
	if err != nil {
		return policy.Actor{}, err
	}
	actor.CompanyID = record.CompanyID
	return actor, nil
}

func (s *UserService) publish(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, event)
}
