package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/eventdesk/event-ticketing/internal/api/dto"
	"github.com/eventdesk/event-ticketing/internal/auth"
	"github.com/eventdesk/event-ticketing/internal/domain"
	"github.com/eventdesk/event-ticketing/internal/service"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

const msgInvalidBody = "Invalid request body"

// UsersHandler exposes account endpoints under /api/users.
type UsersHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, userService *service.UserService) *UsersHandler {
	return &UsersHandler{auth: authService, users: userService}
}

// Register handles POST /api/users/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest(msgInvalidBody)
	}
	if _, err := h.auth.Register(c.UserContext(), req); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "User registered successfully"})
}

// Login handles POST /api/users/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest(msgInvalidBody)
	}
	session, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Token:        session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
		User:         dto.NewUserSummary(session.User),
	})
}

// Refresh handles POST /api/users/refresh-token.
func (h *UsersHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest(msgInvalidBody)
	}
	token, exp, err := h.auth.Refresh(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(dto.RefreshResponse{Token: token, ExpiresAt: exp})
}

// Approve handles PATCH /api/users/approve/:userId.
func (h *UsersHandler) Approve(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	if err := h.users.Approve(c.UserContext(), caller, c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User approved successfully"})
}

// Suspend handles PATCH /api/users/suspend/:userId.
func (h *UsersHandler) Suspend(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	if err := h.users.Suspend(c.UserContext(), caller, c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "User suspended successfully"})
}

// EventOwners handles GET /api/users/event-owners.
func (h *UsersHandler) EventOwners(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	owners, err := h.users.ListEventOwners(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(dto.EventOwnersResponse{EventOwners: dto.NewUserViews(owners)})
}

// BaseUsers handles GET /api/users/base-users.
func (h *UsersHandler) BaseUsers(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListBaseUsers(c.UserContext(), caller)
	if err != nil {
		return err
	}
	return c.JSON(dto.BaseUsersResponse{BaseUsers: dto.NewUserViews(users)})
}

// RecoverPassword handles POST /api/users/recover-password.
func (h *UsersHandler) RecoverPassword(c *fiber.Ctx) error {
	var req dto.RecoverPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest(msgInvalidBody)
	}
	if err := h.auth.RecoverPassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password reset email sent."})
}

// UpdatePassword handles POST /api/users/update-password.
func (h *UsersHandler) UpdatePassword(c *fiber.Ctx) error {
	var req dto.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest(msgInvalidBody)
	}
	if err := h.auth.UpdatePassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated successfully."})
}

// ChangePassword handles POST /api/users/change-password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	caller, err := callerIdentity(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest(msgInvalidBody)
	}
	if err := h.auth.ChangePassword(c.UserContext(), caller, req); err != nil {
		return err
	}
	return c.JSON(dto.StatusMessageResponse{Status: "success", Message: "Password changed successfully"})
}

func callerIdentity(c *fiber.Ctx) (domain.Identity, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized(auth.MsgNoToken)
	}
	return principal.Identity(), nil
}
