package dto

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eventdesk/event-ticketing/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name      string      `json:"name" validate:"required,min=3,max=50"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=8"`
	Role      domain.Role `json:"role" validate:"required,oneof=SUPER_ADMIN EVENT_OWNER BASE_USER"`
	Company   string      `json:"company"`
	CompanyID string      `json:"companyId" validate:"required_if=Role BASE_USER"`
}

// RegisterRequestRules checks the company name, which only event owners must provide.
func RegisterRequestRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(RegisterRequest)
	if req.Role != domain.RoleEventOwner {
		return
	}
	switch n := len([]rune(req.Company)); {
	case n == 0:
		sl.ReportError(req.Company, "company", "Company", "required", "")
	case n < 3:
		sl.ReportError(req.Company, "company", "Company", "min", "3")
	case n > 50:
		sl.ReportError(req.Company, "company", "Company", "max", "50")
	}
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RecoverPasswordRequest starts the emailed reset flow.
type RecoverPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdatePasswordRequest completes a reset with the emailed code.
type UpdatePasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// ChangePasswordRequest changes the caller's password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// MessageResponse is the body of endpoints that only confirm an action.
type MessageResponse struct {
	Message string `json:"message"`
}

// StatusMessageResponse carries an explicit status next to the message.
type StatusMessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UserSummary is the user block returned on login.
type UserSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	Company   string      `json:"company,omitempty"`
	CompanyID string      `json:"companyId,omitempty"`
}

// LoginResponse standard response for login.
type LoginResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	User         UserSummary `json:"user"`
}

// RefreshResponse carries a renewed access token.
type RefreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserView is the listing projection of a user; secrets are never included.
type UserView struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Company   string            `json:"company,omitempty"`
	CompanyID string            `json:"companyId,omitempty"`
	Status    domain.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// EventOwnersResponse lists event owners.
type EventOwnersResponse struct {
	EventOwners []UserView `json:"eventOwners"`
}

// BaseUsersResponse lists base users.
type BaseUsersResponse struct {
	BaseUsers []UserView `json:"baseUsers"`
}

// NewUserSummary builds the login projection.
func NewUserSummary(u *domain.User) UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Role: u.Role, Company: u.Company, CompanyID: u.CompanyID}
}

// NewUserViews builds listing projections.
func NewUserViews(users []domain.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			Company:   u.Company,
			CompanyID: u.CompanyID,
			Status:    u.Status,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		})
	}
	return views
}
