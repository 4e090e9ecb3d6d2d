package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eventdesk/event-ticketing/internal/domain"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

// RequireRole ensures the principal has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewForbidden(MsgAccessDenied)
		}
		if _, exists := allowedSet[principal.Role]; !exists {
			return apperrors.NewForbidden(MsgAccessDenied)
		}
		return c.Next()
	}
}
