package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/eventdesk/event-ticketing/internal/domain"
	apperrors "github.com/eventdesk/event-ticketing/pkg/util"
)

const principalKey = "auth_principal"

const (
	MsgNoToken      = "Access denied. No token provided."
	MsgInvalidToken = "Invalid or expired token."
	MsgAccessDenied = "Access denied."
)

// Principal represents the authenticated caller.
type Principal struct {
	ID   string
	Role domain.Role
}

// Middleware validates bearer tokens and stores the principal in the request.
type Middleware struct {
	tokens *TokenManager
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return apperrors.NewUnauthorized(MsgNoToken)
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return apperrors.NewForbidden(MsgInvalidToken)
	}

	c.Locals(principalKey, &Principal{ID: claims.ID, Role: claims.Role})
	return c.Next()
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	principal, ok := c.Locals(principalKey).(*Principal)
	return principal, ok && principal != nil
}

// Identity converts the principal into the domain identity.
func (p *Principal) Identity() domain.Identity {
	return domain.Identity{ID: p.ID, Role: p.Role}
}
