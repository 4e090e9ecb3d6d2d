package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/eventdesk/event-ticketing/internal/clock"
	"github.com/eventdesk/event-ticketing/internal/domain"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

var (
	// ErrMissingSecret is returned when the token manager has no signing secret.
	ErrMissingSecret = errors.New("jwt secret is not configured")
	// ErrInvalidToken covers malformed, forged, expired and wrong-kind tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenManager handles issuing and validating JWT tokens.
type TokenManager struct {
	secret     []byte
	ttl        time.Duration
	refreshTTL time.Duration
	clock      clock.Clock
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl, refreshTTL time.Duration, clk clock.Clock) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, refreshTTL: refreshTTL, clock: clk}, nil
}

// Claims describes JWT payload.
type Claims struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
	Kind string      `json:"kind"`
	jwt.RegisteredClaims
}

// Identity returns the caller encoded in the claims.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{ID: c.ID, Role: c.Role}
}

// Issue signs an access token for the identity.
func (tm *TokenManager) Issue(identity domain.Identity) (string, time.Time, error) {
	return tm.sign(identity, kindAccess, tm.ttl)
}

// IssueRefresh signs a long-lived refresh token for the identity.
func (tm *TokenManager) IssueRefresh(identity domain.Identity) (string, time.Time, error) {
	return tm.sign(identity, kindRefresh, tm.refreshTTL)
}

// Verify validates an access token and returns its claims.
func (tm *TokenManager) Verify(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, kindAccess)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (tm *TokenManager) VerifyRefresh(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, kindRefresh)
}

func (tm *TokenManager) sign(identity domain.Identity, kind string, ttl time.Duration) (string, time.Time, error) {
	now := tm.clock.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		ID:   identity.ID,
		Role: identity.Role,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (tm *TokenManager) parse(tokenStr, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(tm.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Kind != kind || claims.ID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
