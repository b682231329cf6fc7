package auth

import (
	"strings"

	"github.com/Abraxas-365/talentmatch/pkg/kernel"
	"github.com/gofiber/fiber/v2"
)

const authContextKey = "auth_context"

// AuthContext is attached to the request once a token has been validated
type AuthContext struct {
	UserID kernel.UserID
	Scopes []string
}

// HasScope reports whether the caller was granted scope
func (a *AuthContext) HasScope(scope string) bool {
	return HasScope(a.Scopes, scope)
}

// UnifiedAuthMiddleware authenticates bearer tokens and enforces scopes
type UnifiedAuthMiddleware struct {
	tokens TokenService
}

func NewUnifiedAuthMiddleware(tokens TokenService) *UnifiedAuthMiddleware {
	return &UnifiedAuthMiddleware{tokens: tokens}
}

// Authenticate validates the Authorization header and stores the AuthContext
func (m *UnifiedAuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return ErrMissingToken()
		}

		// Extract token (format: "Bearer <token>")
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return ErrInvalidToken().WithDetail("reason", "invalid authorization format")
		}

		claims, err := m.tokens.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.Locals(authContextKey, &AuthContext{
			UserID: claims.UserID,
			Scopes: claims.Scopes,
		})
		return c.Next()
	}
}

// RequireScope rejects requests whose token does not grant scope.
// Must run after Authenticate.
func (m *UnifiedAuthMiddleware) RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authCtx, ok := GetAuthContext(c)
		if !ok {
			return ErrMissingToken()
		}
		if !authCtx.HasScope(scope) {
			return ErrInsufficientScope().WithDetail("required_scope", scope)
		}
		return c.Next()
	}
}

// GetAuthContext extracts the AuthContext set by Authenticate
func GetAuthContext(c *fiber.Ctx) (*AuthContext, bool) {
	authCtx, ok := c.Locals(authContextKey).(*AuthContext)
	return authCtx, ok && authCtx != nil
}
