package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/domain"
	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

const identityKey = "auth_identity"

// MsgAuthInvalid is the single message returned for every rejected request.
const MsgAuthInvalid = "Authentication invalid"

// AuthMiddleware validates bearer tokens and attaches the caller identity.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate resolves an Authorization header value into an identity.
func (m *AuthMiddleware) Authenticate(authHeader string) (domain.Identity, error) {
	if authHeader == "" {
		return domain.Identity{}, apperrors.NewUnauthorized(MsgAuthInvalid)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return domain.Identity{}, apperrors.NewUnauthorized(MsgAuthInvalid)
	}

	identity, err := m.tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Identity{}, apperrors.NewUnauthorized(MsgAuthInvalid)
	}
	return identity, nil
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.Authenticate(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
