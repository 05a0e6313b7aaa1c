package middleware

import (
	"strings"

	"furnitureshop/internal/apperr"
	"furnitureshop/pkg/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	ValidateToken(tokenString string) (jwt.MapClaims, error)
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   string
	Username string
}

// AuthRequired is a Fiber middleware that rejects requests without a valid
// bearer token and stores the caller's Identity for later handlers.
func AuthRequired(verifier TokenVerifier, log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := verifier.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug("JWT validation failed", "path", c.Path(), "error", err)
			return unauthorized(c, "Invalid or expired token")
		}

		userID, _ := claims["user_id"].(string)
		username, _ := claims["username"].(string)
		c.Locals(identityKey, Identity{UserID: userID, Username: username})
		return c.Next()
	}
}

// IdentityFrom returns the caller stored by AuthRequired.
func IdentityFrom(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"kind":    apperr.KindUnauthorized,
		"message": message,
	})
}
