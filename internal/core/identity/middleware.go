package identity

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	localsIdentity = "identity"
	localsToken    = "bearer_token"
)

// Verifier verifies a raw bearer token.
type Verifier interface {
	Verify(raw string) (*Identity, error)
}

// Middleware rejects requests without a valid bearer token and stores the
// caller for handlers (see FromCtx).
//
// Missing or expired tokens answer 401, undecodable or forged tokens 403.
func Middleware(v Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))

		id, err := v.Verify(raw)
		if err != nil {
			status := fiber.StatusUnauthorized
			msg := "Access token required"
			switch {
			case errors.Is(err, ErrTokenExpired):
				msg = "Token expired"
			case errors.Is(err, ErrTokenMissing):
			default:
				status = fiber.StatusForbidden
				msg = "Invalid token"
			}
			return c.Status(status).JSON(fiber.Map{"error": msg})
		}

		c.Locals(localsIdentity, id)
		c.Locals(localsToken, raw)
		return c.Next()
	}
}

// FromCtx returns the verified caller attached by Middleware.
func FromCtx(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(localsIdentity).(*Identity)
	return id, ok && id != nil
}

// TokenFromCtx returns the raw bearer token attached by Middleware.
func TokenFromCtx(c *fiber.Ctx) string {
	token, _ := c.Locals(localsToken).(string)
	return token
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>" header.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
