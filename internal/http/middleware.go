package http

import (
	"strings"

	"sensei/internal/core"

	"github.com/gofiber/fiber/v2"
)

const localUserID = "userID"

// TokenValidator resolves a bearer token to its user
type TokenValidator func(token string) (userID string, claims map[string]any, err error)

// Authenticate resolves the bearer token into the request's user. A token that fails validation
// is rejected even when authentication is optional.
func Authenticate(validateToken TokenValidator, required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, present := extractBearerToken(c.Get(fiber.HeaderAuthorization))
		if !present {
			if required {
				return unauthorized(c, "missing authorization token")
			}
			return c.Next()
		}

		userID, _, err := validateToken(token)
		if err != nil || userID == "" {
			return unauthorized(c, "invalid or expired token")
		}

		c.Locals(localUserID, userID)
		return c.Next()
	}
}

func AuthRequired(validateToken TokenValidator) fiber.Handler {
	return Authenticate(validateToken, true)
}

func OptionalAuth(validateToken TokenValidator) fiber.Handler {
	return Authenticate(validateToken, false)
}

// currentUser is the authenticated user, empty for anonymous requests
func currentUser(c *fiber.Ctx) string {
	userID, _ := c.Locals(localUserID).(string)
	return userID
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(core.ErrorResponse{
		Error: message,
		Code:  core.ErrUnauthorized,
	})
}

// extractBearerToken accepts the scheme case-insensitively; present is false without a Bearer header
func extractBearerToken(header string) (token string, present bool) {
	const scheme = "bearer "
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return "", false
	}
	return strings.TrimSpace(header[len(scheme):]), true
}
