package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/speakci/internal/services"
	"github.com/example/speakci/internal/utils"
)

const adminSessionKey = "adminSession"

// AdminAuth validates the bearer JWT and stores the admin session in context.
func AdminAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals(adminSessionKey, services.AdminSession{
			Subject:   claims.Subject,
			IssuedAt:  claims.IssuedAt,
			ExpiresAt: claims.ExpiresAt,
		})
		return c.Next()
	}
}

// GetAdminSession extracts the admin session from context. A request that did
// not pass AdminAuth gets the zero session, which every admin operation rejects.
func GetAdminSession(c *fiber.Ctx) services.AdminSession {
	if sess, ok := c.Locals(adminSessionKey).(services.AdminSession); ok {
		return sess
	}
	return services.AdminSession{}
}
