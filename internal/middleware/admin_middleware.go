package middleware

import (
	"github.com/gofiber/fiber/v2"

	"branchstock/internal/model"
)

// RequireAdmin gates routes reserved for administrators.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(UserKey).(*model.User)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": "Authentication required"})
		}
		if !user.IsAdmin() {
			return c.Status(403).JSON(fiber.Map{"success": false, "message": "Access denied: admin only"})
		}
		return c.Next()
	}
}
