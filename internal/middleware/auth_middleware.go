package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/repository"
	"branchstock/pkg/jwt"
)

// UserKey is the Locals key the authenticated *model.User is stored under.
const UserKey = "user"

// RequireAuth validates the bearer token and loads the caller from the
// database so downstream handlers see current role and branch assignments.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": "Invalid or expired token"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": "Account is inactive"})
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

// RequireCapability evaluates one capability through the policy engine.
func RequireCapability(engine *policy.Engine, capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(UserKey).(*model.User)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"success": false, "message": "Authentication required"})
		}
		if err := engine.Allow(user, capability); err != nil {
			return c.Status(403).JSON(fiber.Map{
				"success": false,
				"message": "Access denied: requires '" + capability + "'",
			})
		}
		return c.Next()
	}
}
