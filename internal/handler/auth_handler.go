package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
	log  *zap.Logger
}

func NewAuthHandler(auth service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	resp, err := h.auth.Login(&req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"token": resp.Token, "user": resp.User})
}

// Validate confirms the presented token; the auth middleware has already
// done the work by the time this handler runs.
// GET /api/v1/auth/validate
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	user := currentUser(c)
	return ok(c, fiber.Map{"user": user.ToResponse()})
}

// Register creates a user account (admin only).
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	user, err := h.auth.Register(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, fiber.Map{"user": user.ToResponse()})
}

// ChangePassword updates the caller's own password.
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req service.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	if err := h.auth.ChangePassword(currentUser(c), &req); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"message": "password updated"})
}

// ListUsers returns every account (admin only).
// GET /api/v1/users
func (h *AuthHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"users": users})
}
