package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/service"
)

func ok(c *fiber.Ctx, data fiber.Map) error {
	payload := fiber.Map{"success": true}
	for k, v := range data {
		payload[k] = v
	}
	return c.JSON(payload)
}

func created(c *fiber.Ctx, data fiber.Map) error {
	payload := fiber.Map{"success": true}
	for k, v := range data {
		payload[k] = v
	}
	return c.Status(fiber.StatusCreated).JSON(payload)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

// respondError maps service errors onto the HTTP taxonomy. Unrecognized
// errors are logged and answered with a generic 500 so internals never leak.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return fail(c, fiber.StatusBadRequest, validationErr.Msg)
	}
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		return fail(c, fiber.StatusBadRequest, stockErr.Error())
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, policy.ErrForbidden), errors.Is(err, policy.ErrWrongBranch):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fail(c, fiber.StatusNotFound, "resource not found")
	case errors.Is(err, model.ErrTransferNotInTransit):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, model.ErrReceivedExceedsShipped), errors.Is(err, model.ErrReceivedNotPositive):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrCheckInWindowClosed):
		return fail(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrAlreadyCheckedIn):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrNoOpenCheckIn):
		return fail(c, fiber.StatusNotFound, err.Error())
	}

	log.Error("request failed",
		zap.String("path", c.Path()), zap.String("method", c.Method()), zap.Error(err))
	return fail(c, fiber.StatusInternalServerError, "internal server error")
}

// currentUser pulls the authenticated caller set by the auth middleware.
func currentUser(c *fiber.Ctx) *model.User {
	user, _ := c.Locals("user").(*model.User)
	return user
}

// parseID reads a uuid path parameter.
func parseID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &service.ValidationError{Msg: "invalid " + name + " parameter"}
	}
	return id, nil
}

// locationFilter reads the optional ?location_id= query filter.
func locationFilter(c *fiber.Ctx) (*uuid.UUID, error) {
	raw := c.Query("location_id")
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, &service.ValidationError{Msg: "invalid location_id filter"}
	}
	return &id, nil
}
