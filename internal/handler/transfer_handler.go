package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type TransferHandler struct {
	transfers service.TransferService
	log       *zap.Logger
}

func NewTransferHandler(transfers service.TransferService, log *zap.Logger) *TransferHandler {
	return &TransferHandler{transfers: transfers, log: log}
}

// Initiate ships stock from the caller's branch; the source ledger is
// decremented immediately and the transfer rides IN_TRANSIT.
// POST /api/v1/transfers
func (h *TransferHandler) Initiate(c *fiber.Ctx) error {
	var req service.InitiateTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	t, err := h.transfers.Initiate(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, fiber.Map{"transfer": t})
}

// Confirm records the destination-side receipt. A transfer that already left
// IN_TRANSIT answers 409.
// POST /api/v1/transfers/:id/confirm
func (h *TransferHandler) Confirm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req service.ConfirmTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	t, err := h.transfers.Confirm(currentUser(c), id, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"transfer": t})
}

// Get returns one transfer visible to the caller.
// GET /api/v1/transfers/:id
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	t, err := h.transfers.Get(currentUser(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"transfer": t})
}

// List returns transfers touching the caller's branches.
// GET /api/v1/transfers
func (h *TransferHandler) List(c *fiber.Ctx) error {
	filter, err := locationFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	transfers, err := h.transfers.List(currentUser(c), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"transfers": transfers})
}
