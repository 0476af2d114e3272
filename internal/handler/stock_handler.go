package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type StockHandler struct {
	stock service.StockService
	log   *zap.Logger
}

func NewStockHandler(stock service.StockService, log *zap.Logger) *StockHandler {
	return &StockHandler{stock: stock, log: log}
}

// StockIn records an inbound movement.
// POST /api/v1/stock/in
func (h *StockHandler) StockIn(c *fiber.Ctx) error {
	var req service.StockInRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	rec, err := h.stock.StockIn(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"inventory": rec})
}

// StockOut records an outbound movement; insufficient stock answers 400 with
// the available quantity and leaves the ledger untouched.
// POST /api/v1/stock/out
func (h *StockHandler) StockOut(c *fiber.Ctx) error {
	var req service.StockOutRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	rec, err := h.stock.StockOut(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"inventory": rec})
}

// Adjust reconciles a branch ledger row against a physical count.
// POST /api/v1/stock/adjust
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req service.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	result, err := h.stock.Adjust(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{
		"difference":   result.Delta,
		"new_quantity": result.NewQuantity,
		"inventory":    result.Record,
	})
}
