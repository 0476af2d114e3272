package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type ReportHandler struct {
	reports service.ReportService
	log     *zap.Logger
}

func NewReportHandler(reports service.ReportService, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

// Inventory lists the scoped ledger with thresholds and low flags.
// GET /api/v1/reports/inventory
func (h *ReportHandler) Inventory(c *fiber.Ctx) error {
	filter, err := locationFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	rows, err := h.reports.InventoryReport(currentUser(c), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"report": rows})
}

// MonthlyMovement groups the movement log by year, month, item and location.
// GET /api/v1/reports/monthly-movement
func (h *ReportHandler) MonthlyMovement(c *fiber.Ctx) error {
	rows, err := h.reports.MonthlyMovement(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"report": rows})
}

// MonthlyMovementByLocation filters the monthly report to one branch.
// GET /api/v1/reports/monthly-movement/:locationId
func (h *ReportHandler) MonthlyMovementByLocation(c *fiber.Ctx) error {
	locationID, err := parseID(c, "locationId")
	if err != nil {
		return respondError(c, h.log, err)
	}
	rows, err := h.reports.MonthlyMovementByLocation(currentUser(c), locationID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"report": rows})
}

// OverallTotals sums each item's quantity across every branch.
// GET /api/v1/reports/overall-totals
func (h *ReportHandler) OverallTotals(c *fiber.Ctx) error {
	rows, err := h.reports.OverallTotals(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"report": rows})
}

// Dashboard serves the cached stats plus recent movements.
// GET /api/v1/reports/dashboard
func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.reports.Dashboard(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{
		"stats":            dashboard.Stats,
		"recent_movements": dashboard.RecentMovements,
	})
}
