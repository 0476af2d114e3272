package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type AlertHandler struct {
	alerts   service.AlertService
	notifier service.Notifier
	log      *zap.Logger
}

func NewAlertHandler(alerts service.AlertService, notifier service.Notifier, log *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, notifier: notifier, log: log}
}

// LowStock lists ledger rows at or below their effective threshold within
// the caller's scope, lowest quantity first.
// GET /api/v1/alerts/low-stock
func (h *AlertHandler) LowStock(c *fiber.Ctx) error {
	filter, err := locationFilter(c)
	if err != nil {
		return respondError(c, h.log, err)
	}
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)

	list, err := h.alerts.ListLowStock(currentUser(c), filter, page, limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{
		"alerts": list.Entries,
		"total":  list.Total,
		"page":   list.Page,
		"limit":  list.Limit,
	})
}

// BadgeCount answers the alert-badge total for the caller's scope.
// GET /api/v1/alerts/low-stock/count
func (h *AlertHandler) BadgeCount(c *fiber.Ctx) error {
	count, err := h.alerts.BadgeCount(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"count": count})
}

// MyNotifications lists the caller's notifications with read flags.
// GET /api/v1/notifications
func (h *AlertHandler) MyNotifications(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	notifications, err := h.notifier.ListForUser(currentUser(c).ID, limit)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"notifications": notifications})
}

// MarkRead adds the caller to a notification's read set.
// POST /api/v1/notifications/:id/read
func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.notifier.MarkRead(id, currentUser(c).ID); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"message": "notification marked read"})
}

// UnreadCount answers the caller's unread notification total.
// GET /api/v1/notifications/unread-count
func (h *AlertHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.notifier.UnreadCount(currentUser(c).ID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"count": count})
}
