package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type AttendanceHandler struct {
	attendance service.AttendanceService
	log        *zap.Logger
}

func NewAttendanceHandler(attendance service.AttendanceService, log *zap.Logger) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, log: log}
}

// CheckIn opens today's attendance record for the caller.
// POST /api/v1/attendance/check-in
func (h *AttendanceHandler) CheckIn(c *fiber.Ctx) error {
	record, err := h.attendance.CheckIn(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"attendance": record})
}

// CheckOut closes today's open record and reports the worked minutes.
// POST /api/v1/attendance/check-out
func (h *AttendanceHandler) CheckOut(c *fiber.Ctx) error {
	record, err := h.attendance.CheckOut(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{
		"attendance":            record,
		"work_duration_minutes": record.WorkMinutes,
	})
}

// Today reports whether the caller currently has an open check-in.
// GET /api/v1/attendance/today
func (h *AttendanceHandler) Today(c *fiber.Ctx) error {
	status, err := h.attendance.Today(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{
		"checked_in": status.CheckedIn,
		"attendance": status.Attendance,
	})
}

// History lists the caller's recent attendance records.
// GET /api/v1/attendance/history
func (h *AttendanceHandler) History(c *fiber.Ctx) error {
	records, err := h.attendance.History(currentUser(c), c.QueryInt("limit", 31))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"attendance": records})
}
