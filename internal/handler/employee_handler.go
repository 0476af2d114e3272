package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type EmployeeHandler struct {
	employees service.EmployeeService
	log       *zap.Logger
}

func NewEmployeeHandler(employees service.EmployeeService, log *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, log: log}
}

// Create provisions a user account plus its HR record (admin only).
// POST /api/v1/employees
func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	var req service.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	employee, err := h.employees.Create(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, fiber.Map{"employee": employee})
}

// Update edits branch, grant and HR fields (admin only).
// PUT /api/v1/employees/:id
func (h *EmployeeHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req service.UpdateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	employee, err := h.employees.Update(currentUser(c), id, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"employee": employee})
}

// List returns all employees (admin only).
// GET /api/v1/employees
func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	employees, err := h.employees.List()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"employees": employees})
}

// Get returns one employee (admin only).
// GET /api/v1/employees/:id
func (h *EmployeeHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	employee, err := h.employees.Get(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"employee": employee})
}

// MyProfile returns the caller's own HR record.
// GET /api/v1/employees/me
func (h *EmployeeHandler) MyProfile(c *fiber.Ctx) error {
	employee, err := h.employees.MyProfile(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"employee": employee})
}
