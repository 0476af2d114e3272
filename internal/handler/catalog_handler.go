package handler

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"branchstock/internal/service"
)

type CatalogHandler struct {
	catalog service.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// CreateLocation registers a branch (admin only).
// POST /api/v1/locations
func (h *CatalogHandler) CreateLocation(c *fiber.Ctx) error {
	var req service.CreateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	location, err := h.catalog.CreateLocation(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, fiber.Map{"location": location})
}

// ListLocations returns the branches visible to the caller.
// GET /api/v1/locations
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	locations, err := h.catalog.ListLocations(currentUser(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"locations": locations})
}

// GetLocation returns one branch.
// GET /api/v1/locations/:id
func (h *CatalogHandler) GetLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	location, err := h.catalog.GetLocation(currentUser(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"location": location})
}

// UpdateLocation edits a branch (admin only).
// PUT /api/v1/locations/:id
func (h *CatalogHandler) UpdateLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req service.UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	location, err := h.catalog.UpdateLocation(currentUser(c), id, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"location": location})
}

// DeleteLocation removes an empty branch (admin only).
// DELETE /api/v1/locations/:id
func (h *CatalogHandler) DeleteLocation(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.catalog.DeleteLocation(currentUser(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"message": "location deleted"})
}

// CreateCategory adds an item category (admin only).
// POST /api/v1/categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CreateCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	category, err := h.catalog.CreateCategory(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, fiber.Map{"category": category})
}

// ListCategories returns the active categories.
// GET /api/v1/categories
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"categories": categories})
}

// DeleteCategory removes an unused category (admin only).
// DELETE /api/v1/categories/:id
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.catalog.DeleteCategory(currentUser(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"message": "category deleted"})
}

// CreateItem defines an item, optionally seeding per-branch opening stock.
// POST /api/v1/items
func (h *CatalogHandler) CreateItem(c *fiber.Ctx) error {
	var req service.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	item, err := h.catalog.CreateItem(currentUser(c), &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return created(c, fiber.Map{"item": item})
}

// ListItems returns all active items.
// GET /api/v1/items
func (h *CatalogHandler) ListItems(c *fiber.Ctx) error {
	items, err := h.catalog.ListItems()
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"items": items})
}

// GetItem returns one item definition.
// GET /api/v1/items/:id
func (h *CatalogHandler) GetItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	item, err := h.catalog.GetItem(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"item": item})
}

// GetItemDetails returns the item with its per-branch quantities.
// GET /api/v1/items/:id/details
func (h *CatalogHandler) GetItemDetails(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	details, err := h.catalog.GetItemDetails(id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{
		"item":           details.Item,
		"total_quantity": details.TotalQuantity,
		"branch_stocks":  details.BranchStocks,
	})
}

// UpdateItem edits catalog fields and, when branch stocks are supplied,
// reconciles per-branch quantities with movement logging.
// PUT /api/v1/items/:id
func (h *CatalogHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req service.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid JSON body")
	}
	item, err := h.catalog.UpdateItem(currentUser(c), id, &req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"item": item})
}

// UploadItemImage attaches an image to an item via multipart form.
// POST /api/v1/items/:id/image
func (h *CatalogHandler) UploadItemImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "image file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "cannot read image upload")
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "cannot read image upload")
	}

	item, err := h.catalog.AttachItemImage(currentUser(c), id, fileHeader.Filename, data)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"item": item})
}

// DeleteItem removes an item that holds no stock anywhere.
// DELETE /api/v1/items/:id
func (h *CatalogHandler) DeleteItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if err := h.catalog.DeleteItem(currentUser(c), id); err != nil {
		return respondError(c, h.log, err)
	}
	return ok(c, fiber.Map{"message": "item deleted"})
}
