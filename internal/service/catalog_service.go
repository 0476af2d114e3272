package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"branchstock/internal/cache"
	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/repository"
	"branchstock/pkg/imagestore"
	"branchstock/pkg/validator"
)

type CreateLocationRequest struct {
	Name      string     `json:"name" validate:"required"`
	City      string     `json:"city" validate:"required"`
	Address   string     `json:"address"`
	ManagerID *uuid.UUID `json:"manager_id"`
}

type UpdateLocationRequest struct {
	Name      string     `json:"name" validate:"required"`
	City      string     `json:"city" validate:"required"`
	Address   string     `json:"address"`
	ManagerID *uuid.UUID `json:"manager_id"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// OpeningStock seeds one branch ledger row at item creation.
type OpeningStock struct {
	LocationID uuid.UUID `json:"location_id" validate:"uuid_required"`
	Quantity   int       `json:"quantity" validate:"gte=0"`
	AlertLimit int       `json:"alert_limit" validate:"gte=0"`
}

type CreateItemRequest struct {
	SKU           string              `json:"sku" validate:"required"`
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	UnitOfMeasure model.UnitOfMeasure `json:"unit_of_measure" validate:"required,oneof=piece carton meter liter kilogram box other"`
	CostPrice     int64               `json:"cost_price" validate:"gte=0"`
	CategoryID    uuid.UUID           `json:"category_id" validate:"uuid_required"`
	OpeningStocks []OpeningStock      `json:"opening_stocks" validate:"dive"`
}

// BranchStock is one authoritative per-branch row in a bulk item update.
type BranchStock struct {
	LocationID uuid.UUID `json:"location_id" validate:"uuid_required"`
	Quantity   int       `json:"quantity" validate:"gte=0"`
	AlertLimit int       `json:"alert_limit" validate:"gte=0"`
}

type UpdateItemRequest struct {
	SKU           string              `json:"sku" validate:"required"`
	Name          string              `json:"name" validate:"required"`
	Description   string              `json:"description"`
	UnitOfMeasure model.UnitOfMeasure `json:"unit_of_measure" validate:"required,oneof=piece carton meter liter kilogram box other"`
	CostPrice     int64               `json:"cost_price" validate:"gte=0"`
	CategoryID    uuid.UUID           `json:"category_id" validate:"uuid_required"`
	IsActive      *bool               `json:"is_active"`
	// AlertLimit, when positive, propagates to every ledger row of the item.
	AlertLimit int `json:"alert_limit" validate:"gte=0"`
	// BranchStocks, when present, state the authoritative quantity per branch;
	// each delta is movement-logged.
	BranchStocks []BranchStock `json:"branch_stocks" validate:"dive"`
}

// ItemDetails is the single-item view with its per-branch breakdown.
type ItemDetails struct {
	Item          *model.Item             `json:"item"`
	TotalQuantity int                     `json:"total_quantity"`
	BranchStocks  []model.InventoryRecord `json:"branch_stocks"`
}

// CatalogService manages the registries behind the ledger: branches,
// categories and item definitions.
type CatalogService interface {
	CreateLocation(actor *model.User, req *CreateLocationRequest) (*model.Location, error)
	UpdateLocation(actor *model.User, id uuid.UUID, req *UpdateLocationRequest) (*model.Location, error)
	DeleteLocation(actor *model.User, id uuid.UUID) error
	ListLocations(actor *model.User) ([]model.Location, error)
	GetLocation(actor *model.User, id uuid.UUID) (*model.Location, error)

	CreateCategory(actor *model.User, req *CreateCategoryRequest) (*model.Category, error)
	ListCategories() ([]model.Category, error)
	DeleteCategory(actor *model.User, id uuid.UUID) error

	CreateItem(actor *model.User, req *CreateItemRequest) (*model.Item, error)
	UpdateItem(actor *model.User, id uuid.UUID, req *UpdateItemRequest) (*model.Item, error)
	AttachItemImage(actor *model.User, id uuid.UUID, imageName string, imageData []byte) (*model.Item, error)
	DeleteItem(actor *model.User, id uuid.UUID) error
	ListItems() ([]model.Item, error)
	GetItem(id uuid.UUID) (*model.Item, error)
	GetItemDetails(id uuid.UUID) (*ItemDetails, error)
}

type catalogService struct {
	locations  repository.LocationRepository
	categories repository.CategoryRepository
	items      repository.ItemRepository
	employees  repository.EmployeeRepository
	ledger     repository.LedgerRepository
	engine     *policy.Engine
	images     imagestore.Store
	cache      *cache.ReportCache
	log        *zap.Logger
}

func NewCatalogService(
	locations repository.LocationRepository,
	categories repository.CategoryRepository,
	items repository.ItemRepository,
	employees repository.EmployeeRepository,
	ledger repository.LedgerRepository,
	engine *policy.Engine,
	images imagestore.Store,
	reportCache *cache.ReportCache,
	log *zap.Logger,
) CatalogService {
	return &catalogService{
		locations:  locations,
		categories: categories,
		items:      items,
		employees:  employees,
		ledger:     ledger,
		engine:     engine,
		images:     images,
		cache:      reportCache,
		log:        log,
	}
}

func (s *catalogService) CreateLocation(actor *model.User, req *CreateLocationRequest) (*model.Location, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	if _, err := s.locations.FindByName(req.Name); err == nil {
		return nil, badRequest("a location with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if req.ManagerID != nil {
		if _, err := s.employees.FindByID(*req.ManagerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, badRequest("manager employee does not exist")
			}
			return nil, err
		}
	}

	location := &model.Location{
		Name:      req.Name,
		City:      req.City,
		Address:   req.Address,
		ManagerID: req.ManagerID,
	}
	location.CreatedBy = actor.ID.String()
	if err := s.locations.Create(location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *catalogService) UpdateLocation(actor *model.User, id uuid.UUID, req *UpdateLocationRequest) (*model.Location, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	location, err := s.locations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if existing, err := s.locations.FindByName(req.Name); err == nil && existing.ID != id {
		return nil, badRequest("a location with this name already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if req.ManagerID != nil {
		if _, err := s.employees.FindByID(*req.ManagerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, badRequest("manager employee does not exist")
			}
			return nil, err
		}
	}

	location.Name = req.Name
	location.City = req.City
	location.Address = req.Address
	location.ManagerID = req.ManagerID
	location.UpdatedBy = actor.ID.String()
	if err := s.locations.Update(location); err != nil {
		return nil, err
	}
	return location, nil
}

func (s *catalogService) DeleteLocation(actor *model.User, id uuid.UUID) error {
	if _, err := s.locations.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	hasStock, err := s.ledger.HasStockAtLocation(id)
	if err != nil {
		return err
	}
	if hasStock {
		return badRequest("location still holds stock and cannot be deleted")
	}
	return s.locations.Delete(id)
}

func (s *catalogService) ListLocations(actor *model.User) ([]model.Location, error) {
	scope, err := s.engine.ResolveScope(actor, nil)
	if err != nil {
		return nil, err
	}
	if scope.All {
		return s.locations.FindAll()
	}
	if len(scope.LocationIDs) == 0 {
		return []model.Location{}, nil
	}
	return s.locations.FindByIDs(scope.LocationIDs)
}

func (s *catalogService) GetLocation(actor *model.User, id uuid.UUID) (*model.Location, error) {
	if err := s.engine.AllowLocation(actor, id); err != nil {
		return nil, err
	}
	location, err := s.locations.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return location, nil
}

func (s *catalogService) CreateCategory(actor *model.User, req *CreateCategoryRequest) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	if _, err := s.categories.FindByName(req.Name); err == nil {
		return nil, badRequest("a category with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category := &model.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	category.CreatedBy = actor.ID.String()
	if err := s.categories.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categories.FindActive()
}

func (s *catalogService) DeleteCategory(actor *model.User, id uuid.UUID) error {
	if _, err := s.categories.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	count, err := s.items.CountByCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return badRequest("category still has items and cannot be deleted")
	}
	return s.categories.Delete(id)
}

func (s *catalogService) CreateItem(actor *model.User, req *CreateItemRequest) (*model.Item, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}

	sku := model.NormalizeSKU(req.SKU)
	if _, err := s.items.FindBySKUOrName(sku, req.Name); err == nil {
		return nil, badRequest("an item with this SKU or name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.categories.FindByID(req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, badRequest("category does not exist")
		}
		return nil, err
	}
	for _, os := range req.OpeningStocks {
		if _, err := s.locations.FindByID(os.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, badRequest("opening stock references an unknown location")
			}
			return nil, err
		}
	}

	item := &model.Item{
		SKU:           sku,
		Name:          req.Name,
		Description:   req.Description,
		UnitOfMeasure: req.UnitOfMeasure,
		CostPrice:     req.CostPrice,
		CategoryID:    req.CategoryID,
		IsActive:      true,
	}
	item.CreatedBy = actor.ID.String()
	if err := s.items.Create(item); err != nil {
		return nil, err
	}

	for _, os := range req.OpeningStocks {
		if err := s.seedOpeningStock(item.ID, os, actor.ID); err != nil {
			return nil, err
		}
	}
	if len(req.OpeningStocks) > 0 {
		s.cache.Invalidate(context.Background())
	}
	return item, nil
}

// seedOpeningStock creates the branch ledger row for a new item. A zero
// quantity still creates the row (so the threshold takes effect) without
// logging a movement.
func (s *catalogService) seedOpeningStock(itemID uuid.UUID, os OpeningStock, actorID uuid.UUID) error {
	if os.Quantity > 0 {
		mv := &model.StockMovement{
			ItemID:     itemID,
			LocationID: os.LocationID,
			Type:       model.MovementIn,
			Quantity:   os.Quantity,
			Reference:  "opening stock",
			Reason:     model.ReasonManualCorrection,
			UserID:     actorID,
		}
		mv.CreatedBy = actorID.String()
		if _, err := s.ledger.ApplyMovement(mv, os.AlertLimit); err != nil {
			return err
		}
	} else {
		if _, _, err := s.ledger.AdjustTo(itemID, os.LocationID, 0, "opening stock", actorID); err != nil {
			return err
		}
	}
	if os.AlertLimit > 0 {
		return s.ledger.SetThreshold(itemID, os.LocationID, os.AlertLimit)
	}
	return nil
}

// attachImage stores the uploaded image and saves the resulting URL on the
// item. Fire-and-forget: a storage failure is logged and the item stands.
func (s *catalogService) attachImage(item *model.Item, imageName string, imageData []byte, actorID uuid.UUID) {
	if len(imageData) == 0 || s.images == nil {
		return
	}
	url, key, err := s.images.Save(imageName, imageData)
	if err != nil {
		s.log.Warn("item image upload failed",
			zap.String("item", item.SKU), zap.Error(err))
		return
	}
	if item.ImageKey != "" {
		if err := s.images.Delete(item.ImageKey); err != nil {
			s.log.Warn("stale item image cleanup failed", zap.Error(err))
		}
	}
	item.ImageURL = url
	item.ImageKey = key
	item.UpdatedBy = actorID.String()
	if err := s.items.Update(item); err != nil {
		s.log.Warn("item image link failed",
			zap.String("item", item.SKU), zap.Error(err))
	}
}

func (s *catalogService) UpdateItem(actor *model.User, id uuid.UUID, req *UpdateItemRequest) (*model.Item, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	item, err := s.items.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sku := model.NormalizeSKU(req.SKU)
	if existing, err := s.items.FindBySKUOrName(sku, req.Name); err == nil && existing.ID != id {
		return nil, badRequest("an item with this SKU or name already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.categories.FindByID(req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, badRequest("category does not exist")
		}
		return nil, err
	}
	for _, bs := range req.BranchStocks {
		if err := s.engine.AllowLocation(actor, bs.LocationID); err != nil {
			return nil, err
		}
		if _, err := s.locations.FindByID(bs.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, badRequest("branch stock references an unknown location")
			}
			return nil, err
		}
	}

	item.SKU = sku
	item.Name = req.Name
	item.Description = req.Description
	item.UnitOfMeasure = req.UnitOfMeasure
	item.CostPrice = req.CostPrice
	item.CategoryID = req.CategoryID
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	item.UpdatedBy = actor.ID.String()
	if err := s.items.Update(item); err != nil {
		return nil, err
	}

	if req.AlertLimit > 0 {
		if err := s.ledger.SetThresholdForItem(id, req.AlertLimit); err != nil {
			return nil, err
		}
	}

	changed := false
	for _, bs := range req.BranchStocks {
		delta, _, err := s.ledger.AdjustTo(id, bs.LocationID, bs.Quantity, "bulk item update", actor.ID)
		if err != nil {
			return nil, err
		}
		if delta != 0 {
			changed = true
		}
		if bs.AlertLimit > 0 {
			if err := s.ledger.SetThreshold(id, bs.LocationID, bs.AlertLimit); err != nil {
				return nil, err
			}
		}
	}
	if changed {
		s.cache.Invalidate(context.Background())
	}
	return item, nil
}

// AttachItemImage stores the upload and links it to the item. Storage
// trouble is logged, not surfaced: the item stands either way.
func (s *catalogService) AttachItemImage(actor *model.User, id uuid.UUID, imageName string, imageData []byte) (*model.Item, error) {
	item, err := s.items.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(imageData) == 0 {
		return nil, badRequest("empty image upload")
	}
	s.attachImage(item, imageName, imageData, actor.ID)
	return item, nil
}

func (s *catalogService) DeleteItem(actor *model.User, id uuid.UUID) error {
	item, err := s.items.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	hasStock, err := s.ledger.HasStockForItem(id)
	if err != nil {
		return err
	}
	if hasStock {
		return badRequest("item still has stock and cannot be deleted")
	}
	if err := s.ledger.PurgeZeroForItem(id); err != nil {
		return err
	}
	if err := s.items.Delete(id); err != nil {
		return err
	}
	if item.ImageKey != "" && s.images != nil {
		if err := s.images.Delete(item.ImageKey); err != nil {
			s.log.Warn("item image cleanup failed", zap.Error(err))
		}
	}
	return nil
}

func (s *catalogService) ListItems() ([]model.Item, error) {
	return s.items.FindActive()
}

func (s *catalogService) GetItem(id uuid.UUID) (*model.Item, error) {
	item, err := s.items.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *catalogService) GetItemDetails(id uuid.UUID) (*ItemDetails, error) {
	item, err := s.items.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	records, err := s.ledger.ListByItem(id)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, rec := range records {
		total += rec.Quantity
	}
	return &ItemDetails{Item: item, TotalQuantity: total, BranchStocks: records}, nil
}
