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
	"branchstock/pkg/validator"
)

type StockInRequest struct {
	ItemID     uuid.UUID            `json:"item_id" validate:"uuid_required"`
	LocationID uuid.UUID            `json:"location_id" validate:"uuid_required"`
	Quantity   int                  `json:"quantity" validate:"required,gt=0"`
	Reference  string               `json:"reference"`
	Reason     model.MovementReason `json:"reason"`
}

type StockOutRequest struct {
	ItemID     uuid.UUID            `json:"item_id" validate:"uuid_required"`
	LocationID uuid.UUID            `json:"location_id" validate:"uuid_required"`
	Quantity   int                  `json:"quantity" validate:"required,gt=0"`
	Reference  string               `json:"reference"`
	Reason     model.MovementReason `json:"reason"`
}

type AdjustRequest struct {
	ItemID           uuid.UUID `json:"item_id" validate:"uuid_required"`
	LocationID       uuid.UUID `json:"location_id" validate:"uuid_required"`
	PhysicalQuantity int       `json:"physical_quantity" validate:"gte=0"`
	Reference        string    `json:"reference"`
}

type AdjustResult struct {
	Delta       int                    `json:"difference"`
	NewQuantity int                    `json:"new_quantity"`
	Record      *model.InventoryRecord `json:"inventory"`
}

// StockService performs the three ledger operations. Every quantity change
// goes through the ledger repository, which pairs it with its movement row
// in one transaction.
type StockService interface {
	StockIn(actor *model.User, req *StockInRequest) (*model.InventoryRecord, error)
	StockOut(actor *model.User, req *StockOutRequest) (*model.InventoryRecord, error)
	Adjust(actor *model.User, req *AdjustRequest) (*AdjustResult, error)
}

type stockService struct {
	ledger    repository.LedgerRepository
	items     repository.ItemRepository
	locations repository.LocationRepository
	engine    *policy.Engine
	notifier  Notifier
	cache     *cache.ReportCache
	log       *zap.Logger
}

func NewStockService(
	ledger repository.LedgerRepository,
	items repository.ItemRepository,
	locations repository.LocationRepository,
	engine *policy.Engine,
	notifier Notifier,
	reportCache *cache.ReportCache,
	log *zap.Logger,
) StockService {
	return &stockService{
		ledger:    ledger,
		items:     items,
		locations: locations,
		engine:    engine,
		notifier:  notifier,
		cache:     reportCache,
		log:       log,
	}
}

// resolveTarget verifies the referenced item and location and the actor's
// right to operate on that branch.
func (s *stockService) resolveTarget(actor *model.User, itemID, locationID uuid.UUID) (*model.Item, *model.Location, error) {
	if err := s.engine.AllowLocation(actor, locationID); err != nil {
		return nil, nil, err
	}
	item, err := s.items.FindByID(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	location, err := s.locations.FindByID(locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return item, location, nil
}

func (s *stockService) StockIn(actor *model.User, req *StockInRequest) (*model.InventoryRecord, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	if _, _, err := s.resolveTarget(actor, req.ItemID, req.LocationID); err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = model.ReasonPurchaseReceipt
	}
	reference := req.Reference
	if reference == "" {
		reference = "manual stock in"
	}

	mv := &model.StockMovement{
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		Type:       model.MovementIn,
		Quantity:   req.Quantity,
		Reference:  reference,
		Reason:     reason,
		UserID:     actor.ID,
	}
	mv.CreatedBy = actor.ID.String()

	rec, err := s.ledger.ApplyMovement(mv, 0)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(context.Background())
	return rec, nil
}

func (s *stockService) StockOut(actor *model.User, req *StockOutRequest) (*model.InventoryRecord, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	item, location, err := s.resolveTarget(actor, req.ItemID, req.LocationID)
	if err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = model.ReasonSalesIssue
	}
	reference := req.Reference
	if reference == "" {
		reference = "manual stock out"
	}

	mv := &model.StockMovement{
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		Type:       model.MovementOut,
		Quantity:   req.Quantity,
		Reference:  reference,
		Reason:     reason,
		UserID:     actor.ID,
	}
	mv.CreatedBy = actor.ID.String()

	rec, err := s.ledger.ApplyMovement(mv, 0)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(context.Background())

	// Crossing the threshold fires the alert; failure to notify never fails
	// the stock-out.
	if rec.IsLow() {
		s.notifier.NotifyLowStock(item.ID, location.ID, item.Name, location.Name,
			rec.Quantity, rec.EffectiveThreshold(), actor)
	}
	return rec, nil
}

func (s *stockService) Adjust(actor *model.User, req *AdjustRequest) (*AdjustResult, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	if _, _, err := s.resolveTarget(actor, req.ItemID, req.LocationID); err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference = "periodic stock count"
	}

	delta, rec, err := s.ledger.AdjustTo(req.ItemID, req.LocationID, req.PhysicalQuantity, reference, actor.ID)
	if err != nil {
		return nil, err
	}
	if delta != 0 {
		s.cache.Invalidate(context.Background())
	}
	return &AdjustResult{Delta: delta, NewQuantity: rec.Quantity, Record: rec}, nil
}
