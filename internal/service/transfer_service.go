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

type InitiateTransferRequest struct {
	SourceLocationID      uuid.UUID `json:"source_location_id" validate:"uuid_required"`
	DestinationLocationID uuid.UUID `json:"destination_location_id" validate:"uuid_required"`
	ItemID                uuid.UUID `json:"item_id" validate:"uuid_required"`
	Quantity              int       `json:"quantity" validate:"required,gt=0"`
	Note                  string    `json:"note"`
}

type ConfirmTransferRequest struct {
	ReceivedQuantity int    `json:"received_quantity" validate:"required,gt=0"`
	DisputeNote      string `json:"dispute_note"`
}

// TransferService drives the two-phase inter-branch workflow:
// IN_TRANSIT on initiation, a terminal completed state on confirmation.
type TransferService interface {
	Initiate(actor *model.User, req *InitiateTransferRequest) (*model.StockTransfer, error)
	Confirm(actor *model.User, transferID uuid.UUID, req *ConfirmTransferRequest) (*model.StockTransfer, error)
	Get(actor *model.User, transferID uuid.UUID) (*model.StockTransfer, error)
	List(actor *model.User, requestedLocation *uuid.UUID) ([]model.StockTransfer, error)
}

type transferService struct {
	transfers repository.TransferRepository
	items     repository.ItemRepository
	locations repository.LocationRepository
	engine    *policy.Engine
	notifier  Notifier
	cache     *cache.ReportCache
	log       *zap.Logger
}

func NewTransferService(
	transfers repository.TransferRepository,
	items repository.ItemRepository,
	locations repository.LocationRepository,
	engine *policy.Engine,
	notifier Notifier,
	reportCache *cache.ReportCache,
	log *zap.Logger,
) TransferService {
	return &transferService{
		transfers: transfers,
		items:     items,
		locations: locations,
		engine:    engine,
		notifier:  notifier,
		cache:     reportCache,
		log:       log,
	}
}

func (s *transferService) Initiate(actor *model.User, req *InitiateTransferRequest) (*model.StockTransfer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}
	if req.SourceLocationID == req.DestinationLocationID {
		return nil, badRequest("source and destination must differ")
	}
	if err := s.engine.AllowLocation(actor, req.SourceLocationID); err != nil {
		return nil, err
	}
	if _, err := s.items.FindByID(req.ItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	for _, locID := range []uuid.UUID{req.SourceLocationID, req.DestinationLocationID} {
		if _, err := s.locations.FindByID(locID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
	}

	t := &model.StockTransfer{
		Reference:             model.NewTransferReference(),
		SourceLocationID:      req.SourceLocationID,
		DestinationLocationID: req.DestinationLocationID,
		ItemID:                req.ItemID,
		ShippedQuantity:       req.Quantity,
		Note:                  req.Note,
		InitiatedByID:         actor.ID,
	}
	t.CreatedBy = actor.ID.String()

	if err := s.transfers.Initiate(t); err != nil {
		return nil, err
	}
	s.cache.Invalidate(context.Background())
	s.notifier.NotifyTransferShipped(t, actor)

	s.log.Info("transfer initiated",
		zap.String("reference", t.Reference),
		zap.Int("quantity", t.ShippedQuantity))
	return t, nil
}

func (s *transferService) Confirm(actor *model.User, transferID uuid.UUID, req *ConfirmTransferRequest) (*model.StockTransfer, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, badRequest(validator.FirstError(errs))
	}

	t, err := s.transfers.FindByID(transferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := s.engine.AllowLocation(actor, t.DestinationLocationID); err != nil {
		return nil, err
	}

	updated, err := s.transfers.Confirm(transferID, req.ReceivedQuantity, req.DisputeNote, actor.ID)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(context.Background())

	if updated.HasShortfall() {
		s.notifier.NotifyTransferDispute(updated, actor)
	} else {
		s.notifier.NotifyTransferCompleted(updated, actor)
	}

	s.log.Info("transfer confirmed",
		zap.String("reference", updated.Reference),
		zap.String("status", string(updated.Status)),
		zap.Int("dispute", updated.DisputeQuantity))
	return updated, nil
}

func (s *transferService) Get(actor *model.User, transferID uuid.UUID) (*model.StockTransfer, error) {
	t, err := s.transfers.FindByID(transferID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	scope, err := s.engine.ResolveScope(actor, nil)
	if err != nil {
		return nil, err
	}
	if !scope.Contains(t.SourceLocationID) && !scope.Contains(t.DestinationLocationID) {
		return nil, policy.ErrWrongBranch
	}
	return t, nil
}

func (s *transferService) List(actor *model.User, requestedLocation *uuid.UUID) ([]model.StockTransfer, error) {
	scope, err := s.engine.ResolveScope(actor, requestedLocation)
	if err != nil {
		return nil, err
	}
	return s.transfers.List(scope.LocationIDs, scope.All)
}
