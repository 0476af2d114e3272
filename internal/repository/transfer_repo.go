package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"branchstock/internal/model"
)

// TransferRepository owns the two atomic phases of the transfer workflow.
// Initiation and confirmation each run in one transaction so the transfer
// row, its movement and the ledger mutation commit or roll back together.
type TransferRepository interface {
	// Initiate decrements the locked source ledger, logs the outbound
	// movement and creates the transfer row referencing it.
	Initiate(t *model.StockTransfer) error
	// Confirm applies the destination-side receipt: state guard, inbound
	// movement for the received quantity, destination ledger credit.
	Confirm(id uuid.UUID, received int, note string, userID uuid.UUID) (*model.StockTransfer, error)
	FindByID(id uuid.UUID) (*model.StockTransfer, error)
	List(locationIDs []uuid.UUID, all bool) ([]model.StockTransfer, error)
}

type transferRepo struct {
	db *gorm.DB
}

func NewTransferRepo(db *gorm.DB) TransferRepository {
	return &transferRepo{db}
}

func (r *transferRepo) Initiate(t *model.StockTransfer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		src, err := lockOrCreate(tx, t.ItemID, t.SourceLocationID, 0, false)
		if err != nil {
			return err
		}
		if err := src.ApplyDelta(-t.ShippedQuantity); err != nil {
			return err
		}

		outMv := &model.StockMovement{
			ItemID:     t.ItemID,
			LocationID: t.SourceLocationID,
			Type:       model.MovementOut,
			Quantity:   t.ShippedQuantity,
			Reference:  "transfer out: " + t.Reference,
			Reason:     model.ReasonTransfer,
			UserID:     t.InitiatedByID,
		}
		outMv.CreatedBy = t.InitiatedByID.String()
		if err := tx.Create(outMv).Error; err != nil {
			return err
		}
		if err := tx.Save(src).Error; err != nil {
			return err
		}

		t.Status = model.TransferInTransit
		t.OutgoingMovementID = &outMv.ID
		return tx.Create(t).Error
	})
}

func (r *transferRepo) Confirm(id uuid.UUID, received int, note string, userID uuid.UUID) (*model.StockTransfer, error) {
	var t model.StockTransfer
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&t, "id = ?", id).Error; err != nil {
			return err
		}
		// Re-checked under the row lock: a transfer that already left
		// IN_TRANSIT rejects here, so a second confirmation can never
		// credit the destination twice.
		if err := t.MarkReceived(received, note, userID); err != nil {
			return err
		}

		inMv := &model.StockMovement{
			ItemID:     t.ItemID,
			LocationID: t.DestinationLocationID,
			Type:       model.MovementIn,
			Quantity:   received,
			Reference:  "transfer in: " + t.Reference,
			Reason:     model.ReasonTransfer,
			UserID:     userID,
		}
		inMv.CreatedBy = userID.String()
		if err := tx.Create(inMv).Error; err != nil {
			return err
		}

		dest, err := lockOrCreate(tx, t.ItemID, t.DestinationLocationID, 0, true)
		if err != nil {
			return err
		}
		if err := dest.ApplyDelta(received); err != nil {
			return err
		}
		if err := tx.Save(dest).Error; err != nil {
			return err
		}

		t.IncomingMovementID = &inMv.ID
		return tx.Save(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepo) FindByID(id uuid.UUID) (*model.StockTransfer, error) {
	var t model.StockTransfer
	err := r.db.Preload("Item").Preload("SourceLocation").Preload("DestinationLocation").
		Preload("InitiatedBy").Preload("ReceivedBy").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transferRepo) List(locationIDs []uuid.UUID, all bool) ([]model.StockTransfer, error) {
	var transfers []model.StockTransfer
	q := r.db.Preload("Item").Preload("SourceLocation").Preload("DestinationLocation").
		Order("created_at DESC")
	if !all {
		if len(locationIDs) == 0 {
			return []model.StockTransfer{}, nil
		}
		q = q.Where("source_location_id IN ? OR destination_location_id IN ?", locationIDs, locationIDs)
	}
	err := q.Find(&transfers).Error
	return transfers, err
}
