package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"branchstock/internal/model"
)

// LowStockPage is one page of the low-stock listing plus the badge total.
type LowStockPage struct {
	Records []model.InventoryRecord
	Total   int64
}

// LedgerRepository owns every mutation of the per-(item, location) quantity
// records. Each mutation runs in a single transaction that locks the ledger
// row and inserts the paired movement, so the audit trail and the ledger can
// never diverge and concurrent decrements cannot jointly overdraw a row.
type LedgerRepository interface {
	Get(itemID, locationID uuid.UUID) (*model.InventoryRecord, error)
	ListByItem(itemID uuid.UUID) ([]model.InventoryRecord, error)
	ListScoped(locationIDs []uuid.UUID, all bool) ([]model.InventoryRecord, error)
	// ApplyMovement inserts the movement and applies its signed delta to the
	// ledger row, creating the row (with the default threshold) on first IN.
	ApplyMovement(mv *model.StockMovement, alertLimit int) (*model.InventoryRecord, error)
	// AdjustTo reconciles the row against a physical count. A zero delta is a
	// no-op success without a movement. Returns the applied delta.
	AdjustTo(itemID, locationID uuid.UUID, physical int, reference string, userID uuid.UUID) (int, *model.InventoryRecord, error)
	SetThresholdForItem(itemID uuid.UUID, alertLimit int) error
	SetThreshold(itemID, locationID uuid.UUID, alertLimit int) error
	HasStockAtLocation(locationID uuid.UUID) (bool, error)
	HasStockForItem(itemID uuid.UUID) (bool, error)
	PurgeZeroForItem(itemID uuid.UUID) error
	FindLowStock(locationIDs []uuid.UUID, all bool, page, limit int) (*LowStockPage, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db}
}

func (r *ledgerRepo) Get(itemID, locationID uuid.UUID) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := r.db.Preload("Item").Preload("Location").
		Where("item_id = ? AND location_id = ?", itemID, locationID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ledgerRepo) ListByItem(itemID uuid.UUID) ([]model.InventoryRecord, error) {
	var recs []model.InventoryRecord
	err := r.db.Preload("Location").Where("item_id = ?", itemID).Find(&recs).Error
	return recs, err
}

func (r *ledgerRepo) ListScoped(locationIDs []uuid.UUID, all bool) ([]model.InventoryRecord, error) {
	var recs []model.InventoryRecord
	q := r.db.Preload("Item").Preload("Location")
	if !all {
		if len(locationIDs) == 0 {
			return []model.InventoryRecord{}, nil
		}
		q = q.Where("location_id IN ?", locationIDs)
	}
	err := q.Find(&recs).Error
	return recs, err
}

// lockOrCreate fetches the ledger row FOR UPDATE inside tx. With create set
// it upserts an empty row (default threshold) when absent; without it a
// missing row reads as zero available stock.
func lockOrCreate(tx *gorm.DB, itemID, locationID uuid.UUID, alertLimit int, create bool) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND location_id = ?", itemID, locationID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !create {
			return nil, &model.InsufficientStockError{Available: 0}
		}
		if alertLimit <= 0 {
			alertLimit = model.DefaultAlertThreshold
		}
		rec = model.InventoryRecord{
			ItemID:        itemID,
			LocationID:    locationID,
			AlertLimit:    alertLimit,
			MinStockLevel: alertLimit,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return nil, err
		}
		return &rec, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ledgerRepo) ApplyMovement(mv *model.StockMovement, alertLimit int) (*model.InventoryRecord, error) {
	var rec *model.InventoryRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = lockOrCreate(tx, mv.ItemID, mv.LocationID, alertLimit, mv.Type == model.MovementIn)
		if err != nil {
			return err
		}
		if err := rec.ApplyDelta(mv.SignedQuantity()); err != nil {
			return err
		}
		if err := tx.Create(mv).Error; err != nil {
			return err
		}
		return tx.Save(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *ledgerRepo) AdjustTo(itemID, locationID uuid.UUID, physical int, reference string, userID uuid.UUID) (int, *model.InventoryRecord, error) {
	var rec *model.InventoryRecord
	var delta int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		rec, err = lockOrCreate(tx, itemID, locationID, 0, true)
		if err != nil {
			return err
		}
		delta = physical - rec.Quantity
		if delta == 0 {
			return nil
		}

		mvType := model.MovementIn
		if delta < 0 {
			mvType = model.MovementOut
		}
		mv := &model.StockMovement{
			ItemID:     itemID,
			LocationID: locationID,
			Type:       mvType,
			Quantity:   abs(delta),
			Reference:  reference,
			Reason:     model.ReasonStockCount,
			UserID:     userID,
		}
		mv.CreatedBy = userID.String()
		if err := tx.Create(mv).Error; err != nil {
			return err
		}
		if err := rec.ApplyDelta(delta); err != nil {
			return err
		}
		return tx.Save(rec).Error
	})
	if err != nil {
		return 0, nil, err
	}
	return delta, rec, nil
}

func (r *ledgerRepo) SetThresholdForItem(itemID uuid.UUID, alertLimit int) error {
	return r.db.Model(&model.InventoryRecord{}).
		Where("item_id = ?", itemID).
		Updates(map[string]interface{}{
			"alert_limit":     alertLimit,
			"min_stock_level": alertLimit, // keep the legacy field in sync
		}).Error
}

func (r *ledgerRepo) SetThreshold(itemID, locationID uuid.UUID, alertLimit int) error {
	return r.db.Model(&model.InventoryRecord{}).
		Where("item_id = ? AND location_id = ?", itemID, locationID).
		Updates(map[string]interface{}{
			"alert_limit":     alertLimit,
			"min_stock_level": alertLimit,
		}).Error
}

func (r *ledgerRepo) HasStockAtLocation(locationID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.InventoryRecord{}).
		Where("location_id = ? AND quantity > 0", locationID).
		Count(&count).Error
	return count > 0, err
}

func (r *ledgerRepo) HasStockForItem(itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.InventoryRecord{}).
		Where("item_id = ? AND quantity > 0", itemID).
		Count(&count).Error
	return count > 0, err
}

func (r *ledgerRepo) PurgeZeroForItem(itemID uuid.UUID) error {
	return r.db.Unscoped().
		Where("item_id = ? AND quantity = 0", itemID).
		Delete(&model.InventoryRecord{}).Error
}

// effectiveThresholdSQL mirrors InventoryRecord.EffectiveThreshold for
// query-side filtering.
const effectiveThresholdSQL = "CASE WHEN alert_limit > 0 THEN alert_limit " +
	"WHEN min_stock_level > 0 THEN min_stock_level ELSE 10 END"

func (r *ledgerRepo) FindLowStock(locationIDs []uuid.UUID, all bool, page, limit int) (*LowStockPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	out := &LowStockPage{Records: []model.InventoryRecord{}}
	if !all && len(locationIDs) == 0 {
		return out, nil
	}

	scoped := func(q *gorm.DB) *gorm.DB {
		q = q.Where("quantity <= " + effectiveThresholdSQL)
		if !all {
			q = q.Where("location_id IN ?", locationIDs)
		}
		return q
	}

	if err := scoped(r.db.Model(&model.InventoryRecord{})).Count(&out.Total).Error; err != nil {
		return nil, err
	}
	err := scoped(r.db.Preload("Item").Preload("Location")).
		Order("quantity ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&out.Records).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
