package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultAlertThreshold applies to ledger rows created without an explicit
// alert limit.
const DefaultAlertThreshold = 10

// InsufficientStockError rejects a decrement larger than the current
// recorded quantity. Available names the amount the caller can still take.
type InsufficientStockError struct {
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %d available", e.Available)
}

// InventoryRecord is the ledger: exactly one row per (item, location) pair.
// Quantity is only ever mutated inside a transaction that also inserts the
// paired StockMovement row.
type InventoryRecord struct {
	BaseModel
	ItemID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_location" json:"item_id" validate:"uuid_required"`
	Item       *Item     `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_item_location" json:"location_id" validate:"uuid_required"`
	Location   *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Quantity   int       `gorm:"not null;default:0" json:"quantity"`
	AlertLimit int       `gorm:"default:0" json:"alert_limit"`
	// MinStockLevel is the legacy threshold field; kept in sync on writes,
	// consulted only when AlertLimit is unset on old rows.
	MinStockLevel  int        `gorm:"default:0" json:"min_stock_level"`
	LastMovementAt *time.Time `json:"last_movement_at,omitempty"`
}

// EffectiveThreshold resolves the alert limit with the legacy fallback chain.
func (r *InventoryRecord) EffectiveThreshold() int {
	if r.AlertLimit > 0 {
		return r.AlertLimit
	}
	if r.MinStockLevel > 0 {
		return r.MinStockLevel
	}
	return DefaultAlertThreshold
}

// IsLow reports whether the row sits at or below its effective threshold.
func (r *InventoryRecord) IsLow() bool {
	return r.Quantity <= r.EffectiveThreshold()
}

// ApplyDelta mutates the quantity, rejecting decrements that would take the
// ledger below zero. The repository calls this inside the row-locked
// transaction; tests call it directly.
func (r *InventoryRecord) ApplyDelta(delta int) error {
	if delta < 0 && r.Quantity+delta < 0 {
		return &InsufficientStockError{Available: r.Quantity}
	}
	r.Quantity += delta
	now := time.Now()
	r.LastMovementAt = &now
	return nil
}
