package model

import "github.com/google/uuid"

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

type MovementReason string

const (
	ReasonPurchaseReceipt  MovementReason = "purchase_receipt"
	ReasonSalesIssue       MovementReason = "sales_issue"
	ReasonTransfer         MovementReason = "transfer"
	ReasonStockCount       MovementReason = "stock_count"
	ReasonDamageLoss       MovementReason = "damage_loss"
	ReasonManualCorrection MovementReason = "manual_correction"
)

// StockMovement is the append-only audit trail of every ledger change.
// Rows are never updated or deleted.
type StockMovement struct {
	BaseModel
	ItemID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item       *Item          `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	LocationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"location_id" validate:"uuid_required"`
	Location   *Location      `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Type       MovementType   `gorm:"type:varchar(10);not null" json:"type" validate:"required,oneof=IN OUT"`
	Quantity   int            `gorm:"not null" json:"quantity" validate:"required,gt=0"`
	Reference  string         `gorm:"type:varchar(255);default:'manual adjustment'" json:"reference"`
	Reason     MovementReason `gorm:"type:varchar(30);not null;default:'manual_correction'" json:"reason" validate:"required,oneof=purchase_receipt sales_issue transfer stock_count damage_loss manual_correction"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null" json:"user_id" validate:"uuid_required"`
	User       *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// SignedQuantity folds the movement type into a ledger delta.
func (m *StockMovement) SignedQuantity() int {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}
