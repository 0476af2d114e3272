package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferInTransit TransferStatus = "IN_TRANSIT"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferShortfall TransferStatus = "COMPLETED_WITH_SHORTFALL"
	TransferCancelled TransferStatus = "CANCELLED"
)

var (
	// ErrTransferNotInTransit guards confirmation: only an IN_TRANSIT
	// transfer may be received, which makes double-confirmation impossible.
	ErrTransferNotInTransit   = errors.New("transfer is not in transit")
	ErrReceivedExceedsShipped = errors.New("received quantity exceeds shipped quantity")
	ErrReceivedNotPositive    = errors.New("received quantity must be positive")
)

// StockTransfer is the two-phase inter-branch move. It is created directly
// IN_TRANSIT (the source ledger is decremented at initiation) and reaches a
// terminal state on destination confirmation.
type StockTransfer struct {
	BaseModel
	Reference             string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"reference"`
	SourceLocationID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"source_location_id" validate:"uuid_required"`
	SourceLocation        *Location      `gorm:"foreignKey:SourceLocationID" json:"source_location,omitempty"`
	DestinationLocationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"destination_location_id" validate:"uuid_required"`
	DestinationLocation   *Location      `gorm:"foreignKey:DestinationLocationID" json:"destination_location,omitempty"`
	ItemID                uuid.UUID      `gorm:"type:uuid;not null;index" json:"item_id" validate:"uuid_required"`
	Item                  *Item          `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	ShippedQuantity       int            `gorm:"not null" json:"shipped_quantity" validate:"required,gt=0"`
	Note                  string         `gorm:"type:text" json:"note,omitempty"`
	ReceivedQuantity      int            `gorm:"default:0" json:"received_quantity"`
	DisputeQuantity       int            `gorm:"default:0" json:"dispute_quantity"`
	DisputeNote           string         `gorm:"type:text" json:"dispute_note,omitempty"`
	Status                TransferStatus `gorm:"type:varchar(30);not null;index" json:"status"`
	OutgoingMovementID    *uuid.UUID     `gorm:"type:uuid" json:"outgoing_movement_id,omitempty"`
	IncomingMovementID    *uuid.UUID     `gorm:"type:uuid" json:"incoming_movement_id,omitempty"`
	InitiatedByID         uuid.UUID      `gorm:"type:uuid;not null" json:"initiated_by_id"`
	InitiatedBy           *User          `gorm:"foreignKey:InitiatedByID" json:"initiated_by,omitempty"`
	ReceivedByID          *uuid.UUID     `gorm:"type:uuid" json:"received_by_id,omitempty"`
	ReceivedBy            *User          `gorm:"foreignKey:ReceivedByID" json:"received_by,omitempty"`
	ReceivedAt            *time.Time     `json:"received_at,omitempty"`
}

// HasShortfall reports whether the transfer closed short.
func (t *StockTransfer) HasShortfall() bool {
	return t.Status == TransferShortfall
}

// MarkReceived applies the destination-side confirmation to the row: state
// guard, dispute computation and terminal status. The destination ledger is
// credited by received only, never by shipped; that happens alongside this
// call in the same transaction.
func (t *StockTransfer) MarkReceived(received int, note string, by uuid.UUID) error {
	if t.Status != TransferInTransit {
		return ErrTransferNotInTransit
	}
	if received <= 0 {
		return ErrReceivedNotPositive
	}
	if received > t.ShippedQuantity {
		return ErrReceivedExceedsShipped
	}

	t.ReceivedQuantity = received
	t.DisputeQuantity = t.ShippedQuantity - received
	if t.DisputeQuantity > 0 {
		t.Status = TransferShortfall
		t.DisputeNote = note
	} else {
		t.Status = TransferCompleted
	}
	t.ReceivedByID = &by
	now := time.Now()
	t.ReceivedAt = &now
	return nil
}

// NewTransferReference builds the human-readable unique reference code.
func NewTransferReference() string {
	return fmt.Sprintf("TRF-%s-%s", time.Now().Format("20060102"), uuid.New().String()[:8])
}
