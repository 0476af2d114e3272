package model

import (
	"strings"

	"github.com/google/uuid"
)

type UnitOfMeasure string

const (
	UnitPiece    UnitOfMeasure = "piece"
	UnitCarton   UnitOfMeasure = "carton"
	UnitMeter    UnitOfMeasure = "meter"
	UnitLiter    UnitOfMeasure = "liter"
	UnitKilogram UnitOfMeasure = "kilogram"
	UnitBox      UnitOfMeasure = "box"
	UnitOther    UnitOfMeasure = "other"
)

// Item is a SKU-keyed product definition. Quantities live in the per-branch
// ledger, never on the item itself.
type Item struct {
	BaseModel
	SKU           string        `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku" validate:"required"`
	Name          string        `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Description   string        `gorm:"type:text" json:"description,omitempty"`
	UnitOfMeasure UnitOfMeasure `gorm:"type:varchar(20);not null;default:'piece'" json:"unit_of_measure" validate:"required,oneof=piece carton meter liter kilogram box other"`
	CostPrice     int64         `gorm:"not null;default:0" json:"cost_price" validate:"gte=0"`
	CategoryID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"category_id" validate:"uuid_required"`
	Category      *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ImageURL      string        `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	ImageKey      string        `gorm:"type:varchar(255)" json:"-"`
	IsActive      bool          `gorm:"default:true;index" json:"is_active"`
}

// NormalizeSKU is applied on every write path so lookups never miss on case
// or stray whitespace.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
