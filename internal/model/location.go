package model

import "github.com/google/uuid"

// Location is a named branch/warehouse. Deletion is blocked while any
// ledger record at the location holds positive quantity.
type Location struct {
	BaseModel
	Name      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	City      string     `gorm:"type:varchar(100);not null" json:"city" validate:"required"`
	Address   string     `gorm:"type:varchar(255)" json:"address,omitempty"`
	ManagerID *uuid.UUID `gorm:"type:uuid" json:"manager_id,omitempty"`
	Manager   *Employee  `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}
