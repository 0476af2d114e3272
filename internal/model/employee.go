package model

import (
	"strings"

	"github.com/google/uuid"
)

// GrantAllBranches in InventoryGrant.AccessibleBranches widens an employee's
// inventory scope to every location.
const GrantAllBranches = "all"

// InventoryGrant is the per-employee inventory permission record. Non-admins
// only ever act on stock through these flags.
type InventoryGrant struct {
	CanView   bool `gorm:"default:false" json:"can_view"`
	CanManage bool `gorm:"default:false" json:"can_manage"`
	// AccessibleBranches is "all" for an all-branches grant; any other value
	// restricts the employee to their own branch.
	AccessibleBranches string `gorm:"type:varchar(100);default:''" json:"accessible_branches"`
}

func (g InventoryGrant) AllBranches() bool {
	return strings.EqualFold(strings.TrimSpace(g.AccessibleBranches), GrantAllBranches)
}

// Employee is the HR record behind an employee user account. BranchID is the
// canonical branch reference; Branch keeps the legacy free-text name still
// present on old rows and is only consulted when BranchID is unset.
type Employee struct {
	BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id" validate:"uuid_required"`
	User         *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EmployeeCode string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"employee_code" validate:"required"`
	Designation  string     `gorm:"type:varchar(100)" json:"designation"`
	Department   string     `gorm:"type:varchar(100)" json:"department"`
	BranchID     *uuid.UUID `gorm:"type:uuid;index" json:"branch_id,omitempty"`
	BranchRef    *Location  `gorm:"foreignKey:BranchID" json:"branch_ref,omitempty"`
	Branch       string     `gorm:"type:varchar(100)" json:"branch,omitempty"`
	PhoneNumber  string     `gorm:"type:varchar(20)" json:"phone_number"`
	Salary       int64      `gorm:"default:0" json:"salary"`

	Grant InventoryGrant `gorm:"embedded;embeddedPrefix:grant_" json:"inventory_grant"`
}
