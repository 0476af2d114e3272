package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"branchstock/internal/model"
)

// MonthlyMovementRow is one (year, month, item, location) group of the
// movement log, split into in/out totals.
type MonthlyMovementRow struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	ItemName     string `json:"item_name"`
	LocationName string `json:"location_name"`
	StockIn      int    `json:"stock_in"`
	StockOut     int    `json:"stock_out"`
}

// OverallTotalRow is the per-item quantity summed across every branch.
type OverallTotalRow struct {
	ItemID        uuid.UUID `json:"item_id"`
	ItemName      string    `json:"item_name"`
	ItemSKU       string    `json:"item_sku"`
	TotalQuantity int       `json:"total_quantity"`
}

// DashboardStats is the read-side overview for the admin landing page.
type DashboardStats struct {
	TotalItems     int64 `json:"total_items"`
	LowStockCount  int64 `json:"low_stock_count"`
	TotalValuation int64 `json:"total_valuation"`
}

type ReportRepository interface {
	MonthlyMovement() ([]MonthlyMovementRow, error)
	MonthlyMovementByLocation(locationID uuid.UUID) ([]MonthlyMovementRow, error)
	OverallTotals() ([]OverallTotalRow, error)
	DashboardStats() (*DashboardStats, error)
	RecentMovements(limit int) ([]model.StockMovement, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

const monthlyMovementSQL = `
SELECT EXTRACT(YEAR FROM sm.created_at)::int AS year,
       EXTRACT(MONTH FROM sm.created_at)::int AS month,
       i.name AS item_name,
       l.name AS location_name,
       COALESCE(SUM(CASE WHEN sm.type = 'IN' THEN sm.quantity ELSE 0 END), 0) AS stock_in,
       COALESCE(SUM(CASE WHEN sm.type = 'OUT' THEN sm.quantity ELSE 0 END), 0) AS stock_out
FROM stock_movements sm
JOIN items i ON i.id = sm.item_id
JOIN locations l ON l.id = sm.location_id
WHERE sm.deleted_at IS NULL`

const monthlyMovementGroupSQL = `
GROUP BY year, month, i.name, l.name
ORDER BY year DESC, month DESC, i.name ASC`

func (r *reportRepo) MonthlyMovement() ([]MonthlyMovementRow, error) {
	var rows []MonthlyMovementRow
	err := r.db.Raw(monthlyMovementSQL + monthlyMovementGroupSQL).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) MonthlyMovementByLocation(locationID uuid.UUID) ([]MonthlyMovementRow, error) {
	var rows []MonthlyMovementRow
	err := r.db.Raw(monthlyMovementSQL+" AND sm.location_id = ?"+monthlyMovementGroupSQL, locationID).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) OverallTotals() ([]OverallTotalRow, error) {
	var rows []OverallTotalRow
	err := r.db.Raw(`
SELECT ir.item_id AS item_id,
       i.name AS item_name,
       i.sku AS item_sku,
       COALESCE(SUM(ir.quantity), 0) AS total_quantity
FROM inventory_records ir
JOIN items i ON i.id = ir.item_id
WHERE ir.deleted_at IS NULL
GROUP BY ir.item_id, i.name, i.sku
ORDER BY i.name ASC`).Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) DashboardStats() (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.db.Model(&model.Item{}).Where("is_active = ?", true).
		Count(&stats.TotalItems).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&model.InventoryRecord{}).
		Where("quantity <= " + effectiveThresholdSQL).
		Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	err := r.db.Raw(`
SELECT COALESCE(SUM(ir.quantity * i.cost_price), 0)
FROM inventory_records ir
JOIN items i ON i.id = ir.item_id
WHERE ir.deleted_at IS NULL`).Scan(&stats.TotalValuation).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *reportRepo) RecentMovements(limit int) ([]model.StockMovement, error) {
	if limit < 1 {
		limit = 20
	}
	var movements []model.StockMovement
	err := r.db.Preload("Item").Preload("Location").Preload("User").
		Order("created_at DESC").Limit(limit).
		Find(&movements).Error
	return movements, err
}
