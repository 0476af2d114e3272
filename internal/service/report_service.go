package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"branchstock/internal/cache"
	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/repository"
)

// InventoryReportRow flattens one ledger row for the report view.
type InventoryReportRow struct {
	ItemID       uuid.UUID `json:"item_id"`
	ItemName     string    `json:"item_name"`
	ItemSKU      string    `json:"item_sku"`
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name"`
	Quantity     int       `json:"quantity"`
	Threshold    int       `json:"threshold"`
	IsLow        bool      `json:"is_low"`
}

// Dashboard bundles the cached stats with the latest movement rows.
type Dashboard struct {
	Stats           *repository.DashboardStats `json:"stats"`
	RecentMovements []model.StockMovement      `json:"recent_movements"`
}

// ReportService serves the read-only reporting views.
type ReportService interface {
	InventoryReport(actor *model.User, requestedLocation *uuid.UUID) ([]InventoryReportRow, error)
	MonthlyMovement(actor *model.User) ([]repository.MonthlyMovementRow, error)
	MonthlyMovementByLocation(actor *model.User, locationID uuid.UUID) ([]repository.MonthlyMovementRow, error)
	OverallTotals(actor *model.User) ([]repository.OverallTotalRow, error)
	Dashboard(actor *model.User) (*Dashboard, error)
}

type reportService struct {
	reports repository.ReportRepository
	ledger  repository.LedgerRepository
	engine  *policy.Engine
	cache   *cache.ReportCache
	log     *zap.Logger
}

func NewReportService(reports repository.ReportRepository, ledger repository.LedgerRepository, engine *policy.Engine, reportCache *cache.ReportCache, log *zap.Logger) ReportService {
	return &reportService{reports: reports, ledger: ledger, engine: engine, cache: reportCache, log: log}
}

func (s *reportService) InventoryReport(actor *model.User, requestedLocation *uuid.UUID) ([]InventoryReportRow, error) {
	scope, err := s.engine.ResolveScope(actor, requestedLocation)
	if err != nil {
		return nil, err
	}
	records, err := s.ledger.ListScoped(scope.LocationIDs, scope.All)
	if err != nil {
		return nil, err
	}

	rows := make([]InventoryReportRow, len(records))
	for i, rec := range records {
		row := InventoryReportRow{
			ItemID:     rec.ItemID,
			LocationID: rec.LocationID,
			Quantity:   rec.Quantity,
			Threshold:  rec.EffectiveThreshold(),
			IsLow:      rec.IsLow(),
		}
		if rec.Item != nil {
			row.ItemName = rec.Item.Name
			row.ItemSKU = rec.Item.SKU
		}
		if rec.Location != nil {
			row.LocationName = rec.Location.Name
		}
		rows[i] = row
	}
	return rows, nil
}

func (s *reportService) MonthlyMovement(actor *model.User) ([]repository.MonthlyMovementRow, error) {
	if err := s.engine.Allow(actor, policy.CapInventoryRead); err != nil {
		return nil, err
	}
	return s.reports.MonthlyMovement()
}

func (s *reportService) MonthlyMovementByLocation(actor *model.User, locationID uuid.UUID) ([]repository.MonthlyMovementRow, error) {
	if err := s.engine.AllowLocation(actor, locationID); err != nil {
		return nil, err
	}
	return s.reports.MonthlyMovementByLocation(locationID)
}

func (s *reportService) OverallTotals(actor *model.User) ([]repository.OverallTotalRow, error) {
	if err := s.engine.Allow(actor, policy.CapInventoryRead); err != nil {
		return nil, err
	}
	return s.reports.OverallTotals()
}

func (s *reportService) Dashboard(actor *model.User) (*Dashboard, error) {
	if err := s.engine.Allow(actor, policy.CapInventoryRead); err != nil {
		return nil, err
	}

	stats, hit := s.cache.GetDashboardStats(context.Background())
	if !hit {
		var err error
		stats, err = s.reports.DashboardStats()
		if err != nil {
			return nil, err
		}
		s.cache.SetDashboardStats(context.Background(), stats)
	}

	movements, err := s.reports.RecentMovements(10)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Stats: stats, RecentMovements: movements}, nil
}
