package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/repository"
)

type fakeReports struct {
	stats     *repository.DashboardStats
	statCalls int
}

func (f *fakeReports) MonthlyMovement() ([]repository.MonthlyMovementRow, error) { return nil, nil }
func (f *fakeReports) MonthlyMovementByLocation(uuid.UUID) ([]repository.MonthlyMovementRow, error) {
	return nil, nil
}
func (f *fakeReports) OverallTotals() ([]repository.OverallTotalRow, error) { return nil, nil }
func (f *fakeReports) DashboardStats() (*repository.DashboardStats, error) {
	f.statCalls++
	return f.stats, nil
}
func (f *fakeReports) RecentMovements(limit int) ([]model.StockMovement, error) { return nil, nil }

func TestInventoryReportScoped(t *testing.T) {
	ledger := newFakeLedger()
	locations := newFakeLocations()
	employees := newFakeEmployees()
	engine := policy.NewEngine(employees, locations)
	svc := NewReportService(&fakeReports{}, ledger, engine, nil, zap.NewNop())

	branch := locations.add("Ikeja Branch")
	other := locations.add("Surulere Branch")
	ledger.seed(newID(), branch.ID, 5, 10)
	ledger.seed(newID(), branch.ID, 80, 10)
	ledger.seed(newID(), other.ID, 2, 10)

	emp := employeeUser()
	employees.Create(&model.Employee{
		UserID:   emp.ID,
		BranchID: &branch.ID,
		Grant:    model.InventoryGrant{CanView: true},
	})

	rows, err := svc.InventoryReport(emp, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	lowCount := 0
	for _, row := range rows {
		assert.Equal(t, branch.ID, row.LocationID)
		if row.IsLow {
			lowCount++
		}
	}
	assert.Equal(t, 1, lowCount)
}

func TestDashboardReadsFreshStatsWithoutCache(t *testing.T) {
	reports := &fakeReports{stats: &repository.DashboardStats{TotalItems: 12, LowStockCount: 3, TotalValuation: 450000}}
	engine := policy.NewEngine(newFakeEmployees(), newFakeLocations())
	svc := NewReportService(reports, newFakeLedger(), engine, nil, zap.NewNop())

	dashboard, err := svc.Dashboard(adminUser())
	require.NoError(t, err)
	assert.Equal(t, int64(12), dashboard.Stats.TotalItems)
	assert.Equal(t, 1, reports.statCalls)
}

func TestReportsRequireReadCapability(t *testing.T) {
	engine := policy.NewEngine(newFakeEmployees(), newFakeLocations())
	svc := NewReportService(&fakeReports{}, newFakeLedger(), engine, nil, zap.NewNop())

	// employee without any grant record
	_, err := svc.MonthlyMovement(employeeUser())
	assert.ErrorIs(t, err, policy.ErrForbidden)

	_, err = svc.Dashboard(employeeUser())
	assert.ErrorIs(t, err, policy.ErrForbidden)
}
