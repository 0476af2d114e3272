package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"branchstock/internal/cache"
	"branchstock/internal/model"
	"branchstock/internal/policy"
	"branchstock/internal/repository"
)

// LowStockEntry is one alert row as the client renders it.
type LowStockEntry struct {
	Record    model.InventoryRecord `json:"inventory"`
	Threshold int                   `json:"threshold"`
	Deficit   int                   `json:"deficit"`
}

type LowStockList struct {
	Entries []LowStockEntry `json:"alerts"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

// AlertService serves the low-stock views, scoped to the caller's branches.
type AlertService interface {
	ListLowStock(actor *model.User, requestedLocation *uuid.UUID, page, limit int) (*LowStockList, error)
	// BadgeCount is the unpaginated total of low rows in the caller's scope,
	// served from cache when fresh.
	BadgeCount(actor *model.User) (int64, error)
}

type alertService struct {
	ledger repository.LedgerRepository
	engine *policy.Engine
	cache  *cache.ReportCache
	log    *zap.Logger
}

func NewAlertService(ledger repository.LedgerRepository, engine *policy.Engine, reportCache *cache.ReportCache, log *zap.Logger) AlertService {
	return &alertService{ledger: ledger, engine: engine, cache: reportCache, log: log}
}

func (s *alertService) ListLowStock(actor *model.User, requestedLocation *uuid.UUID, page, limit int) (*LowStockList, error) {
	scope, err := s.engine.ResolveScope(actor, requestedLocation)
	if err != nil {
		return nil, err
	}

	pageOut, err := s.ledger.FindLowStock(scope.LocationIDs, scope.All, page, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LowStockEntry, len(pageOut.Records))
	for i, rec := range pageOut.Records {
		threshold := rec.EffectiveThreshold()
		entries[i] = LowStockEntry{
			Record:    rec,
			Threshold: threshold,
			Deficit:   threshold - rec.Quantity,
		}
	}
	return &LowStockList{Entries: entries, Total: pageOut.Total, Page: page, Limit: limit}, nil
}

func (s *alertService) BadgeCount(actor *model.User) (int64, error) {
	scope, err := s.engine.ResolveScope(actor, nil)
	if err != nil {
		return 0, err
	}

	key := scopeKey(scope)
	if count, ok := s.cache.GetLowStockCount(context.Background(), key); ok {
		return count, nil
	}

	pageOut, err := s.ledger.FindLowStock(scope.LocationIDs, scope.All, 1, 1)
	if err != nil {
		return 0, err
	}
	s.cache.SetLowStockCount(context.Background(), key, pageOut.Total)
	return pageOut.Total, nil
}

// scopeKey renders a scope as a stable cache-key fragment so callers with the
// same branch visibility share one cached badge count.
func scopeKey(scope policy.Scope) string {
	if scope.All {
		return "all"
	}
	if len(scope.LocationIDs) == 0 {
		return "none"
	}
	ids := make([]string, len(scope.LocationIDs))
	for i, id := range scope.LocationIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
