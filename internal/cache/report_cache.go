package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"branchstock/internal/repository"
)

const (
	dashboardKey     = "reports:dashboard"
	lowStockCountKey = "reports:lowstock:count:%s"
	dashboardTTL     = 30 * time.Second
	lowStockCountTTL = 15 * time.Second
	cacheCallTimeout = 500 * time.Millisecond
)

// ReportCache is a best-effort read-side cache. Every method tolerates a nil
// receiver or a missing redis backend: a cache problem is logged at debug
// level and reported as a miss, never as a failure.
type ReportCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewReportCache(client *redis.Client, log *zap.Logger) *ReportCache {
	if client == nil {
		return nil
	}
	return &ReportCache{client: client, log: log}
}

func (c *ReportCache) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, bool) {
	if c == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, dashboardKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("dashboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var stats repository.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *ReportCache) SetDashboardStats(ctx context.Context, stats *repository.DashboardStats) {
	if c == nil || stats == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, dashboardKey, raw, dashboardTTL).Err(); err != nil {
		c.log.Debug("dashboard cache write failed", zap.Error(err))
	}
}

// GetLowStockCount caches the alert-badge total per scope key.
func (c *ReportCache) GetLowStockCount(ctx context.Context, scopeKey string) (int64, bool) {
	if c == nil {
		return 0, false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()

	count, err := c.client.Get(ctx, fmt.Sprintf(lowStockCountKey, scopeKey)).Int64()
	if err != nil {
		return 0, false
	}
	return count, true
}

func (c *ReportCache) SetLowStockCount(ctx context.Context, scopeKey string, count int64) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()

	key := fmt.Sprintf(lowStockCountKey, scopeKey)
	if err := c.client.Set(ctx, key, count, lowStockCountTTL).Err(); err != nil {
		c.log.Debug("low-stock cache write failed", zap.Error(err))
	}
}

// Invalidate drops the dashboard entry and every low-stock badge counter
// after a write that changes stock.
func (c *ReportCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheCallTimeout)
	defer cancel()

	keys := []string{dashboardKey}
	iter := c.client.Scan(ctx, 0, fmt.Sprintf(lowStockCountKey, "*"), 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Debug("report cache key scan failed", zap.Error(err))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Debug("report cache invalidation failed", zap.Error(err))
	}
}
