package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"branchstock/internal/repository"
)

func newTestCache(t *testing.T) *ReportCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewReportCache(client, zap.NewNop())
}

func TestDashboardRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, hit := c.GetDashboardStats(ctx)
	assert.False(t, hit)

	c.SetDashboardStats(ctx, &repository.DashboardStats{TotalItems: 7, LowStockCount: 2})
	stats, hit := c.GetDashboardStats(ctx)
	require.True(t, hit)
	assert.Equal(t, int64(7), stats.TotalItems)
}

func TestInvalidateDropsDashboardAndBadgeCounts(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetDashboardStats(ctx, &repository.DashboardStats{TotalItems: 7})
	c.SetLowStockCount(ctx, "all", 4)
	c.SetLowStockCount(ctx, "3f1c9a2e", 1)

	count, hit := c.GetLowStockCount(ctx, "all")
	require.True(t, hit)
	require.Equal(t, int64(4), count)

	c.Invalidate(ctx)

	_, hit = c.GetDashboardStats(ctx)
	assert.False(t, hit)
	_, hit = c.GetLowStockCount(ctx, "all")
	assert.False(t, hit, "badge counters must not survive a stock mutation")
	_, hit = c.GetLowStockCount(ctx, "3f1c9a2e")
	assert.False(t, hit)
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *ReportCache
	ctx := context.Background()

	_, hit := c.GetDashboardStats(ctx)
	assert.False(t, hit)
	_, hit = c.GetLowStockCount(ctx, "all")
	assert.False(t, hit)
	c.SetDashboardStats(ctx, &repository.DashboardStats{})
	c.SetLowStockCount(ctx, "all", 1)
	c.Invalidate(ctx)
}
