package background

import (
	"context"
	"testing"
	"time"

	"agroledger/internal/caching"
	"agroledger/internal/jobs"
	"agroledger/internal/services"
	"agroledger/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T) (*JobScheduler, caching.CacheService) {
	store := testhelpers.NewMemStore()
	cache := caching.NewLocalCacheService()

	js, err := NewJobScheduler(
		jobs.NewInventoryAlertService(services.NewInventoryService(store, cache)),
		jobs.NewReconciliationService(services.NewLedgerService(store), services.NewCashRegisterService(store, cache)),
		services.NewDashboardService(store, cache),
		Intervals{},
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = js.Stop() })
	return js, cache
}

func TestIntervalsDefaults(t *testing.T) {
	got := Intervals{DashboardWarm: time.Minute}.withDefaults()
	assert.Equal(t, time.Hour, got.LowStock)
	assert.Equal(t, 24*time.Hour, got.Reconciliation)
	assert.Equal(t, time.Minute, got.DashboardWarm)
}

func TestRegistersAllJobs(t *testing.T) {
	js, _ := newTestScheduler(t)

	status := js.GetJobStatus()
	assert.Equal(t, 3, status["total_jobs"])
	assert.Equal(t, []string{DashboardWarmJob, ReconciliationJob, LowStockJob}, status["jobs"])
}

func TestRunNowUnknownJob(t *testing.T) {
	js, _ := newTestScheduler(t)
	assert.Error(t, js.RunNow("does-not-exist"))
}

func TestJobBodies(t *testing.T) {
	js, cache := newTestScheduler(t)

	assert.NoError(t, js.checkLowStock())
	assert.NoError(t, js.reconcile())
	require.NoError(t, js.warmDashboard())

	metrics, err := cache.GetDashboardMetrics(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, metrics)
}
