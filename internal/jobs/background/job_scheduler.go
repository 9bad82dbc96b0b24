package background

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"agroledger/internal/jobs"
	"agroledger/internal/services"

	"github.com/go-co-op/gocron/v2"
)

const (
	LowStockJob       = "low-stock-alerts"
	ReconciliationJob = "ledger-reconciliation"
	DashboardWarmJob  = "dashboard-cache-warm"
)

// Intervals configures how often each job runs; zero values fall back to defaults
type Intervals struct {
	LowStock       time.Duration
	Reconciliation time.Duration
	DashboardWarm  time.Duration
}

func (i Intervals) withDefaults() Intervals {
	if i.LowStock <= 0 {
		i.LowStock = time.Hour
	}
	if i.Reconciliation <= 0 {
		i.Reconciliation = 24 * time.Hour
	}
	if i.DashboardWarm <= 0 {
		i.DashboardWarm = 5 * time.Minute
	}
	return i
}

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler  gocron.Scheduler
	alerts     *jobs.InventoryAlertService
	reconciler *jobs.ReconciliationService
	dashboard  services.DashboardService
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(alerts *jobs.InventoryAlertService, reconciler *jobs.ReconciliationService,
	dashboard services.DashboardService, intervals Intervals) (*JobScheduler, error) {

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		alerts:     alerts,
		reconciler: reconciler,
		dashboard:  dashboard,
		jobs:       make(map[string]gocron.Job),
	}

	if err := js.registerJobs(intervals.withDefaults()); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(intervals Intervals) error {
	definitions := []struct {
		name     string
		interval time.Duration
		task     func() error
	}{
		{LowStockJob, intervals.LowStock, js.checkLowStock},
		{ReconciliationJob, intervals.Reconciliation, js.reconcile},
		{DashboardWarmJob, intervals.DashboardWarm, js.warmDashboard},
	}

	for _, d := range definitions {
		job, err := js.scheduler.NewJob(
			gocron.DurationJob(d.interval),
			gocron.NewTask(d.task),
			gocron.WithName(d.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to create %s job: %w", d.name, err)
		}
		js.jobs[d.name] = job
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
	return nil
}

func (js *JobScheduler) checkLowStock() error {
	return js.alerts.ScheduledLowStockCheck(context.Background())
}

func (js *JobScheduler) reconcile() error {
	_, err := js.reconciler.Reconcile(context.Background())
	return err
}

func (js *JobScheduler) warmDashboard() error {
	if _, err := js.dashboard.Refresh(context.Background()); err != nil {
		log.Printf("WARN: dashboard cache warm failed: %v", err)
		return err
	}
	return nil
}

// RunNow triggers a registered job outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job.RunNow()
}

// GetJobStatus returns the registered job names and their next run times
func (js *JobScheduler) GetJobStatus() map[string]interface{} {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	nextRuns := make(map[string]string, len(js.jobs))
	for name, job := range js.jobs {
		names = append(names, name)
		if next, err := job.NextRun(); err == nil && !next.IsZero() {
			nextRuns[name] = next.UTC().Format(time.RFC3339)
		}
	}
	sort.Strings(names)

	return map[string]interface{}{
		"total_jobs": len(names),
		"jobs":       names,
		"next_runs":  nextRuns,
	}
}
