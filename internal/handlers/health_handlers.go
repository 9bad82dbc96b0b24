package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"agroledger/internal/caching"
	"agroledger/internal/services"

	"github.com/labstack/echo/v4"
)

var errBucketMissing = errors.New("attachment bucket does not exist")

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     caching.CacheService
	minioSvc  services.MinioService // nil when attachments are disabled
	bucket    string
	version   string
	startedAt time.Time
}

func NewHealthHandlers(db Pinger, cache caching.CacheService, minioSvc services.MinioService, bucket, version string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		minioSvc:  minioSvc,
		bucket:    bucket,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

type componentCheck struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// HealthCheck is the liveness probe
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck probes the database, the cache and object storage.
// Any failing dependency makes the overall status "degraded".
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Version:   h.version,
	}

	checks := map[string]componentCheck{
		"database": h.probe(ctx, h.db.Ping),
		"cache":    h.probe(ctx, h.cache.Ping),
	}
	if h.minioSvc != nil {
		checks["storage"] = h.probe(ctx, h.checkStorage)
	} else {
		checks["storage"] = componentCheck{Status: "disabled"}
	}

	for name, check := range checks {
		health.Services[name] = check.Status
		if check.Status == "unhealthy" {
			health.Status = "degraded"
		}
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, map[string]interface{}{
		"status":     health.Status,
		"timestamp":  health.Timestamp,
		"uptime":     health.Uptime,
		"version":    health.Version,
		"goroutines": runtime.NumGoroutine(),
		"services":   health.Services,
		"checks":     checks,
	})
}

func (h *HealthHandlers) probe(ctx context.Context, fn func(context.Context) error) componentCheck {
	start := time.Now()
	err := fn(ctx)
	check := componentCheck{Status: "healthy", LatencyMS: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = "unhealthy"
		check.Message = err.Error()
	}
	return check
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	exists, err := h.minioSvc.BucketExists(ctx, h.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return errBucketMissing
	}
	return nil
}
