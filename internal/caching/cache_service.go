package caching

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"agroledger/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	inventoryKey   = "agroledger:inventory"
	dashboardKey   = "agroledger:dashboard"
	cashBalanceKey = "agroledger:cash_balance"
)

// CacheService caches read models derived from the ledger and holds auth tokens.
// A nil result with a nil error is a cache miss.
type CacheService interface {
	GetInventory(ctx context.Context) ([]*models.InventoryView, error)
	SetInventory(ctx context.Context, views []*models.InventoryView, ttl time.Duration) error

	GetDashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error)
	SetDashboardMetrics(ctx context.Context, metrics *models.DashboardMetrics, ttl time.Duration) error

	GetCashBalance(ctx context.Context) (*decimal.Decimal, error)
	SetCashBalance(ctx context.Context, balance decimal.Decimal, ttl time.Duration) error

	// InvalidateBookkeeping drops every cached view that a committed write can change
	InvalidateBookkeeping(ctx context.Context) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Printf("Redis connection established at %s", parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetInventory(ctx context.Context) ([]*models.InventoryView, error) {
	var views []*models.InventoryView
	found, err := r.getJSON(ctx, inventoryKey, &views)
	if err != nil || !found {
		return nil, err
	}
	return views, nil
}

func (r *redisCacheService) SetInventory(ctx context.Context, views []*models.InventoryView, ttl time.Duration) error {
	return r.setJSON(ctx, inventoryKey, views, ttl)
}

func (r *redisCacheService) GetDashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	var metrics models.DashboardMetrics
	found, err := r.getJSON(ctx, dashboardKey, &metrics)
	if err != nil || !found {
		return nil, err
	}
	return &metrics, nil
}

func (r *redisCacheService) SetDashboardMetrics(ctx context.Context, metrics *models.DashboardMetrics, ttl time.Duration) error {
	return r.setJSON(ctx, dashboardKey, metrics, ttl)
}

func (r *redisCacheService) GetCashBalance(ctx context.Context) (*decimal.Decimal, error) {
	val, err := r.client.Get(ctx, cashBalanceKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	balance, err := decimal.NewFromString(val)
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *redisCacheService) SetCashBalance(ctx context.Context, balance decimal.Decimal, ttl time.Duration) error {
	return r.client.Set(ctx, cashBalanceKey, balance.String(), ttl).Err()
}

func (r *redisCacheService) InvalidateBookkeeping(ctx context.Context) error {
	return r.client.Del(ctx, inventoryKey, dashboardKey, cashBalanceKey).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
