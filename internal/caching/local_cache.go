package caching

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"agroledger/internal/models"

	"github.com/shopspring/decimal"
)

type localItem struct {
	value     []byte
	expiresAt time.Time
}

// localCacheService keeps everything in process memory. It backs the app when
// REDIS_ADDR is empty and is used by tests.
type localCacheService struct {
	mu    sync.Mutex
	items map[string]localItem
	now   func() time.Time
}

func NewLocalCacheService() CacheService {
	return &localCacheService{items: make(map[string]localItem), now: time.Now}
}

func (l *localCacheService) get(key string) ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[key]
	if !ok {
		return nil, false
	}
	if !item.expiresAt.IsZero() && l.now().After(item.expiresAt) {
		delete(l.items, key)
		return nil, false
	}
	return item.value, true
}

func (l *localCacheService) set(key string, value []byte, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := localItem{value: value}
	if ttl > 0 {
		item.expiresAt = l.now().Add(ttl)
	}
	l.items[key] = item
}

func (l *localCacheService) del(keys ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		delete(l.items, k)
	}
}

func (l *localCacheService) getJSON(key string, dest any) (bool, error) {
	data, ok := l.get(key)
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (l *localCacheService) setJSON(key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	l.set(key, data, ttl)
	return nil
}

func (l *localCacheService) GetInventory(_ context.Context) ([]*models.InventoryView, error) {
	var views []*models.InventoryView
	found, err := l.getJSON(inventoryKey, &views)
	if err != nil || !found {
		return nil, err
	}
	return views, nil
}

func (l *localCacheService) SetInventory(_ context.Context, views []*models.InventoryView, ttl time.Duration) error {
	return l.setJSON(inventoryKey, views, ttl)
}

func (l *localCacheService) GetDashboardMetrics(_ context.Context) (*models.DashboardMetrics, error) {
	var metrics models.DashboardMetrics
	found, err := l.getJSON(dashboardKey, &metrics)
	if err != nil || !found {
		return nil, err
	}
	return &metrics, nil
}

func (l *localCacheService) SetDashboardMetrics(_ context.Context, metrics *models.DashboardMetrics, ttl time.Duration) error {
	return l.setJSON(dashboardKey, metrics, ttl)
}

func (l *localCacheService) GetCashBalance(_ context.Context) (*decimal.Decimal, error) {
	data, ok := l.get(cashBalanceKey)
	if !ok {
		return nil, nil
	}
	balance, err := decimal.NewFromString(string(data))
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (l *localCacheService) SetCashBalance(_ context.Context, balance decimal.Decimal, ttl time.Duration) error {
	l.set(cashBalanceKey, []byte(balance.String()), ttl)
	return nil
}

func (l *localCacheService) InvalidateBookkeeping(_ context.Context) error {
	l.del(inventoryKey, dashboardKey, cashBalanceKey)
	return nil
}

func (l *localCacheService) SetString(_ context.Context, key string, value string, ttl time.Duration) error {
	l.set(key, []byte(value), ttl)
	return nil
}

func (l *localCacheService) GetString(_ context.Context, key string) (string, error) {
	data, ok := l.get(key)
	if !ok {
		return "", nil
	}
	return string(data), nil
}

func (l *localCacheService) Delete(_ context.Context, key string) error {
	l.del(key)
	return nil
}

func (l *localCacheService) Ping(_ context.Context) error {
	return nil
}
