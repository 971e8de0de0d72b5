package in_memory

import (
	"context"
	"sync"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
	"github.com/aryan2574/quantis-matching-engine/internal/port"
)

var _ port.Cache = (*Cache)(nil)

type Cache struct {
	mu    sync.Mutex
	store map[string]*domain.MarketDataSnapshot
}

func NewCache() *Cache {
	return &Cache{store: make(map[string]*domain.MarketDataSnapshot)}
}

func (c *Cache) SetMarketData(ctx context.Context, symbol string, snap *domain.MarketDataSnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[symbol] = snap
	return nil
}

func (c *Cache) GetMarketData(ctx context.Context, symbol string) (*domain.MarketDataSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[symbol], nil
}

func (c *Cache) Invalidate(ctx context.Context, symbol string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, symbol)
	return nil
}
