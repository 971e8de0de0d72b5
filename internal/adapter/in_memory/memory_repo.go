package in_memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
	"github.com/aryan2574/quantis-matching-engine/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo is the map-backed Repository used by tests and repo-less
// runs. Stored orders are copies so later book mutation doesn't leak in.
type MemoryRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	trades []domain.Trade
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{orders: make(map[string]domain.Order)}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *MemoryRepo) SaveExecution(ctx context.Context, orders []*domain.Order, trades []*domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		r.orders[o.ID] = *o
	}
	for _, t := range trades {
		r.trades = append(r.trades, *t)
	}
	return nil
}

func (r *MemoryRepo) LoadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: not found", orderID)
	}
	return &o, nil
}

func (r *MemoryRepo) LoadTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Trade
	for i := range r.trades {
		t := r.trades[i]
		if t.MakerOrderID == orderID || t.TakerOrderID == orderID {
			res = append(res, &t)
		}
	}
	return res, nil
}

func (r *MemoryRepo) LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Order
	for _, o := range r.orders {
		if o.Symbol == symbol && !o.IsClosed() && o.Remaining.IsPositive() {
			c := o
			res = append(res, &c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Sequence < res[j].Sequence })
	return res, nil
}

func (r *MemoryRepo) ListSymbols(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	var res []string
	for _, o := range r.orders {
		if _, ok := seen[o.Symbol]; !ok {
			seen[o.Symbol] = struct{}{}
			res = append(res, o.Symbol)
		}
	}
	sort.Strings(res)
	return res, nil
}
