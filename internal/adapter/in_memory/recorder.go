package in_memory

import (
	"context"
	"sync"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
	"github.com/aryan2574/quantis-matching-engine/internal/port"
)

var _ port.Publisher = (*Recorder)(nil)

// Recorder captures published trades and snapshots for assertions.
type Recorder struct {
	mu        sync.Mutex
	trades    []*domain.Trade
	snapshots []*domain.MarketDataSnapshot
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PublishTrades(ctx context.Context, trades []*domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trades = append(r.trades, trades...)
	return nil
}

func (r *Recorder) PublishMarketData(ctx context.Context, snap *domain.MarketDataSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Trades() []*domain.Trade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.Trade(nil), r.trades...)
}

func (r *Recorder) Snapshots() []*domain.MarketDataSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.MarketDataSnapshot(nil), r.snapshots...)
}
