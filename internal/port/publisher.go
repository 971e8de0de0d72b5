package port

import (
	"context"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

// Publisher forwards matching output to the message bus. Publication is
// best-effort from the engine's point of view; retry and backoff belong
// to the transport.
type Publisher interface {
	PublishTrades(ctx context.Context, trades []*domain.Trade) error
	PublishMarketData(ctx context.Context, snap *domain.MarketDataSnapshot) error
	Close() error
}
