package port

import (
	"context"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

// Cache keeps the latest market-data snapshot per symbol for consumers
// outside this process.
type Cache interface {
	SetMarketData(ctx context.Context, symbol string, snap *domain.MarketDataSnapshot) error
	GetMarketData(ctx context.Context, symbol string) (*domain.MarketDataSnapshot, error)
	Invalidate(ctx context.Context, symbol string) error
}
