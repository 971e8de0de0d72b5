package port

import (
	"context"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

// Repository persists orders and trades downstream of matching. All
// writes happen after the book lock is released; implementations own
// their own transactional guarantees.
type Repository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	// SaveExecution stores every order touched by one matching call
	// together with the trades it produced, atomically.
	SaveExecution(ctx context.Context, orders []*domain.Order, trades []*domain.Trade) error
	LoadOrder(ctx context.Context, orderID string) (*domain.Order, error)
	LoadTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error)
	// LoadOpenOrders returns resting orders for a symbol in time
	// priority order, used for startup replay.
	LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error)
	ListSymbols(ctx context.Context) ([]string, error)
}
