package core

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

// MatchingEngine routes operations to per-symbol books. Books are
// created lazily on first use; symbol validation belongs upstream.
// Each book carries its own lock, so operations on different symbols
// never contend.
type MatchingEngine struct {
	mu    sync.RWMutex
	books map[string]*OrderBook
}

func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{books: make(map[string]*OrderBook)}
}

// Book returns the order book for symbol, creating it if absent.
func (e *MatchingEngine) Book(symbol string) *OrderBook {
	e.mu.RLock()
	b, ok := e.books[symbol]
	e.mu.RUnlock()
	if ok {
		return b
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if b, ok = e.books[symbol]; ok {
		return b
	}
	b = NewOrderBook(symbol)
	e.books[symbol] = b
	return b
}

func (e *MatchingEngine) Submit(symbol string, o *domain.Order) (*MatchResult, error) {
	return e.Book(symbol).Submit(o)
}

func (e *MatchingEngine) Cancel(symbol, orderID string) (*domain.Order, *domain.MarketDataSnapshot, bool) {
	return e.Book(symbol).Cancel(orderID)
}

func (e *MatchingEngine) Replace(symbol, orderID string, price, qty decimal.Decimal) (*MatchResult, error) {
	return e.Book(symbol).Replace(orderID, price, qty)
}

func (e *MatchingEngine) MarketData(symbol string) *domain.MarketDataSnapshot {
	return e.Book(symbol).MarketData()
}

func (e *MatchingEngine) Depth(symbol string, maxLevels int) *domain.DepthSnapshot {
	return e.Book(symbol).Depth(maxLevels)
}

// Symbols lists every symbol with a live book.
func (e *MatchingEngine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.books))
	for s := range e.books {
		out = append(out, s)
	}
	return out
}
