package core

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

func engineOrder(symbol string, side domain.Side, price, qty int64) *domain.Order {
	o := limitGTC(side, price, qty)
	o.Symbol = symbol
	return o
}

func TestEngineLazyBookCreation(t *testing.T) {
	e := NewMatchingEngine()
	require.Empty(t, e.Symbols())

	_, err := e.Submit("ETH-USD", engineOrder("ETH-USD", domain.Buy, 100, 1))
	require.NoError(t, err)
	require.Equal(t, []string{"ETH-USD"}, e.Symbols())

	// same symbol resolves to the same book
	require.Same(t, e.Book("ETH-USD"), e.Book("ETH-USD"))
}

func TestEngineRoutesBySymbol(t *testing.T) {
	e := NewMatchingEngine()

	_, err := e.Submit("ETH-USD", engineOrder("ETH-USD", domain.Sell, 100, 5))
	require.NoError(t, err)
	_, err = e.Submit("BTC-USD", engineOrder("BTC-USD", domain.Buy, 100, 5))
	require.NoError(t, err)

	// a crossing buy on ETH must not touch the BTC book
	res, err := e.Submit("ETH-USD", engineOrder("ETH-USD", domain.Buy, 100, 5))
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	require.True(t, e.MarketData("BTC-USD").HasBid)
}

func TestEngineCancelRouting(t *testing.T) {
	e := NewMatchingEngine()

	o := engineOrder("ETH-USD", domain.Buy, 100, 5)
	_, err := e.Submit("ETH-USD", o)
	require.NoError(t, err)

	// wrong symbol: not found there
	_, _, ok := e.Cancel("BTC-USD", o.ID)
	require.False(t, ok)

	_, _, ok = e.Cancel("ETH-USD", o.ID)
	require.True(t, ok)
}

func TestEngineReplaceRouting(t *testing.T) {
	e := NewMatchingEngine()

	o := engineOrder("ETH-USD", domain.Buy, 100, 5)
	_, err := e.Submit("ETH-USD", o)
	require.NoError(t, err)

	res, err := e.Replace("ETH-USD", o.ID, decimal.NewFromInt(99), decimal.NewFromInt(3))
	require.NoError(t, err)
	require.True(t, res.Snapshot.BestBidPrice.Equal(decimal.NewFromInt(99)))
}

// Submissions to different symbols proceed concurrently; each book's
// sequence stays gap-free under its own lock.
func TestEnginePerSymbolIsolation(t *testing.T) {
	e := NewMatchingEngine()
	symbols := []string{"BTC-USD", "ETH-USD", "SOL-USD", "ADA-USD"}
	const perSymbol = 200

	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			for i := 0; i < perSymbol; i++ {
				price := int64(90 + i%10)
				_, err := e.Submit(symbol, engineOrder(symbol, domain.Buy, price, 1))
				require.NoError(t, err)
			}
		}(symbol)
	}
	wg.Wait()

	for _, symbol := range symbols {
		depth := e.Depth(symbol, 0)
		total := 0
		for _, lvl := range depth.Bids {
			total += lvl.Orders
		}
		require.Equal(t, perSymbol, total, symbol)
	}
}
