package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aryan2574/quantis-matching-engine/internal/adapter/in_memory"
	"github.com/aryan2574/quantis-matching-engine/internal/core"
	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

type fixture struct {
	svc  *OrderService
	repo *in_memory.MemoryRepo
	cc   *in_memory.Cache
	pub  *in_memory.Recorder
}

func newFixture() *fixture {
	repo := in_memory.NewMemoryRepo()
	cc := in_memory.NewCache()
	pub := in_memory.NewRecorder()
	svc := NewOrderService(core.NewMatchingEngine(), repo, cc, pub, nil)
	return &fixture{svc: svc, repo: repo, cc: cc, pub: pub}
}

func order(symbol string, side domain.Side, price, qty int64) *domain.Order {
	return &domain.Order{
		ID:          uuid.NewString(),
		UserID:      "u1",
		Symbol:      symbol,
		Side:        side,
		Type:        domain.Limit,
		TimeInForce: domain.GTC,
		Price:       decimal.NewFromInt(price),
		Quantity:    decimal.NewFromInt(qty),
	}
}

func TestSubmitPersistsAndPublishes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	maker := order("BTC-USD", domain.Sell, 100, 5)
	_, err := f.svc.SubmitOrder(ctx, maker)
	require.NoError(t, err)

	taker := order("BTC-USD", domain.Buy, 100, 3)
	res, err := f.svc.SubmitOrder(ctx, taker)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)

	// both counterparties persisted with post-match state
	savedMaker, err := f.repo.LoadOrder(ctx, maker.ID)
	require.NoError(t, err)
	require.True(t, savedMaker.Remaining.Equal(decimal.NewFromInt(2)))
	require.Equal(t, domain.PartiallyFilled, savedMaker.Status)

	savedTaker, err := f.repo.LoadOrder(ctx, taker.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Filled, savedTaker.Status)

	trades, err := f.repo.LoadTradesForOrder(ctx, taker.ID)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	require.Len(t, f.pub.Trades(), 1)
	require.Len(t, f.pub.Snapshots(), 2) // one per submit

	cached, err := f.cc.GetMarketData(ctx, "BTC-USD")
	require.NoError(t, err)
	require.NotNil(t, cached)
	require.True(t, cached.HasAsk)
}

func TestSubmitAssignsID(t *testing.T) {
	f := newFixture()

	o := order("BTC-USD", domain.Buy, 100, 1)
	o.ID = ""
	res, err := f.svc.SubmitOrder(context.Background(), o)
	require.NoError(t, err)
	require.NotEmpty(t, res.Order.ID)
}

func TestSubmitRejectionSkipsDownstream(t *testing.T) {
	f := newFixture()

	bad := order("BTC-USD", domain.Buy, 100, 0)
	_, err := f.svc.SubmitOrder(context.Background(), bad)
	require.ErrorIs(t, err, core.ErrInvalidQuantity)
	require.Empty(t, f.pub.Snapshots())
}

func TestCancelPersistsState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o := order("BTC-USD", domain.Buy, 100, 5)
	_, err := f.svc.SubmitOrder(ctx, o)
	require.NoError(t, err)

	ok, err := f.svc.CancelOrder(ctx, "BTC-USD", o.ID)
	require.NoError(t, err)
	require.True(t, ok)

	saved, err := f.repo.LoadOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Cancelled, saved.Status)

	ok, err = f.svc.CancelOrder(ctx, "BTC-USD", o.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRestoreOpenOrdersRebuildsBook(t *testing.T) {
	seed := newFixture()
	ctx := context.Background()

	_, err := seed.svc.SubmitOrder(ctx, order("BTC-USD", domain.Buy, 99, 5))
	require.NoError(t, err)
	_, err = seed.svc.SubmitOrder(ctx, order("BTC-USD", domain.Sell, 101, 3))
	require.NoError(t, err)
	_, err = seed.svc.SubmitOrder(ctx, order("ETH-USD", domain.Buy, 50, 2))
	require.NoError(t, err)

	// fresh process: empty engine, same repository
	restored := NewOrderService(core.NewMatchingEngine(), seed.repo, nil, nil, nil)
	require.NoError(t, restored.RestoreOpenOrders(ctx))

	btc := restored.MarketData("BTC-USD")
	require.True(t, btc.HasBid)
	require.True(t, btc.BestBidPrice.Equal(decimal.NewFromInt(99)))
	require.True(t, btc.HasAsk)
	require.True(t, btc.BestAskPrice.Equal(decimal.NewFromInt(101)))

	eth := restored.MarketData("ETH-USD")
	require.True(t, eth.HasBid)
	require.True(t, eth.BestBidQuantity.Equal(decimal.NewFromInt(2)))
}

func TestRestorePreservesTimePriority(t *testing.T) {
	seed := newFixture()
	ctx := context.Background()

	first := order("BTC-USD", domain.Buy, 100, 1)
	second := order("BTC-USD", domain.Buy, 100, 1)
	_, err := seed.svc.SubmitOrder(ctx, first)
	require.NoError(t, err)
	_, err = seed.svc.SubmitOrder(ctx, second)
	require.NoError(t, err)

	restored := NewOrderService(core.NewMatchingEngine(), seed.repo, nil, nil, nil)
	require.NoError(t, restored.RestoreOpenOrders(ctx, "BTC-USD"))

	res, err := restored.SubmitOrder(ctx, order("BTC-USD", domain.Sell, 100, 1))
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	require.Equal(t, first.ID, res.Trades[0].MakerOrderID)
}
