package core

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

// MatchResult is everything one mutating call produced. Trades and the
// snapshot are handed to the caller for downstream publication; Makers
// lists the resting orders whose state changed so the caller can persist
// them alongside the taker.
type MatchResult struct {
	Order    *domain.Order
	Trades   []*domain.Trade
	Makers   []*domain.Order
	Snapshot *domain.MarketDataSnapshot
}

// OrderBook holds both sides of one symbol and runs price-time priority
// matching. All mutation happens under mu; top-of-book reads go through
// an atomically swapped immutable snapshot and never take the lock.
type OrderBook struct {
	symbol string

	mu      sync.Mutex
	bids    *bookSide
	asks    *bookSide
	resting map[string]*levelNode
	seq     uint64

	lastTradePrice decimal.Decimal
	lastTradeQty   decimal.Decimal
	lastTradeAt    time.Time
	hasLastTrade   bool

	snapshot atomic.Pointer[domain.MarketDataSnapshot]
}

func NewOrderBook(symbol string) *OrderBook {
	b := &OrderBook{
		symbol:  symbol,
		bids:    newBookSide(true),
		asks:    newBookSide(false),
		resting: make(map[string]*levelNode),
	}
	b.snapshot.Store(&domain.MarketDataSnapshot{
		Symbol:    symbol,
		Timestamp: time.Now(),
	})
	return b
}

func (b *OrderBook) Symbol() string { return b.symbol }

// Submit matches the order against the opposing side and applies the
// resting decision for its time-in-force. It returns the produced
// trades and the snapshot recomputed once after all fills. A FOK order
// that cannot fill completely is killed: zero trades, zero mutation,
// Status CANCELLED on the returned order.
func (b *OrderBook) Submit(o *domain.Order) (*MatchResult, error) {
	if err := b.validate(o); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submitLocked(o)
}

func (b *OrderBook) submitLocked(o *domain.Order) (*MatchResult, error) {
	if _, ok := b.resting[o.ID]; ok {
		return nil, ErrDuplicateOrder
	}

	now := time.Now()
	o.Remaining = o.Quantity
	o.Status = domain.Open
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	if o.TimeInForce == domain.FOK && !b.fillableLocked(o) {
		o.Status = domain.Cancelled
		return &MatchResult{Order: o, Snapshot: b.snapshot.Load()}, nil
	}

	opposite := b.asks
	if o.Side == domain.Sell {
		opposite = b.bids
	}

	var trades []*domain.Trade
	var makers []*domain.Order
	for o.Remaining.IsPositive() {
		lvl := opposite.best()
		if lvl == nil || !marketable(o, lvl.price) {
			break
		}

		head := lvl.head
		maker := head.order
		fill := decimal.Min(o.Remaining, maker.Remaining)

		trades = append(trades, &domain.Trade{
			ID:           uuid.NewString(),
			Symbol:       b.symbol,
			Price:        lvl.price,
			Quantity:     fill,
			MakerOrderID: maker.ID,
			TakerOrderID: o.ID,
			MakerUserID:  maker.UserID,
			TakerUserID:  o.UserID,
			Timestamp:    now,
		})
		makers = append(makers, maker)

		o.Remaining = o.Remaining.Sub(fill)
		maker.Remaining = maker.Remaining.Sub(fill)
		maker.UpdatedAt = now
		lvl.reduce(fill)

		b.lastTradePrice = lvl.price
		b.lastTradeQty = fill
		b.lastTradeAt = now
		b.hasLastTrade = true

		if maker.Remaining.IsZero() {
			maker.Status = domain.Filled
			b.removeNodeLocked(head)
		} else {
			maker.Status = domain.PartiallyFilled
		}
	}

	switch {
	case o.Remaining.IsZero():
		o.Status = domain.Filled
	case o.Type == domain.Limit && o.TimeInForce == domain.GTC:
		b.restLocked(o)
		if len(trades) > 0 {
			o.Status = domain.PartiallyFilled
		}
	default:
		// IOC remainder and marketable (MARKET) remainder never rest.
		if len(trades) > 0 {
			o.Status = domain.PartiallyFilled
		} else {
			o.Status = domain.Cancelled
		}
	}

	b.assertUncrossedLocked()

	snap := b.computeSnapshotLocked()
	b.snapshot.Store(snap)

	return &MatchResult{Order: o, Trades: trades, Makers: makers, Snapshot: snap}, nil
}

// Cancel removes a resting order. It reports false for unknown or
// already-closed orders; that outcome is expected, not an error.
func (b *OrderBook) Cancel(orderID string) (*domain.Order, *domain.MarketDataSnapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.resting[orderID]
	if !ok {
		return nil, b.snapshot.Load(), false
	}
	o := n.order
	o.Status = domain.Cancelled
	o.UpdatedAt = time.Now()
	b.removeNodeLocked(n)

	snap := b.computeSnapshotLocked()
	b.snapshot.Store(snap)
	return o, snap, true
}

// Replace cancels a resting order and re-enters it as a GTC limit at
// the new price and quantity. The order keeps its ID but loses time
// priority and may execute immediately if the new price crosses.
func (b *OrderBook) Replace(orderID string, price, qty decimal.Decimal) (*MatchResult, error) {
	if !qty.IsPositive() {
		return nil, ErrInvalidQuantity
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.resting[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	prev := n.order
	b.removeNodeLocked(n)

	next := &domain.Order{
		ID:          prev.ID,
		UserID:      prev.UserID,
		Symbol:      prev.Symbol,
		Side:        prev.Side,
		Type:        domain.Limit,
		TimeInForce: domain.GTC,
		Price:       price,
		Quantity:    qty,
		CreatedAt:   prev.CreatedAt,
	}
	return b.submitLocked(next)
}

// MarketData returns the current published snapshot without locking.
func (b *OrderBook) MarketData() *domain.MarketDataSnapshot {
	return b.snapshot.Load()
}

func (b *OrderBook) BestBid() (decimal.Decimal, bool) {
	s := b.snapshot.Load()
	return s.BestBidPrice, s.HasBid
}

func (b *OrderBook) BestAsk() (decimal.Decimal, bool) {
	s := b.snapshot.Load()
	return s.BestAskPrice, s.HasAsk
}

func (b *OrderBook) LastPrice() (decimal.Decimal, bool) {
	s := b.snapshot.Load()
	return s.LastTradePrice, s.HasLastTrade
}

func (b *OrderBook) Spread() (decimal.Decimal, bool) {
	return b.snapshot.Load().Spread()
}

// Depth aggregates up to maxLevels price levels per side, best first.
// Pass maxLevels <= 0 for the whole book.
func (b *OrderBook) Depth(maxLevels int) *domain.DepthSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return &domain.DepthSnapshot{
		Symbol:    b.symbol,
		Bids:      depthLevels(b.bids, maxLevels),
		Asks:      depthLevels(b.asks, maxLevels),
		Timestamp: time.Now(),
	}
}

func depthLevels(side *bookSide, maxLevels int) []domain.DepthLevel {
	n := len(side.levels)
	if maxLevels > 0 && maxLevels < n {
		n = maxLevels
	}
	out := make([]domain.DepthLevel, 0, n)
	for _, lvl := range side.levels[:n] {
		out = append(out, domain.DepthLevel{
			Price:    lvl.price,
			Quantity: lvl.totalQty,
			Orders:   lvl.orders,
		})
	}
	return out
}

func (b *OrderBook) validate(o *domain.Order) error {
	if o.Symbol != b.symbol {
		return ErrSymbolMismatch
	}
	switch o.Side {
	case domain.Buy, domain.Sell:
	default:
		return ErrInvalidSide
	}
	switch o.Type {
	case domain.Limit, domain.Market:
	default:
		return ErrInvalidType
	}
	if o.TimeInForce == "" {
		o.TimeInForce = domain.GTC
	}
	switch o.TimeInForce {
	case domain.GTC, domain.IOC, domain.FOK:
	default:
		return ErrInvalidTimeInForce
	}
	if !o.Quantity.IsPositive() {
		return ErrInvalidQuantity
	}
	if o.Type == domain.Limit && !o.Price.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

// fillableLocked is the FOK dry run: walk the opposing marketable levels
// summing available quantity, touching nothing.
func (b *OrderBook) fillableLocked(o *domain.Order) bool {
	opposite := b.asks
	if o.Side == domain.Sell {
		opposite = b.bids
	}
	need := o.Quantity
	for _, lvl := range opposite.levels {
		if !marketable(o, lvl.price) {
			break
		}
		need = need.Sub(lvl.totalQty)
		if !need.IsPositive() {
			return true
		}
	}
	return false
}

// marketable reports whether the taker crosses a level at price.
func marketable(o *domain.Order, price decimal.Decimal) bool {
	if o.Type == domain.Market {
		return true
	}
	if o.Side == domain.Buy {
		return o.Price.GreaterThanOrEqual(price)
	}
	return o.Price.LessThanOrEqual(price)
}

// restLocked places the remainder at the tail of its price level,
// assigning the next sequence number for this symbol.
func (b *OrderBook) restLocked(o *domain.Order) {
	b.seq++
	o.Sequence = b.seq
	side := b.bids
	if o.Side == domain.Sell {
		side = b.asks
	}
	lvl := side.getOrCreate(o.Price)
	b.resting[o.ID] = lvl.enqueue(o)
}

func (b *OrderBook) removeNodeLocked(n *levelNode) {
	lvl := n.level
	lvl.unlink(n)
	delete(b.resting, n.order.ID)
	if lvl.empty() {
		side := b.bids
		if n.order.Side == domain.Sell {
			side = b.asks
		}
		side.removeLevel(lvl)
	}
}

// assertUncrossedLocked panics if a matching pass left bestBid >= bestAsk.
// A crossed book corrupts every subsequent match, so this is fatal.
func (b *OrderBook) assertUncrossedLocked() {
	bid := b.bids.best()
	ask := b.asks.best()
	if bid != nil && ask != nil && bid.price.GreaterThanOrEqual(ask.price) {
		panic(fmt.Sprintf("orderbook %s crossed: bid %s >= ask %s",
			b.symbol, bid.price, ask.price))
	}
}

func (b *OrderBook) computeSnapshotLocked() *domain.MarketDataSnapshot {
	snap := &domain.MarketDataSnapshot{
		Symbol:            b.symbol,
		LastTradePrice:    b.lastTradePrice,
		LastTradeQuantity: b.lastTradeQty,
		LastTradeAt:       b.lastTradeAt,
		HasLastTrade:      b.hasLastTrade,
		Timestamp:         time.Now(),
	}
	if bid := b.bids.best(); bid != nil {
		snap.BestBidPrice = bid.price
		snap.BestBidQuantity = bid.totalQty
		snap.HasBid = true
	}
	if ask := b.asks.best(); ask != nil {
		snap.BestAskPrice = ask.price
		snap.BestAskQuantity = ask.totalQty
		snap.HasAsk = true
	}
	return snap
}
