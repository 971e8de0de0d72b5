package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketDataSnapshot is the top-of-book view published after every
// mutating book operation. Instances are immutable once published;
// readers observe either the previous or the next complete snapshot.
type MarketDataSnapshot struct {
	Symbol            string          `json:"symbol"`
	BestBidPrice      decimal.Decimal `json:"best_bid_price"`
	BestBidQuantity   decimal.Decimal `json:"best_bid_quantity"`
	BestAskPrice      decimal.Decimal `json:"best_ask_price"`
	BestAskQuantity   decimal.Decimal `json:"best_ask_quantity"`
	HasBid            bool            `json:"has_bid"`
	HasAsk            bool            `json:"has_ask"`
	LastTradePrice    decimal.Decimal `json:"last_trade_price"`
	LastTradeQuantity decimal.Decimal `json:"last_trade_quantity"`
	LastTradeAt       time.Time       `json:"last_trade_at"`
	HasLastTrade      bool            `json:"has_last_trade"`
	Timestamp         time.Time       `json:"timestamp"`
}

// Spread reports bestAsk-bestBid. The second return is false when either
// side of the book is empty, in which case the spread is undefined.
func (s *MarketDataSnapshot) Spread() (decimal.Decimal, bool) {
	if !s.HasBid || !s.HasAsk {
		return decimal.Zero, false
	}
	return s.BestAskPrice.Sub(s.BestBidPrice), true
}

// DepthLevel aggregates all resting orders at one price.
type DepthLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   int             `json:"orders"`
}

// DepthSnapshot is a point-in-time aggregated view of both sides of a
// book, best levels first.
type DepthSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []DepthLevel `json:"bids"`
	Asks      []DepthLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}
