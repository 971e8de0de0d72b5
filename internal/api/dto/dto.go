package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubmitOrderRequest struct {
	OrderID     string          `json:"order_id,omitempty"` // caller-assigned, used for dedup
	UserID      string          `json:"user_id" binding:"required"`
	Symbol      string          `json:"symbol" binding:"required"`
	Side        string          `json:"side" binding:"required"`
	Type        string          `json:"type" binding:"required"`
	TimeInForce string          `json:"time_in_force,omitempty"`
	Price       decimal.Decimal `json:"price,omitempty"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

type SubmitOrderResponse struct {
	OrderID    string          `json:"order_id"`
	Status     string          `json:"status"`
	Remaining  decimal.Decimal `json:"remaining"`
	Trades     []Trade         `json:"trades"`
	MarketData MarketData      `json:"market_data"`
	Message    string          `json:"message,omitempty"`
}

type CancelOrderRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Symbol  string `json:"symbol" binding:"required"`
}

type CancelOrderResponse struct {
	OrderID   string `json:"order_id"`
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message,omitempty"`
}

type ReplaceOrderRequest struct {
	OrderID  string          `json:"order_id" binding:"required"`
	Symbol   string          `json:"symbol" binding:"required"`
	NewPrice decimal.Decimal `json:"new_price"`
	NewQty   decimal.Decimal `json:"new_qty"`
}

type GetOrderResponse struct {
	Order Order `json:"order"`
}

type GetTradesResponse struct {
	Trades []Trade `json:"trades"`
}

type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Symbol      string          `json:"symbol"`
	Side        string          `json:"side"`
	Type        string          `json:"type"`
	TimeInForce string          `json:"time_in_force"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Remaining   decimal.Decimal `json:"remaining"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Trade struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	Timestamp    time.Time       `json:"timestamp"`
}

type MarketData struct {
	Symbol         string          `json:"symbol"`
	BestBidPrice   decimal.Decimal `json:"best_bid_price"`
	BestBidQty     decimal.Decimal `json:"best_bid_quantity"`
	BestAskPrice   decimal.Decimal `json:"best_ask_price"`
	BestAskQty     decimal.Decimal `json:"best_ask_quantity"`
	HasBid         bool            `json:"has_bid"`
	HasAsk         bool            `json:"has_ask"`
	LastTradePrice decimal.Decimal `json:"last_trade_price"`
	HasLastTrade   bool            `json:"has_last_trade"`
	Spread         decimal.Decimal `json:"spread"`
	HasSpread      bool            `json:"has_spread"`
	Timestamp      time.Time       `json:"timestamp"`
}

type DepthLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Orders   int             `json:"orders"`
}

type OrderbookResponse struct {
	Symbol    string       `json:"symbol"`
	Bids      []DepthLevel `json:"bids"`
	Asks      []DepthLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}
