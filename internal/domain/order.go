package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string
type OrderType string
type TimeInForce string
type OrderStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	Limit  OrderType = "LIMIT"
	Market OrderType = "MARKET"

	// GTC rests until filled or cancelled. IOC fills what it can and
	// discards the remainder. FOK fills completely or not at all.
	GTC TimeInForce = "GTC"
	IOC TimeInForce = "IOC"
	FOK TimeInForce = "FOK"

	Open            OrderStatus = "OPEN"
	PartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	Filled          OrderStatus = "FILLED"
	Cancelled       OrderStatus = "CANCELLED"
)

// Order is a single validated instruction. ID, UserID, Symbol and the
// requested Quantity never change after submission; Remaining only
// decreases. Sequence is assigned by the book when the order rests and
// defines time priority among orders at the same price.
type Order struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Symbol      string          `json:"symbol"`
	Side        Side            `json:"side"`
	Type        OrderType       `json:"type"`
	TimeInForce TimeInForce     `json:"time_in_force"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Remaining   decimal.Decimal `json:"remaining"`
	Status      OrderStatus     `json:"status"`
	Sequence    uint64          `json:"sequence"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// FilledQty returns how much of the original quantity has executed.
func (o *Order) FilledQty() decimal.Decimal {
	return o.Quantity.Sub(o.Remaining)
}

func (o *Order) IsClosed() bool {
	return o.Status == Filled || o.Status == Cancelled
}
