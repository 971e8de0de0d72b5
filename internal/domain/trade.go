package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one execution between a resting maker and an incoming taker.
// Price is always the maker's price. Immutable once produced; the book
// hands ownership to the caller for downstream publication.
type Trade struct {
	ID           string          `json:"id"`
	Symbol       string          `json:"symbol"`
	Price        decimal.Decimal `json:"price"`
	Quantity     decimal.Decimal `json:"quantity"`
	MakerOrderID string          `json:"maker_order_id"`
	TakerOrderID string          `json:"taker_order_id"`
	MakerUserID  string          `json:"maker_user_id"`
	TakerUserID  string          `json:"taker_user_id"`
	Timestamp    time.Time       `json:"timestamp"`
}
