package core

import (
	"github.com/shopspring/decimal"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
)

// levelNode links one resting order into its price level's FIFO queue.
// The book's orderID index points at nodes, so cancellation can unlink
// in O(1) without searching the queue.
type levelNode struct {
	order *domain.Order
	level *priceLevel
	prev  *levelNode
	next  *levelNode
}

// priceLevel is the FIFO queue of resting orders sharing one price,
// oldest first. totalQty tracks the sum of remaining quantities so depth
// views and FOK pre-checks don't walk the queue.
type priceLevel struct {
	price    decimal.Decimal
	head     *levelNode
	tail     *levelNode
	totalQty decimal.Decimal
	orders   int
}

func newPriceLevel(price decimal.Decimal) *priceLevel {
	return &priceLevel{price: price, totalQty: decimal.Zero}
}

func (l *priceLevel) enqueue(o *domain.Order) *levelNode {
	n := &levelNode{order: o, level: l}
	if l.head == nil {
		l.head = n
		l.tail = n
	} else {
		l.tail.next = n
		n.prev = l.tail
		l.tail = n
	}
	l.totalQty = l.totalQty.Add(o.Remaining)
	l.orders++
	return n
}

// unlink removes n from the queue. The order's remaining quantity must
// already reflect any fills applied via reduce.
func (l *priceLevel) unlink(n *levelNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	l.totalQty = l.totalQty.Sub(n.order.Remaining)
	l.orders--
}

// reduce subtracts a fill from the level aggregate.
func (l *priceLevel) reduce(qty decimal.Decimal) {
	l.totalQty = l.totalQty.Sub(qty)
}

func (l *priceLevel) empty() bool {
	return l.head == nil
}
