package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// bookSide keeps one side's price levels sorted best-first: bids by
// price descending, asks ascending. The slice stays small relative to
// order count (one entry per distinct price), so binary search plus
// copy-insert beats a tree for realistic depths.
type bookSide struct {
	bids   bool
	levels []*priceLevel
}

func newBookSide(bids bool) *bookSide {
	return &bookSide{bids: bids}
}

func (s *bookSide) best() *priceLevel {
	if len(s.levels) == 0 {
		return nil
	}
	return s.levels[0]
}

// search returns the slot where price belongs in best-first order.
func (s *bookSide) search(price decimal.Decimal) int {
	return sort.Search(len(s.levels), func(i int) bool {
		if s.bids {
			return s.levels[i].price.LessThanOrEqual(price)
		}
		return s.levels[i].price.GreaterThanOrEqual(price)
	})
}

func (s *bookSide) getOrCreate(price decimal.Decimal) *priceLevel {
	i := s.search(price)
	if i < len(s.levels) && s.levels[i].price.Equal(price) {
		return s.levels[i]
	}
	lvl := newPriceLevel(price)
	s.levels = append(s.levels, nil)
	copy(s.levels[i+1:], s.levels[i:])
	s.levels[i] = lvl
	return lvl
}

func (s *bookSide) removeLevel(lvl *priceLevel) {
	i := s.search(lvl.price)
	if i < len(s.levels) && s.levels[i] == lvl {
		s.levels = append(s.levels[:i], s.levels[i+1:]...)
	}
}

func (s *bookSide) empty() bool {
	return len(s.levels) == 0
}
