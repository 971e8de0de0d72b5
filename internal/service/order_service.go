package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aryan2574/quantis-matching-engine/internal/core"
	"github.com/aryan2574/quantis-matching-engine/internal/domain"
	"github.com/aryan2574/quantis-matching-engine/internal/port"
)

// OrderService drives the matching engine and forwards its output to
// the downstream collaborators. Persistence, caching and publication
// all happen after the book lock is released, are best-effort and are
// never retried here; failures are logged and the matching result
// stands.
type OrderService struct {
	engine *core.MatchingEngine
	repo   port.Repository
	cache  port.Cache
	pub    port.Publisher
	logger *slog.Logger
}

// NewOrderService wires the service. repo, cache and pub may each be
// nil; the corresponding step is skipped.
func NewOrderService(engine *core.MatchingEngine, repo port.Repository, cache port.Cache, pub port.Publisher, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		engine: engine,
		repo:   repo,
		cache:  cache,
		pub:    pub,
		logger: logger,
	}
}

func (s *OrderService) SubmitOrder(ctx context.Context, o *domain.Order) (*core.MatchResult, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	res, err := s.engine.Submit(o.Symbol, o)
	if err != nil {
		return nil, err
	}
	s.forward(ctx, o.Symbol, res)
	return res, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, symbol, orderID string) (bool, error) {
	o, snap, ok := s.engine.Cancel(symbol, orderID)
	if !ok {
		return false, nil
	}
	if s.repo != nil {
		if err := s.repo.SaveOrder(ctx, o); err != nil {
			s.logger.Error("persist cancelled order failed",
				"order_id", orderID, "error", err)
		}
	}
	s.forwardMarketData(ctx, symbol, snap)
	return true, nil
}

func (s *OrderService) ReplaceOrder(ctx context.Context, symbol, orderID string, price, qty decimal.Decimal) (*core.MatchResult, error) {
	res, err := s.engine.Replace(symbol, orderID, price, qty)
	if err != nil {
		return nil, err
	}
	s.forward(ctx, symbol, res)
	return res, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if s.repo == nil {
		return nil, core.ErrOrderNotFound
	}
	return s.repo.LoadOrder(ctx, orderID)
}

func (s *OrderService) TradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.LoadTradesForOrder(ctx, orderID)
}

func (s *OrderService) MarketData(symbol string) *domain.MarketDataSnapshot {
	return s.engine.MarketData(symbol)
}

func (s *OrderService) Depth(symbol string, maxLevels int) *domain.DepthSnapshot {
	return s.engine.Depth(symbol, maxLevels)
}

// RestoreOpenOrders replays resting orders from the repository into
// fresh books, preserving time priority via the stored sequence order.
// Pass no symbols to restore every symbol the repository knows.
func (s *OrderService) RestoreOpenOrders(ctx context.Context, symbols ...string) error {
	if s.repo == nil {
		return nil
	}
	if len(symbols) == 0 {
		var err error
		symbols, err = s.repo.ListSymbols(ctx)
		if err != nil {
			return err
		}
	}
	for _, symbol := range symbols {
		orders, err := s.repo.LoadOpenOrders(ctx, symbol)
		if err != nil {
			return err
		}
		for _, o := range orders {
			replay := &domain.Order{
				ID:          o.ID,
				UserID:      o.UserID,
				Symbol:      o.Symbol,
				Side:        o.Side,
				Type:        o.Type,
				TimeInForce: o.TimeInForce,
				Price:       o.Price,
				Quantity:    o.Remaining,
				CreatedAt:   o.CreatedAt,
			}
			if _, err := s.engine.Submit(symbol, replay); err != nil {
				s.logger.Error("replay order failed",
					"symbol", symbol, "order_id", o.ID, "error", err)
			}
		}
		s.logger.Info("restored open orders", "symbol", symbol, "count", len(orders))
	}
	return nil
}

func (s *OrderService) forward(ctx context.Context, symbol string, res *core.MatchResult) {
	if s.repo != nil {
		orders := append([]*domain.Order{res.Order}, res.Makers...)
		if err := s.repo.SaveExecution(ctx, orders, res.Trades); err != nil {
			s.logger.Error("persist execution failed",
				"symbol", symbol, "order_id", res.Order.ID, "error", err)
		}
	}
	if s.pub != nil && len(res.Trades) > 0 {
		if err := s.pub.PublishTrades(ctx, res.Trades); err != nil {
			s.logger.Error("publish trades failed",
				"symbol", symbol, "count", len(res.Trades), "error", err)
		}
	}
	s.forwardMarketData(ctx, symbol, res.Snapshot)
}

func (s *OrderService) forwardMarketData(ctx context.Context, symbol string, snap *domain.MarketDataSnapshot) {
	if snap == nil {
		return
	}
	if s.cache != nil {
		if err := s.cache.SetMarketData(ctx, symbol, snap); err != nil {
			s.logger.Error("cache market data failed", "symbol", symbol, "error", err)
		}
	}
	if s.pub != nil {
		if err := s.pub.PublishMarketData(ctx, snap); err != nil {
			s.logger.Error("publish market data failed", "symbol", symbol, "error", err)
		}
	}
}
