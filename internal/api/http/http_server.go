package http

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aryan2574/quantis-matching-engine/internal/api/dto"
	"github.com/aryan2574/quantis-matching-engine/internal/core"
	"github.com/aryan2574/quantis-matching-engine/internal/domain"
	"github.com/aryan2574/quantis-matching-engine/internal/middleware"
	"github.com/aryan2574/quantis-matching-engine/internal/service"
)

// Server is the REST surface over the order service. Structural
// validation happens here; the book re-validates quantity and price
// positivity on its own.
type Server struct {
	svc         *service.OrderService
	submittedID sync.Map // order-id dedup
}

func NewServer(svc *service.OrderService) *Server {
	return &Server{svc: svc}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	rl := middleware.NewRateLimiter(100 * time.Millisecond)
	orders := r.Group("/orders", rl.Middleware())
	orders.POST("", s.submitOrder)
	orders.POST("/cancel", s.cancelOrder)
	orders.POST("/replace", s.replaceOrder)

	r.GET("/orders/:id", s.getOrder)
	r.GET("/orders/:id/trades", s.getTrades)
	r.GET("/orderbook", s.getOrderbook)
	r.GET("/marketdata", s.getMarketData)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	return r
}

func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *Server) submitOrder(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := validateSubmit(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.OrderID != "" {
		if _, dup := s.submittedID.LoadOrStore(req.OrderID, struct{}{}); dup {
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate order", "order_id": req.OrderID})
			return
		}
	}

	o := &domain.Order{
		ID:          req.OrderID,
		UserID:      req.UserID,
		Symbol:      req.Symbol,
		Side:        domain.Side(req.Side),
		Type:        domain.OrderType(req.Type),
		TimeInForce: domain.TimeInForce(req.TimeInForce),
		Price:       req.Price,
		Quantity:    req.Quantity,
	}

	res, err := s.svc.SubmitOrder(c.Request.Context(), o)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, submitResponse(res))
}

func (s *Server) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ok, err := s.svc.CancelOrder(c.Request.Context(), req.Symbol, req.OrderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp := dto.CancelOrderResponse{OrderID: req.OrderID, Cancelled: ok}
	if !ok {
		resp.Message = "order not found or already closed"
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) replaceOrder(c *gin.Context) {
	var req dto.ReplaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.svc.ReplaceOrder(c.Request.Context(), req.Symbol, req.OrderID, req.NewPrice, req.NewQty)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, submitResponse(res))
}

func (s *Server) getOrder(c *gin.Context) {
	o, err := s.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: convertOrder(o)})
}

func (s *Server) getTrades(c *gin.Context) {
	trades, err := s.svc.TradesForOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.GetTradesResponse{Trades: convertTrades(trades)})
}

func (s *Server) getOrderbook(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol required"})
		return
	}
	levels := 0
	if v := c.Query("levels"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &levels); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid levels"})
			return
		}
	}
	depth := s.svc.Depth(symbol, levels)
	c.JSON(http.StatusOK, dto.OrderbookResponse{
		Symbol:    depth.Symbol,
		Bids:      convertDepth(depth.Bids),
		Asks:      convertDepth(depth.Asks),
		Timestamp: depth.Timestamp,
	})
}

func (s *Server) getMarketData(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol required"})
		return
	}
	c.JSON(http.StatusOK, convertMarketData(s.svc.MarketData(symbol)))
}

func validateSubmit(req *dto.SubmitOrderRequest) error {
	switch domain.Side(req.Side) {
	case domain.Buy, domain.Sell:
	default:
		return fmt.Errorf("invalid side: %s", req.Side)
	}
	switch domain.OrderType(req.Type) {
	case domain.Limit, domain.Market:
	default:
		return fmt.Errorf("invalid order type: %s", req.Type)
	}
	if req.TimeInForce != "" {
		switch domain.TimeInForce(req.TimeInForce) {
		case domain.GTC, domain.IOC, domain.FOK:
		default:
			return fmt.Errorf("invalid time in force: %s", req.TimeInForce)
		}
	}
	if !req.Quantity.IsPositive() {
		return fmt.Errorf("quantity must be > 0")
	}
	if domain.OrderType(req.Type) == domain.Limit && !req.Price.IsPositive() {
		return fmt.Errorf("price must be > 0 for LIMIT orders")
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrInvalidPrice),
		errors.Is(err, core.ErrInvalidSide),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrInvalidTimeInForce),
		errors.Is(err, core.ErrSymbolMismatch):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrDuplicateOrder):
		return http.StatusConflict
	case errors.Is(err, core.ErrOrderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func submitResponse(res *core.MatchResult) dto.SubmitOrderResponse {
	resp := dto.SubmitOrderResponse{
		OrderID:    res.Order.ID,
		Status:     string(res.Order.Status),
		Remaining:  res.Order.Remaining,
		Trades:     convertTrades(res.Trades),
		MarketData: convertMarketData(res.Snapshot),
	}
	if res.Order.Status == domain.Cancelled && len(res.Trades) == 0 && res.Order.TimeInForce == domain.FOK {
		resp.Message = "killed: insufficient liquidity"
	}
	return resp
}

func convertOrder(o *domain.Order) dto.Order {
	return dto.Order{
		ID:          o.ID,
		UserID:      o.UserID,
		Symbol:      o.Symbol,
		Side:        string(o.Side),
		Type:        string(o.Type),
		TimeInForce: string(o.TimeInForce),
		Price:       o.Price,
		Quantity:    o.Quantity,
		Remaining:   o.Remaining,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}

func convertTrades(trades []*domain.Trade) []dto.Trade {
	res := make([]dto.Trade, len(trades))
	for i, t := range trades {
		res[i] = dto.Trade{
			ID:           t.ID,
			Symbol:       t.Symbol,
			Price:        t.Price,
			Quantity:     t.Quantity,
			MakerOrderID: t.MakerOrderID,
			TakerOrderID: t.TakerOrderID,
			Timestamp:    t.Timestamp,
		}
	}
	return res
}

func convertDepth(levels []domain.DepthLevel) []dto.DepthLevel {
	res := make([]dto.DepthLevel, len(levels))
	for i, l := range levels {
		res[i] = dto.DepthLevel{Price: l.Price, Quantity: l.Quantity, Orders: l.Orders}
	}
	return res
}

func convertMarketData(snap *domain.MarketDataSnapshot) dto.MarketData {
	md := dto.MarketData{
		Symbol:         snap.Symbol,
		BestBidPrice:   snap.BestBidPrice,
		BestBidQty:     snap.BestBidQuantity,
		BestAskPrice:   snap.BestAskPrice,
		BestAskQty:     snap.BestAskQuantity,
		HasBid:         snap.HasBid,
		HasAsk:         snap.HasAsk,
		LastTradePrice: snap.LastTradePrice,
		HasLastTrade:   snap.HasLastTrade,
		Timestamp:      snap.Timestamp,
	}
	md.Spread, md.HasSpread = snap.Spread()
	return md
}
