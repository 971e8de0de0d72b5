package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
	"github.com/aryan2574/quantis-matching-engine/internal/port"
)

var _ port.Publisher = (*Publisher)(nil)

// Publisher writes matching output to the trade and market-data topics.
// Messages are keyed by symbol so each symbol's stream stays ordered
// within a partition.
type Publisher struct {
	trades     *kafka.Writer
	marketData *kafka.Writer
}

func NewPublisher(brokers []string, tradeTopic, marketDataTopic string) *Publisher {
	return &Publisher{
		trades:     newWriter(brokers, tradeTopic),
		marketData: newWriter(brokers, marketDataTopic),
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
	}
}

func (p *Publisher) PublishTrades(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(trades))
	for _, t := range trades {
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(t.Symbol),
			Value: b,
		})
	}
	return p.trades.WriteMessages(ctx, msgs...)
}

func (p *Publisher) PublishMarketData(ctx context.Context, snap *domain.MarketDataSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return p.marketData.WriteMessages(ctx, kafka.Message{
		Key:   []byte(snap.Symbol),
		Value: b,
	})
}

func (p *Publisher) Close() error {
	if err := p.trades.Close(); err != nil {
		_ = p.marketData.Close()
		return err
	}
	return p.marketData.Close()
}
