package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aryan2574/quantis-matching-engine/internal/domain"
	"github.com/aryan2574/quantis-matching-engine/internal/port"
)

var _ port.Repository = (*Repo)(nil)

type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo opens a pgx pool for dsn. Call Close when done.
func NewRepo(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

const upsertOrderSQL = `
INSERT INTO orders(id, user_id, symbol, side, type, time_in_force, price, quantity, remaining, status, sequence, created_at, updated_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET
  price = EXCLUDED.price,
  quantity = EXCLUDED.quantity,
  remaining = EXCLUDED.remaining,
  status = EXCLUDED.status,
  sequence = EXCLUDED.sequence,
  updated_at = EXCLUDED.updated_at
`

const insertTradeSQL = `
INSERT INTO trades(id, symbol, price, quantity, maker_order_id, taker_order_id, maker_user_id, taker_user_id, executed_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING
`

func (r *Repo) SaveOrder(ctx context.Context, o *domain.Order) error {
	if o == nil {
		return errors.New("pg: nil order")
	}
	_, err := r.pool.Exec(ctx, upsertOrderSQL,
		o.ID, o.UserID, o.Symbol, string(o.Side), string(o.Type), string(o.TimeInForce),
		o.Price, o.Quantity, o.Remaining, string(o.Status), o.Sequence, o.CreatedAt, o.UpdatedAt)
	return err
}

// SaveExecution writes the taker, every touched maker and all trades of
// one matching call in a single transaction.
func (r *Repo) SaveExecution(ctx context.Context, orders []*domain.Order, trades []*domain.Trade) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pg: begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, o := range orders {
		if _, err := tx.Exec(ctx, upsertOrderSQL,
			o.ID, o.UserID, o.Symbol, string(o.Side), string(o.Type), string(o.TimeInForce),
			o.Price, o.Quantity, o.Remaining, string(o.Status), o.Sequence, o.CreatedAt, o.UpdatedAt); err != nil {
			return fmt.Errorf("pg: upsert order %s: %w", o.ID, err)
		}
	}
	for _, t := range trades {
		if _, err := tx.Exec(ctx, insertTradeSQL,
			t.ID, t.Symbol, t.Price, t.Quantity,
			t.MakerOrderID, t.TakerOrderID, t.MakerUserID, t.TakerUserID, t.Timestamp); err != nil {
			return fmt.Errorf("pg: insert trade %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pg: commit: %w", err)
	}
	committed = true
	return nil
}

func (r *Repo) LoadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, user_id, symbol, side, type, time_in_force, price, quantity, remaining, status, sequence, created_at, updated_at
FROM orders WHERE id = $1
`, orderID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("pg: order %s: not found", orderID)
	}
	return o, err
}

func (r *Repo) LoadTradesForOrder(ctx context.Context, orderID string) ([]*domain.Trade, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, symbol, price, quantity, maker_order_id, taker_order_id, maker_user_id, taker_user_id, executed_at
FROM trades
WHERE maker_order_id = $1 OR taker_order_id = $1
ORDER BY executed_at ASC
`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Trade
	for rows.Next() {
		var t domain.Trade
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Price, &t.Quantity,
			&t.MakerOrderID, &t.TakerOrderID, &t.MakerUserID, &t.TakerUserID, &t.Timestamp); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

// LoadOpenOrders returns resting orders for replay, oldest first.
func (r *Repo) LoadOpenOrders(ctx context.Context, symbol string) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, user_id, symbol, side, type, time_in_force, price, quantity, remaining, status, sequence, created_at, updated_at
FROM orders
WHERE symbol = $1 AND remaining > 0 AND status IN ('OPEN', 'PARTIALLY_FILLED')
ORDER BY sequence ASC
`, symbol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (r *Repo) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT symbol FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var side, typ, tif, status string
	if err := row.Scan(&o.ID, &o.UserID, &o.Symbol, &side, &typ, &tif,
		&o.Price, &o.Quantity, &o.Remaining, &status, &o.Sequence, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Side = domain.Side(side)
	o.Type = domain.OrderType(typ)
	o.TimeInForce = domain.TimeInForce(tif)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}
