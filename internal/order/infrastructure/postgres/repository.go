package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ingEze/ecommerce-api/internal/order/domain"
	"github.com/ingEze/ecommerce-api/pkg/tracing"
)

const orderColumns = `id, user_id, total_cents, total_with_tax_cents, status, street, city, zip, created_at, updated_at`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO orders (`+orderColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		o.ID, o.UserID, o.TotalCents, o.TotalWithTaxCents, o.Status,
		o.ShippingAddress.Street, o.ShippingAddress.City, o.ShippingAddress.Zip,
		o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(`INSERT INTO order_items (order_id, product_id, title, price_cents, quantity, owner_id)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			o.ID, item.ProductID, item.Title, item.PriceCents, item.Quantity, item.OwnerID)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
			VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", o.ID, eventType, payload,
		map[string]string{"source": "ecommerce-api"}, tracing.TraceparentFromContext(ctx))
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	return r.fetch(ctx, `WHERE id = $1`, id)
}

// FindPending is the pending-order lookup used by payment processing.
func (r *Repository) FindPending(ctx context.Context, id string) (domain.Order, error) {
	return r.fetch(ctx, `WHERE id = $1 AND status = $2`, id, domain.StatusPending)
}

func (r *Repository) fetch(ctx context.Context, where string, args ...any) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders `+where, args...).
		Scan(&o.ID, &o.UserID, &o.TotalCents, &o.TotalWithTaxCents, &o.Status,
			&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.Zip,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, title, price_cents, quantity, owner_id FROM order_items WHERE order_id = $1`, o.ID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.ProductID, &item.Title, &item.PriceCents, &item.Quantity, &item.OwnerID); err != nil {
			return domain.Order{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}
