package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	orderdomain "github.com/ingEze/ecommerce-api/internal/order/domain"
	"github.com/ingEze/ecommerce-api/internal/payment/domain"
	"github.com/ingEze/ecommerce-api/pkg/tracing"
)

const uniqueViolation = "23505"

const paymentColumns = `id, order_id, method, amount_cents, currency, status, transaction_id, payer_email, created_at, updated_at`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, p domain.Payment, eventType string, payload []byte) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `INSERT INTO payments (`+paymentColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.OrderID, p.Method, p.AmountCents, p.Currency, p.Status,
		p.TransactionID, p.PayerEmail, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		// The partial unique index allows one pending attempt per order.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrPaymentAlreadyPending
		}
		return fmt.Errorf("insert payment: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
			VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"payment", p.OrderID, eventType, payload,
		map[string]string{"source": "ecommerce-api"}, tracing.TraceparentFromContext(ctx))
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *Repository) FindPendingByOrder(ctx context.Context, orderID string) (domain.Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments
			WHERE order_id = $1 AND status = $2`, orderID, domain.StatusPending)
	p, err := scanPayment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Payment{}, domain.ErrNoPendingPayment
	}
	if err != nil {
		return domain.Payment{}, fmt.Errorf("query pending payment: %w", err)
	}
	return p, nil
}

func (r *Repository) ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments
			WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Confirm commits inventory impact and finalizes order and payment status as
// one transaction. Stock is re-verified under row locks immediately before
// each decrement; a conflict aborts the whole confirmation so no partial
// decrement ever survives.
func (r *Repository) Confirm(ctx context.Context, orderID string) (orderdomain.Order, domain.Payment, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	p, err := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments
			WHERE order_id = $1 AND status = $2 FOR UPDATE`, orderID, domain.StatusPending))
	if errors.Is(err, pgx.ErrNoRows) {
		return orderdomain.Order{}, domain.Payment{}, domain.ErrNoPendingPayment
	}
	if err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("lock pending payment: %w", err)
	}

	// Re-fetch under lock: absence means another confirmation already won.
	var o orderdomain.Order
	err = tx.QueryRow(ctx, `SELECT id, user_id, total_cents, total_with_tax_cents, status, street, city, zip, created_at, updated_at
			FROM orders WHERE id = $1 AND status = $2 FOR UPDATE`, orderID, orderdomain.StatusPending).
		Scan(&o.ID, &o.UserID, &o.TotalCents, &o.TotalWithTaxCents, &o.Status,
			&o.ShippingAddress.Street, &o.ShippingAddress.City, &o.ShippingAddress.Zip,
			&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return orderdomain.Order{}, domain.Payment{}, orderdomain.ErrOrderNotFound
	}
	if err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("lock pending order: %w", err)
	}

	rows, err := tx.Query(ctx,
		`SELECT product_id, title, price_cents, quantity, owner_id FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("query order items: %w", err)
	}
	for rows.Next() {
		var item orderdomain.Item
		if err := rows.Scan(&item.ProductID, &item.Title, &item.PriceCents, &item.Quantity, &item.OwnerID); err != nil {
			rows.Close()
			return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return orderdomain.Order{}, domain.Payment{}, err
	}

	for _, item := range o.Items {
		var available int
		err := tx.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, item.ProductID).
			Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return orderdomain.Order{}, domain.Payment{}, orderdomain.NewNoStockError(item.ProductID, item.Title)
		}
		if err != nil {
			return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("lock product %s: %w", item.ProductID, err)
		}
		if available < item.Quantity {
			return orderdomain.Order{}, domain.Payment{}, orderdomain.NewInsufficientStockError(item.ProductID, item.Title, available, item.Quantity)
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET quantity = quantity - $2 WHERE id = $1`,
			item.ProductID, item.Quantity); err != nil {
			return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("decrement stock for %s: %w", item.ProductID, err)
		}
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, orderdomain.StatusPaid, now); err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("mark order paid: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE payments SET status = $2, updated_at = $3 WHERE id = $1`,
		p.ID, domain.StatusPaid, now); err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("mark payment paid: %w", err)
	}

	payload, err := json.Marshal(orderdomain.OrderPaid{
		OrderID:     o.ID,
		PaymentID:   p.ID,
		AmountCents: p.AmountCents,
	})
	if err != nil {
		return orderdomain.Order{}, domain.Payment{}, err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
			VALUES ($1,$2,$3,$4,$5,$6,'pending')`,
		"order", o.ID, "OrderPaid", payload,
		map[string]string{"source": "ecommerce-api"}, tracing.TraceparentFromContext(ctx)); err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return orderdomain.Order{}, domain.Payment{}, fmt.Errorf("commit confirmation: %w", err)
	}

	o.Status = orderdomain.StatusPaid
	o.UpdatedAt = now
	p.Status = domain.StatusPaid
	p.UpdatedAt = now
	return o, p, nil
}

func scanPayment(row pgx.Row) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Method, &p.AmountCents, &p.Currency,
		&p.Status, &p.TransactionID, &p.PayerEmail, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
