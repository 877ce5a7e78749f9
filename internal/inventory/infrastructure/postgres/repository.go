package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ingEze/ecommerce-api/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) AvailableQuantities(ctx context.Context, productIDs []string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, quantity FROM products WHERE id = ANY($1)`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int, len(productIDs))
	for rows.Next() {
		var id string
		var qty int
		if err := rows.Scan(&id, &qty); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stock[id] = qty
	}
	return stock, rows.Err()
}

func (r *Repository) Get(ctx context.Context, productID string) (domain.Stock, error) {
	var s domain.Stock
	err := r.pool.QueryRow(ctx,
		`SELECT id, quantity, owner_id FROM products WHERE id = $1`, productID).
		Scan(&s.ProductID, &s.Quantity, &s.OwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stock{}, domain.ErrProductNotFound
	}
	if err != nil {
		return domain.Stock{}, fmt.Errorf("query product: %w", err)
	}
	return s, nil
}
