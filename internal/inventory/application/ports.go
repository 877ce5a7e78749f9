package application

import (
	"context"

	"github.com/ingEze/ecommerce-api/internal/inventory/domain"
)

type StockRepository interface {
	// AvailableQuantities returns the current quantity for each requested
	// product. Products that do not exist are absent from the result.
	AvailableQuantities(ctx context.Context, productIDs []string) (map[string]int, error)
	Get(ctx context.Context, productID string) (domain.Stock, error)
}
