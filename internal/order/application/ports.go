package application

import (
	"context"

	"github.com/ingEze/ecommerce-api/internal/order/domain"
)

type OrderRepository interface {
	// SaveWithOutbox persists the order, its items and the given lifecycle
	// event in one transaction.
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte) error
	Get(ctx context.Context, id string) (domain.Order, error)
}

// Inventory is the stock ledger as seen from order creation: an advisory
// availability check plus seller resolution. No reservation happens here;
// stock is only committed at payment confirmation.
type Inventory interface {
	CheckStock(ctx context.Context, productIDs []string) (map[string]int, error)
	ProductOwner(ctx context.Context, productID string) (string, error)
}
