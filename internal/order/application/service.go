package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ingEze/ecommerce-api/internal/order/domain"
)

type Service struct {
	log  *slog.Logger
	repo OrderRepository
	inv  Inventory
}

func NewService(log *slog.Logger, repo OrderRepository, inv Inventory) *Service {
	return &Service{log: log, repo: repo, inv: inv}
}

type NewOrderInput struct {
	UserID          string
	Items           []domain.Item
	ShippingAddress domain.Address
}

// CreateOrder validates availability for every line item, snapshots the
// seller on each item, computes the price-locked totals and persists the
// order as pending. Stock is checked but not reserved: two concurrent orders
// can both pass this check, and the binding check happens inside the
// confirmation transaction.
func (s *Service) CreateOrder(ctx context.Context, in NewOrderInput) (domain.Order, error) {
	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	stock, err := s.inv.CheckStock(ctx, ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("check stock: %w", err)
	}

	// Fail fast on the first violation; nothing has been mutated yet.
	for _, item := range in.Items {
		available := stock[item.ProductID]
		if available <= 0 {
			return domain.Order{}, domain.NewNoStockError(item.ProductID, item.Title)
		}
		if item.Quantity > available {
			return domain.Order{}, domain.NewInsufficientStockError(item.ProductID, item.Title, available, item.Quantity)
		}
	}

	items := make([]domain.Item, len(in.Items))
	for i, item := range in.Items {
		owner, err := s.inv.ProductOwner(ctx, item.ProductID)
		if err != nil {
			return domain.Order{}, fmt.Errorf("resolve owner for product %s: %w", item.ProductID, err)
		}
		item.OwnerID = owner
		items[i] = item
	}

	o := domain.NewOrder(uuid.NewString(), in.UserID, items, in.ShippingAddress)

	event := domain.OrderCreated{
		OrderID:           o.ID,
		UserID:            o.UserID,
		TotalCents:        o.TotalCents,
		TotalWithTaxCents: o.TotalWithTaxCents,
		Items:             o.Items,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, o, "OrderCreated", payload); err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order created", "order_id", o.ID, "user_id", o.UserID, "total_cents", o.TotalCents)
	return o, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}
