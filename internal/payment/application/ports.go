package application

import (
	"context"

	orderdomain "github.com/ingEze/ecommerce-api/internal/order/domain"
	"github.com/ingEze/ecommerce-api/internal/payment/domain"
)

type PaymentRepository interface {
	// SaveWithOutbox persists a new payment attempt and its lifecycle event
	// in one transaction. Returns domain.ErrPaymentAlreadyPending when a
	// pending attempt already exists for the same order.
	SaveWithOutbox(ctx context.Context, p domain.Payment, eventType string, payload []byte) error

	// FindPendingByOrder returns domain.ErrNoPendingPayment when no
	// confirmable attempt exists.
	FindPendingByOrder(ctx context.Context, orderID string) (domain.Payment, error)

	ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error)

	// Confirm runs the atomic confirmation: lock the pending payment and the
	// pending order, re-verify and decrement stock per line item, transition
	// order and payment to paid, and record the OrderPaid event — all in one
	// transaction. Any failure aborts everything.
	Confirm(ctx context.Context, orderID string) (orderdomain.Order, domain.Payment, error)
}

type PendingOrderReader interface {
	// FindPending returns orderdomain.ErrOrderNotFound when the order does
	// not exist or is no longer pending.
	FindPending(ctx context.Context, orderID string) (orderdomain.Order, error)
}

type Gateway interface {
	Charge(ctx context.Context, method domain.Method, amountCents int64) (domain.GatewayResult, error)
}
