package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	orderdomain "github.com/ingEze/ecommerce-api/internal/order/domain"
	"github.com/ingEze/ecommerce-api/internal/payment/domain"
)

const defaultPayerEmail = "demo@paypal.com"

// Service orchestrates payment processing and confirmation against an order.
type Service struct {
	log      *slog.Logger
	payments PaymentRepository
	orders   PendingOrderReader
	gateway  Gateway
}

func NewService(log *slog.Logger, payments PaymentRepository, orders PendingOrderReader, gateway Gateway) *Service {
	return &Service{log: log, payments: payments, orders: orders, gateway: gateway}
}

// Process creates a new payment attempt against a pending order. The charge
// amount is the order's tax-inclusive total, falling back to the plain total
// when it is absent. A declined gateway outcome surfaces as an error and no
// record is persisted; the client retries by calling Process again.
func (s *Service) Process(ctx context.Context, orderID string, req domain.Request) (domain.Payment, error) {
	order, err := s.orders.FindPending(ctx, orderID)
	if err != nil {
		return domain.Payment{}, err
	}

	switch req.Method {
	case domain.MethodCreditCard:
		if req.Card == nil || req.Card.CardNumber == "" || req.Card.CVV == "" {
			return domain.Payment{}, domain.ErrInvalidCardDetails
		}
	case domain.MethodPaypal:
		// Accepted as-is; payer identity is settled at confirmation.
	default:
		return domain.Payment{}, domain.ErrUnsupportedMethod
	}

	// One confirmable attempt at a time per order. The partial unique index
	// on payments backs this up against races.
	if _, err := s.payments.FindPendingByOrder(ctx, orderID); err == nil {
		return domain.Payment{}, domain.ErrPaymentAlreadyPending
	} else if !errors.Is(err, domain.ErrNoPendingPayment) {
		return domain.Payment{}, err
	}

	amount := order.TotalWithTaxCents
	if amount == 0 {
		amount = order.TotalCents
	}

	result, err := s.gateway.Charge(ctx, req.Method, amount)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("gateway charge: %w", err)
	}
	if result.Status == domain.StatusFailed {
		s.log.Warn("payment declined", "order_id", orderID, "method", req.Method, "transaction_id", result.TransactionID)
		return domain.Payment{}, domain.ErrPaymentDeclined
	}

	now := time.Now().UTC()
	p := domain.Payment{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		Method:        req.Method,
		AmountCents:   amount,
		Currency:      "USD",
		Status:        domain.StatusPending,
		TransactionID: result.TransactionID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Method == domain.MethodPaypal {
		p.PayerEmail = req.PayerEmail
		if p.PayerEmail == "" {
			p.PayerEmail = defaultPayerEmail
		}
	}

	event := domain.PaymentInitiated{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		Method:        p.Method,
		AmountCents:   p.AmountCents,
		TransactionID: p.TransactionID,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.Payment{}, err
	}
	if err := s.payments.SaveWithOutbox(ctx, p, "PaymentInitiated", payload); err != nil {
		return domain.Payment{}, err
	}

	s.log.Info("payment initiated", "order_id", orderID, "payment_id", p.ID,
		"method", p.Method, "amount_cents", p.AmountCents, "transaction_id", p.TransactionID)
	return p, nil
}

// Confirm commits the purchase: inventory impact, order status and payment
// status transition together or not at all. A second call for the same order
// finds no pending payment and fails without touching stock.
func (s *Service) Confirm(ctx context.Context, orderID string) (orderdomain.Order, domain.Payment, error) {
	order, payment, err := s.payments.Confirm(ctx, orderID)
	if err != nil {
		return orderdomain.Order{}, domain.Payment{}, err
	}
	s.log.Info("payment confirmed", "order_id", order.ID, "payment_id", payment.ID, "amount_cents", payment.AmountCents)
	return order, payment, nil
}

// ListForOrder returns every attempt ever recorded against an order, any
// status. An empty list is a valid "no attempts yet" result.
func (s *Service) ListForOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	return s.payments.ListByOrder(ctx, orderID)
}
