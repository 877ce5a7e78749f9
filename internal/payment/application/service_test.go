package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/ingEze/ecommerce-api/internal/order/domain"
	"github.com/ingEze/ecommerce-api/internal/payment/domain"
)

// fakeStore backs both ports with the same state so confirmation can mutate
// orders, payments and stock the way the transactional repository does.
type fakeStore struct {
	mu       sync.Mutex
	orders   map[string]orderdomain.Order
	payments []domain.Payment
	stock    map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: make(map[string]orderdomain.Order),
		stock:  make(map[string]int),
	}
}

func (f *fakeStore) FindPending(ctx context.Context, orderID string) (orderdomain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok || o.Status != orderdomain.StatusPending {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeStore) SaveWithOutbox(ctx context.Context, p domain.Payment, eventType string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.payments {
		if existing.OrderID == p.OrderID && existing.Status == domain.StatusPending {
			return domain.ErrPaymentAlreadyPending
		}
	}
	f.payments = append(f.payments, p)
	return nil
}

func (f *fakeStore) FindPendingByOrder(ctx context.Context, orderID string) (domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findPendingLocked(orderID)
}

func (f *fakeStore) findPendingLocked(orderID string) (domain.Payment, error) {
	for _, p := range f.payments {
		if p.OrderID == orderID && p.Status == domain.StatusPending {
			return p, nil
		}
	}
	return domain.Payment{}, domain.ErrNoPendingPayment
}

func (f *fakeStore) ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Payment, 0)
	for _, p := range f.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) Confirm(ctx context.Context, orderID string) (orderdomain.Order, domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.findPendingLocked(orderID)
	if err != nil {
		return orderdomain.Order{}, domain.Payment{}, err
	}
	o, ok := f.orders[orderID]
	if !ok || o.Status != orderdomain.StatusPending {
		return orderdomain.Order{}, domain.Payment{}, orderdomain.ErrOrderNotFound
	}
	for _, item := range o.Items {
		if f.stock[item.ProductID] < item.Quantity {
			return orderdomain.Order{}, domain.Payment{}, orderdomain.NewInsufficientStockError(
				item.ProductID, item.Title, f.stock[item.ProductID], item.Quantity)
		}
	}
	for _, item := range o.Items {
		f.stock[item.ProductID] -= item.Quantity
	}

	o.Status = orderdomain.StatusPaid
	f.orders[orderID] = o
	for i := range f.payments {
		if f.payments[i].ID == p.ID {
			f.payments[i].Status = domain.StatusPaid
			p = f.payments[i]
		}
	}
	return o, p, nil
}

type stubGateway struct {
	status domain.Status
}

func (g *stubGateway) Charge(ctx context.Context, method domain.Method, amountCents int64) (domain.GatewayResult, error) {
	return domain.GatewayResult{TransactionID: "CC-1700000000000-abcd1234", Status: g.status}, nil
}

func seedOrder(store *fakeStore) orderdomain.Order {
	o := orderdomain.NewOrder("o1", "u1", []orderdomain.Item{
		{ProductID: "p1", Title: "Keyboard", PriceCents: 3999, Quantity: 2, OwnerID: "seller-1"},
	}, orderdomain.Address{Street: "Main St 1", City: "Springfield", Zip: "1111"})
	store.orders[o.ID] = o
	store.stock["p1"] = 10
	return o
}

func newTestService(store *fakeStore, gw Gateway) *Service {
	return NewService(slog.New(slog.DiscardHandler), store, store, gw)
}

func TestProcess_Success(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	p, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, o.TotalWithTaxCents, p.AmountCents)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, "demo@paypal.com", p.PayerEmail)
	assert.NotEmpty(t, p.TransactionID)
	assert.Len(t, store.payments, 1)
}

func TestProcess_AmountFallsBackToTotal(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	o.TotalWithTaxCents = 0
	store.orders[o.ID] = o
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	p, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)
	assert.Equal(t, o.TotalCents, p.AmountCents)
}

func TestProcess_OrderNotFound(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), "missing", domain.Request{Method: domain.MethodPaypal})
	assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)
}

func TestProcess_MissingCardDetails(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{
		Method: domain.MethodCreditCard,
		Card:   &domain.CardDetails{CardNumber: "4111111111111111"}, // no CVV
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCardDetails)
	assert.Empty(t, store.payments)
}

func TestProcess_UnsupportedMethod(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: "wire_transfer"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedMethod)
}

func TestProcess_DeclinedPersistsNothing(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusFailed})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	assert.ErrorIs(t, err, domain.ErrPaymentDeclined)
	assert.Empty(t, store.payments, "a declined charge must not leave a pending record")
}

func TestProcess_RetryAllowedAfterDecline(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	gw := &stubGateway{status: domain.StatusFailed}
	svc := newTestService(store, gw)

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.ErrorIs(t, err, domain.ErrPaymentDeclined)

	gw.status = domain.StatusPending
	p, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)
}

func TestProcess_RejectsSecondPendingAttempt(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)

	_, err = svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodCreditCard,
		Card: &domain.CardDetails{CardNumber: "4111111111111111", CVV: "123"}})
	assert.ErrorIs(t, err, domain.ErrPaymentAlreadyPending)
	assert.Len(t, store.payments, 1)
}

func TestConfirm_RoundTrip(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)

	confirmedOrder, confirmedPayment, err := svc.Confirm(context.Background(), o.ID)
	require.NoError(t, err)

	assert.Equal(t, orderdomain.StatusPaid, confirmedOrder.Status)
	assert.Equal(t, domain.StatusPaid, confirmedPayment.Status)
	assert.Equal(t, 8, store.stock["p1"], "stock decremented by the ordered quantity exactly once")
}

func TestConfirm_NoPaymentAttempt(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, _, err := svc.Confirm(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrNoPendingPayment)
	assert.Equal(t, orderdomain.StatusPending, store.orders[o.ID].Status)
}

func TestConfirm_FailedAttemptNotConfirmable(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	store.payments = append(store.payments, domain.Payment{
		ID: "pay-1", OrderID: o.ID, Method: domain.MethodPaypal,
		AmountCents: o.TotalWithTaxCents, Currency: "USD", Status: domain.StatusFailed,
	})
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, _, err := svc.Confirm(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrNoPendingPayment)
}

func TestConfirm_SecondCallFails(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)
	_, _, err = svc.Confirm(context.Background(), o.ID)
	require.NoError(t, err)

	_, _, err = svc.Confirm(context.Background(), o.ID)
	assert.ErrorIs(t, err, domain.ErrNoPendingPayment)
	assert.Equal(t, 8, store.stock["p1"], "a repeated confirmation must not decrement stock again")
}

func TestConfirm_InsufficientStockAborts(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)

	// Another order drained the shelf between creation and confirmation.
	store.stock["p1"] = 1

	_, _, err = svc.Confirm(context.Background(), o.ID)
	var stockErr *orderdomain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, orderdomain.StatusPending, store.orders[o.ID].Status, "order must stay pending on abort")
	assert.Equal(t, 1, store.stock["p1"], "no partial decrement may survive the abort")
}

func TestConfirm_ConcurrentOnlyOneWins(t *testing.T) {
	store := newFakeStore()
	o := seedOrder(store)
	svc := newTestService(store, &stubGateway{status: domain.StatusPending})

	_, err := svc.Process(context.Background(), o.ID, domain.Request{Method: domain.MethodPaypal})
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.Confirm(context.Background(), o.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var successes int
	for err := range errs {
		if err == nil {
			successes++
		} else {
			assert.True(t, errors.Is(err, domain.ErrNoPendingPayment))
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 8, store.stock["p1"])
}
