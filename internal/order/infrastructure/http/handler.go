package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	inventorydomain "github.com/ingEze/ecommerce-api/internal/inventory/domain"
	orderapp "github.com/ingEze/ecommerce-api/internal/order/application"
	orderdomain "github.com/ingEze/ecommerce-api/internal/order/domain"
	paymentapp "github.com/ingEze/ecommerce-api/internal/payment/application"
	paymentdomain "github.com/ingEze/ecommerce-api/internal/payment/domain"
	"github.com/ingEze/ecommerce-api/pkg/idempotency"
	"github.com/ingEze/ecommerce-api/pkg/metrics"
)

// userHeader carries the authenticated user id, set by the auth middleware
// in front of this service.
const userHeader = "X-User-ID"

type Handler struct {
	log      *slog.Logger
	orders   *orderapp.Service
	payments *paymentapp.Service
	metrics  *metrics.Metrics
	idem     *idempotency.Middleware
	tracer   trace.Tracer
}

// NewHandler wires the order/payment endpoints. idem may be nil, in which
// case no idempotency guard is applied.
func NewHandler(log *slog.Logger, orders *orderapp.Service, payments *paymentapp.Service,
	m *metrics.Metrics, idem *idempotency.Middleware) *Handler {
	return &Handler{
		log:      log,
		orders:   orders,
		payments: payments,
		metrics:  m,
		idem:     idem,
		tracer:   otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/orders", h.createOrder)
	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Get("/", h.getOrder)
		r.Get("/payments", h.getOrderPayments)

		pr := r
		if h.idem != nil {
			pr = r.With(h.idem.Handler)
		}
		pr.Post("/process-payment", h.processPayment)
		pr.Post("/confirm-payment", h.confirmPayment)
	})
	return r
}

type addressReq struct {
	Street string `json:"street"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

type orderItemReq struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type createOrderReq struct {
	Items           []orderItemReq `json:"items"`
	ShippingAddress addressReq     `json:"shippingAddress"`
}

type processPaymentReq struct {
	Method  string `json:"method"`
	Details struct {
		CardNumber string `json:"cardNumber"`
		FirstName  string `json:"firstName"`
		LastName   string `json:"lastName"`
		Expiration string `json:"expiration"`
		CVV        string `json:"cvv"`
		PayerEmail string `json:"payerEmail"`
	} `json:"details"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Error: "missing user identity"})
		return
	}

	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid body"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "order has no items"})
		return
	}

	items := make([]orderdomain.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = orderdomain.Item{
			ProductID:  it.ProductID,
			Title:      it.Title,
			PriceCents: dollarsToCents(it.Price),
			Quantity:   it.Quantity,
		}
	}

	o, err := h.orders.CreateOrder(ctx, orderapp.NewOrderInput{
		UserID: userID,
		Items:  items,
		ShippingAddress: orderdomain.Address{
			Street: req.ShippingAddress.Street,
			City:   req.ShippingAddress.City,
			Zip:    req.ShippingAddress.Zip,
		},
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.metrics.OrdersCreated.Inc()
	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Message: "Order created successfully",
		Data:    toOrderResponse(o),
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	o, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: toOrderResponse(o)})
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProcessPayment")
	defer span.End()

	orderID := chi.URLParam(r, "orderID")

	var req processPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid body"})
		return
	}

	payReq := paymentdomain.Request{Method: paymentdomain.Method(req.Method)}
	switch payReq.Method {
	case paymentdomain.MethodCreditCard:
		payReq.Card = &paymentdomain.CardDetails{
			CardNumber: req.Details.CardNumber,
			FirstName:  req.Details.FirstName,
			LastName:   req.Details.LastName,
			Expiration: req.Details.Expiration,
			CVV:        req.Details.CVV,
		}
	case paymentdomain.MethodPaypal:
		payReq.PayerEmail = req.Details.PayerEmail
	}

	p, err := h.payments.Process(ctx, orderID, payReq)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrPaymentDeclined) {
			h.metrics.GatewayDeclines.Inc()
		}
		h.writeError(w, err)
		return
	}

	h.metrics.PaymentsInitiated.WithLabelValues(string(p.Method)).Inc()
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Payment processed successfully",
		Data:    toPaymentResponse(p),
		NextStep: &nextStep{
			Action:      "confirm_payment",
			Endpoint:    "/orders/" + orderID + "/confirm-payment",
			Description: "Call this endpoint to finalize the transaction",
		},
	})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmPayment")
	defer span.End()

	start := time.Now()
	o, p, err := h.payments.Confirm(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.metrics.ConfirmDuration.Observe(time.Since(start).Seconds())
	h.metrics.PaymentsConfirmed.Inc()

	writeJSON(w, http.StatusCreated, envelope{
		Success: true,
		Data: map[string]any{
			"order":   toOrderResponse(o),
			"payment": toPaymentResponse(p),
		},
	})
}

func (h *Handler) getOrderPayments(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrderPayments")
	defer span.End()

	payments, err := h.payments.ListForOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]paymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: out})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var stockErr *orderdomain.StockError
	switch {
	case errors.As(err, &stockErr):
		h.metrics.StockConflicts.Inc()
		writeJSON(w, http.StatusBadRequest, envelope{
			Success:   false,
			Error:     stockErr.Error(),
			ProductID: stockErr.ProductID,
		})
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, paymentdomain.ErrNoPendingPayment),
		errors.Is(err, inventorydomain.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Error: err.Error()})
	case errors.Is(err, paymentdomain.ErrInvalidCardDetails),
		errors.Is(err, paymentdomain.ErrUnsupportedMethod),
		errors.Is(err, paymentdomain.ErrPaymentDeclined),
		errors.Is(err, paymentdomain.ErrPaymentAlreadyPending):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: err.Error()})
	default:
		h.log.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: "internal server error"})
	}
}

func dollarsToCents(d float64) int64 {
	return int64(math.Round(d * 100))
}
