package http

import (
	"encoding/json"
	"net/http"
	"time"

	orderdomain "github.com/ingEze/ecommerce-api/internal/order/domain"
	paymentdomain "github.com/ingEze/ecommerce-api/internal/payment/domain"
)

type envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	NextStep  *nextStep `json:"nextStep,omitempty"`
}

type nextStep struct {
	Action      string `json:"action"`
	Endpoint    string `json:"endpoint"`
	Description string `json:"description"`
}

type orderItemResponse struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Owner     string  `json:"owner"`
}

type orderResponse struct {
	OrderID         string              `json:"orderId"`
	UserID          string              `json:"userId"`
	Items           []orderItemResponse `json:"items"`
	Total           float64             `json:"total"`
	TotalWithTax    float64             `json:"totalWithTax"`
	Status          string              `json:"status"`
	ShippingAddress addressReq          `json:"shippingAddress"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// paymentResponse is the public projection: it exposes a paymentId and hides
// internal bookkeeping fields.
type paymentResponse struct {
	PaymentID     string    `json:"paymentId"`
	OrderID       string    `json:"orderId"`
	Method        string    `json:"method"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transactionId"`
	PayerEmail    string    `json:"payerEmail,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toOrderResponse(o orderdomain.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			Price:     centsToDollars(item.PriceCents),
			Quantity:  item.Quantity,
			Owner:     item.OwnerID,
		}
	}
	return orderResponse{
		OrderID:      o.ID,
		UserID:       o.UserID,
		Items:        items,
		Total:        centsToDollars(o.TotalCents),
		TotalWithTax: centsToDollars(o.TotalWithTaxCents),
		Status:       string(o.Status),
		ShippingAddress: addressReq{
			Street: o.ShippingAddress.Street,
			City:   o.ShippingAddress.City,
			Zip:    o.ShippingAddress.Zip,
		},
		CreatedAt: o.CreatedAt,
	}
}

func toPaymentResponse(p paymentdomain.Payment) paymentResponse {
	return paymentResponse{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		Method:        string(p.Method),
		Amount:        centsToDollars(p.AmountCents),
		Currency:      p.Currency,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		PayerEmail:    p.PayerEmail,
		CreatedAt:     p.CreatedAt,
	}
}

func centsToDollars(c int64) float64 {
	return float64(c) / 100
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
