package domain

import "time"

type Status string

const (
	StatusProcessing Status = "processing"
	StatusPending    Status = "pending"
	StatusPaid       Status = "paid"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
	StatusCancelled  Status = "cancelled"
)

type Method string

const (
	MethodCreditCard Method = "credit_card"
	MethodPaypal     Method = "paypal"
)

// Payment is one attempt to pay for an order. Its lifecycle is independent
// from the order's: many attempts may exist, at most one ever reaches paid.
type Payment struct {
	ID            string
	OrderID       string
	Method        Method
	AmountCents   int64
	Currency      string
	Status        Status
	TransactionID string
	PayerEmail    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CardDetails struct {
	CardNumber string
	FirstName  string
	LastName   string
	Expiration string
	CVV        string
}

// Request is the validated payment input for one attempt. Card is only set
// for credit_card, PayerEmail only for paypal.
type Request struct {
	Method     Method
	Card       *CardDetails
	PayerEmail string
}

// GatewayResult is the simulated processor outcome: StatusPending means the
// charge was authorized and awaits confirmation, StatusFailed means declined.
type GatewayResult struct {
	TransactionID string
	Status        Status
}
