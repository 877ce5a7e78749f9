package domain

type PaymentInitiated struct {
	PaymentID     string
	OrderID       string
	Method        Method
	AmountCents   int64
	TransactionID string
}
