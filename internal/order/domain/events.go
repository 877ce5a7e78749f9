package domain

type OrderCreated struct {
	OrderID           string
	UserID            string
	TotalCents        int64
	TotalWithTaxCents int64
	Items             []Item
}

type OrderPaid struct {
	OrderID     string
	PaymentID   string
	AmountCents int64
}
