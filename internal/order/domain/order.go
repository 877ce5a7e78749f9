package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Fixed 21% VAT applied to every order at creation time.
const (
	taxRateNum int64 = 121
	taxRateDen int64 = 100
)

type Address struct {
	Street string
	City   string
	Zip    string
}

// Item is a price-locked snapshot of a product at order time. Title, price
// and owner are copied from the catalog so later product edits never change
// what the customer agreed to pay.
type Item struct {
	ProductID  string
	Title      string
	PriceCents int64
	Quantity   int
	OwnerID    string
}

type Order struct {
	ID                string
	UserID            string
	Items             []Item
	TotalCents        int64
	TotalWithTaxCents int64
	Status            Status
	ShippingAddress   Address
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewOrder computes both totals once from the item snapshots. They are never
// recomputed from live product prices afterward.
func NewOrder(id, userID string, items []Item, addr Address) Order {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.PriceCents
	}
	now := time.Now().UTC()
	return Order{
		ID:                id,
		UserID:            userID,
		Items:             items,
		TotalCents:        total,
		TotalWithTaxCents: WithTax(total),
		Status:            StatusPending,
		ShippingAddress:   addr,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// WithTax applies the 21% rate to an integer-cent amount, rounding half up.
func WithTax(cents int64) int64 {
	return (cents*taxRateNum + taxRateDen/2) / taxRateDen
}
