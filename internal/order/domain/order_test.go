package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderTotals(t *testing.T) {
	items := []Item{
		{ProductID: "p1", Title: "Keyboard", PriceCents: 3999, Quantity: 2},
		{ProductID: "p2", Title: "Mouse", PriceCents: 1500, Quantity: 1},
	}
	o := NewOrder("o1", "u1", items, Address{Street: "Main St 1", City: "Springfield", Zip: "1111"})

	assert.Equal(t, int64(9498), o.TotalCents)
	assert.Equal(t, WithTax(9498), o.TotalWithTaxCents)
	assert.Equal(t, StatusPending, o.Status)
	assert.Len(t, o.Items, 2)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}

func TestWithTax(t *testing.T) {
	cases := []struct {
		name  string
		cents int64
		want  int64
	}{
		{"zero", 0, 0},
		{"one item at 39.99 times two", 7998, 9678},
		{"rounds half up", 50, 61}, // 50 * 1.21 = 60.5
		{"whole dollars", 10000, 12100},
		{"single cent", 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, WithTax(tc.cents))
		})
	}
}

func TestStockErrorMessages(t *testing.T) {
	noStock := NewNoStockError("p1", "Keyboard")
	require.True(t, errors.Is(noStock, ErrNoStock))
	assert.Contains(t, noStock.Error(), "Keyboard")

	insufficient := NewInsufficientStockError("p1", "Keyboard", 10, 20)
	require.True(t, errors.Is(insufficient, ErrInsufficientStock))
	assert.Contains(t, insufficient.Error(), "available 10")
	assert.Contains(t, insufficient.Error(), "requested 20")
	assert.Equal(t, "p1", insufficient.ProductID)
}
