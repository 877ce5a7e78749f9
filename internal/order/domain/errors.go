package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOrderNotFound covers both a nonexistent order and an order that is
	// no longer pending; callers cannot distinguish the two on purpose.
	ErrOrderNotFound = errors.New("order not found or already processed")

	ErrNoStock           = errors.New("product out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError names the offending product so clients can render an
// actionable message. It wraps ErrNoStock or ErrInsufficientStock.
type StockError struct {
	ProductID string
	Title     string
	Available int
	Requested int
	err       error
}

func NewNoStockError(productID, title string) *StockError {
	return &StockError{ProductID: productID, Title: title, err: ErrNoStock}
}

func NewInsufficientStockError(productID, title string, available, requested int) *StockError {
	return &StockError{
		ProductID: productID,
		Title:     title,
		Available: available,
		Requested: requested,
		err:       ErrInsufficientStock,
	}
}

func (e *StockError) Error() string {
	if errors.Is(e.err, ErrNoStock) {
		return fmt.Sprintf("product %q has no stock", e.Title)
	}
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d",
		e.Title, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return e.err }
