package domain

import "errors"

var (
	// ErrNoPendingPayment means no confirmable attempt exists for the order:
	// either none was ever made, or every attempt already failed or settled.
	ErrNoPendingPayment = errors.New("no successful payment found for this order")

	ErrInvalidCardDetails    = errors.New("invalid credit card information")
	ErrUnsupportedMethod     = errors.New("payment method not supported")
	ErrPaymentDeclined       = errors.New("payment processing failed")
	ErrPaymentAlreadyPending = errors.New("a pending payment already exists for this order")
)
