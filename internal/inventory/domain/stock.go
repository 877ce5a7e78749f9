package domain

import "errors"

var ErrProductNotFound = errors.New("product not found")

// Stock is the available-quantity facet of a catalog product. Quantity is
// only ever decremented inside the payment confirmation transaction.
type Stock struct {
	ProductID string
	Quantity  int
	OwnerID   string
}
