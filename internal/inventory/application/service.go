package application

import (
	"context"
)

// Service is the read side of the stock ledger. Decrements happen inside the
// payment confirmation transaction, never here.
type Service struct {
	repo StockRepository
}

func NewService(repo StockRepository) *Service {
	return &Service{repo: repo}
}

// CheckStock batches availability for a set of products. Callers must treat
// a missing key as zero stock.
func (s *Service) CheckStock(ctx context.Context, productIDs []string) (map[string]int, error) {
	return s.repo.AvailableQuantities(ctx, productIDs)
}

// ProductOwner resolves the seller reference snapshotted onto order items.
func (s *Service) ProductOwner(ctx context.Context, productID string) (string, error) {
	stock, err := s.repo.Get(ctx, productID)
	if err != nil {
		return "", err
	}
	return stock.OwnerID, nil
}
