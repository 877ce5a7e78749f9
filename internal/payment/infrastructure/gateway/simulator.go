package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/ingEze/ecommerce-api/internal/payment/domain"
)

// DefaultFailureRate is the simulated probability that the gateway declines
// a charge. The flakiness is deliberate: it stands in for a real processor.
const DefaultFailureRate = 0.10

const txnAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Simulator is a probabilistic stand-in for a payment service provider.
// It never pauses; only the outcome is simulated.
type Simulator struct {
	log         *slog.Logger
	failureRate float64
}

func NewSimulator(log *slog.Logger, failureRate float64) *Simulator {
	return &Simulator{log: log, failureRate: failureRate}
}

func (s *Simulator) Charge(ctx context.Context, method domain.Method, amountCents int64) (domain.GatewayResult, error) {
	prefix := "CC"
	if method == domain.MethodPaypal {
		prefix = "PP"
	}
	result := domain.GatewayResult{
		TransactionID: fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), randSuffix(8)),
		Status:        domain.StatusPending,
	}
	if rand.Float64() < s.failureRate {
		result.Status = domain.StatusFailed
	}

	s.log.Info("gateway charge simulated", "method", method,
		"amount_cents", amountCents, "transaction_id", result.TransactionID, "status", result.Status)
	return result, nil
}

func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = txnAlphabet[rand.IntN(len(txnAlphabet))]
	}
	return string(b)
}
