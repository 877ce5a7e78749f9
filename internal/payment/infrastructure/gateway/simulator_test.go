package gateway

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ingEze/ecommerce-api/internal/payment/domain"
)

func TestCharge_NeverFailsAtZeroRate(t *testing.T) {
	sim := NewSimulator(slog.New(slog.DiscardHandler), 0)
	for i := 0; i < 50; i++ {
		res, err := sim.Charge(context.Background(), domain.MethodCreditCard, 9678)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, res.Status)
	}
}

func TestCharge_AlwaysFailsAtFullRate(t *testing.T) {
	sim := NewSimulator(slog.New(slog.DiscardHandler), 1)
	res, err := sim.Charge(context.Background(), domain.MethodPaypal, 9678)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, res.Status)
}

func TestCharge_TransactionIDFormat(t *testing.T) {
	sim := NewSimulator(slog.New(slog.DiscardHandler), 0)

	cc, err := sim.Charge(context.Background(), domain.MethodCreditCard, 100)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cc.TransactionID, "CC-"))

	pp, err := sim.Charge(context.Background(), domain.MethodPaypal, 100)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(pp.TransactionID, "PP-"))

	parts := strings.SplitN(pp.TransactionID, "-", 3)
	require.Len(t, parts, 3)
	assert.Len(t, parts[2], 8)
	assert.NotEqual(t, cc.TransactionID, pp.TransactionID)
}
