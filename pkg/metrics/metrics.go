package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecommerce"

type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated     prometheus.Counter
	PaymentsInitiated *prometheus.CounterVec
	PaymentsConfirmed prometheus.Counter
	GatewayDeclines   prometheus.Counter
	StockConflicts    prometheus.Counter
	ConfirmDuration   prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders accepted with sufficient stock.",
		}),
		PaymentsInitiated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_initiated_total",
			Help:      "Payment attempts that reached pending status.",
		}, []string{"method"}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_confirmed_total",
			Help:      "Confirmations that committed stock and settled the order.",
		}),
		GatewayDeclines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_declines_total",
			Help:      "Simulated gateway declines during payment processing.",
		}),
		StockConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_conflicts_total",
			Help:      "Order or confirmation attempts rejected for insufficient stock.",
		}),
		ConfirmDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirm_duration_seconds",
			Help:      "Latency of the payment confirmation transaction.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.OrdersCreated, m.PaymentsInitiated, m.PaymentsConfirmed,
		m.GatewayDeclines, m.StockConflicts, m.ConfirmDuration)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
