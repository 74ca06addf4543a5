// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the distributor.
type Metrics struct {
	// Crank metrics
	CranksTotal       *prometheus.CounterVec
	CrankDuration     prometheus.Histogram
	PagesProcessed    prometheus.Counter
	DaysClosed        prometheus.Counter
	BaseFeeAborts     prometheus.Counter
	VaultsInitialized prometheus.Counter

	// Payout metrics
	InvestorPayoutsTotal   prometheus.Counter
	InvestorPayoutLamports prometheus.Counter
	CreatorPayoutLamports  prometheus.Counter
	DustWithheldPayouts    prometheus.Counter
	DailyCapTruncations    prometheus.Counter

	// Ledger gauges
	ClaimedToday     *prometheus.GaugeVec
	DistributedToday *prometheus.GaugeVec
	CarryOver        *prometheus.GaugeVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "star_fee_distributor"
	}

	return &Metrics{
		CranksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "cranks_total",
			Help:      "Total number of crank invocations by outcome",
		}, []string{"outcome"}),
		CrankDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "duration_seconds",
			Help:      "Crank invocation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "pages_processed_total",
			Help:      "Total number of investor pages processed",
		}),
		DaysClosed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "days_closed_total",
			Help:      "Total number of distribution days closed",
		}),
		BaseFeeAborts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "base_fee_aborts_total",
			Help:      "Total number of cranks aborted on base fee detection",
		}),
		VaultsInitialized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "crank",
			Name:      "vaults_initialized_total",
			Help:      "Total number of vaults initialized",
		}),

		InvestorPayoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "investor_payouts_total",
			Help:      "Total number of individual investor payouts",
		}),
		InvestorPayoutLamports: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "investor_lamports_total",
			Help:      "Total lamports paid to investors",
		}),
		CreatorPayoutLamports: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "creator_lamports_total",
			Help:      "Total lamports paid to creators at day close",
		}),
		DustWithheldPayouts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "dust_withheld_total",
			Help:      "Total number of payouts withheld below the dust threshold",
		}),
		DailyCapTruncations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payout",
			Name:      "daily_cap_truncations_total",
			Help:      "Total number of pages truncated by the daily cap",
		}),

		ClaimedToday: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "claimed_today_lamports",
			Help:      "Lamports claimed today per vault",
		}, []string{"vault"}),
		DistributedToday: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "distributed_today_lamports",
			Help:      "Lamports distributed today per vault",
		}, []string{"vault"}),
		CarryOver: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "carry_over_lamports",
			Help:      "Carry-over lamports per vault",
		}, []string{"vault"}),
	}
}

// ObserveProgress updates the per-vault ledger gauges.
func (m *Metrics) ObserveProgress(vault string, claimed, distributed, carryOver uint64) {
	m.ClaimedToday.WithLabelValues(vault).Set(float64(claimed))
	m.DistributedToday.WithLabelValues(vault).Set(float64(distributed))
	m.CarryOver.WithLabelValues(vault).Set(float64(carryOver))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
