package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records counters for the earnings and payout pipeline.
type LedgerMetrics struct {
	earningsPosted *prometheus.CounterVec
	walletEntries  *prometheus.CounterVec
	payoutDecided  *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	earningsPosted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "earnings_postings_total",
		Help: "Earnings posting attempts by outcome.",
	}, []string{"outcome"})
	walletEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_entries_total",
		Help: "Wallet ledger entries written, by direction.",
	}, []string{"direction"})
	payoutDecided := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_decisions_total",
		Help: "Payout request decisions by status.",
	}, []string{"status"})
	reg.MustRegister(earningsPosted, walletEntries, payoutDecided)
	return &LedgerMetrics{
		earningsPosted: earningsPosted,
		walletEntries:  walletEntries,
		payoutDecided:  payoutDecided,
	}
}

// IncEarningsPosted increments the posting counter for the given outcome.
func (l *LedgerMetrics) IncEarningsPosted(outcome string) {
	if l == nil || l.earningsPosted == nil {
		return
	}
	l.earningsPosted.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWalletEntry increments the ledger entry counter for the given direction.
func (l *LedgerMetrics) IncWalletEntry(direction string) {
	if l == nil || l.walletEntries == nil {
		return
	}
	l.walletEntries.WithLabelValues(normalizeLabel(direction)).Inc()
}

// IncPayoutDecision increments the payout decision counter for the given status.
func (l *LedgerMetrics) IncPayoutDecision(status string) {
	if l == nil || l.payoutDecided == nil {
		return
	}
	l.payoutDecided.WithLabelValues(normalizeLabel(status)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
