package common

import "github.com/prometheus/client_golang/prometheus"

const (
	HTTPRequestTotal             = "http_requests_total"
	HTTPRequestDurationSeconds   = "http_request_duration_seconds"
	RewardTransitionTotal        = "reward_transitions_total"
	RewardSettlementFailure      = "reward_settlement_failure_total"
	RewardReconciliationRequired = "reward_reconciliation_required_total"
	RewardPendingSettlement      = "reward_pending_settlements"
)

var (
	PromGauges = map[string]*prometheus.GaugeVec{
		RewardPendingSettlement: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: RewardPendingSettlement,
			Help: "Number of chosen rewards still waiting for payout after the last retry",
		}, nil),
	}

	PromCounters = map[string]*prometheus.CounterVec{
		HTTPRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: HTTPRequestTotal,
			Help: "Count of all HTTP requests",
		}, []string{"path", "code"}),
		RewardTransitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardTransitionTotal,
			Help: "Count of reward state transitions",
		}, []string{"type"}),
		RewardSettlementFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardSettlementFailure,
			Help: "Count of failed reward payouts",
		}, []string{"reason"}),
		RewardReconciliationRequired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: RewardReconciliationRequired,
			Help: "Count of captured payments which could not be recorded",
		}, []string{"stage"}),
	}

	PromHistograms = map[string]*prometheus.HistogramVec{
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: HTTPRequestDurationSeconds,
			Help: "Duration of all HTTP requests",
		}, []string{"path", "code"}),
	}
)
