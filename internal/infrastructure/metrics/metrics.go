package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Withdrawal metrics
	WithdrawalsCreated  prometheus.Counter
	WithdrawalsSettled  prometheus.Counter
	WithdrawalsRejected *prometheus.CounterVec
	SettlementDuration  prometheus.Histogram
	WithdrawalAmount    prometheus.Histogram

	// Deposit/quota metrics
	DepositsRecorded     prometheus.Counter
	DepositVolume        prometheus.Histogram
	QuotaBonusesUnlocked prometheus.Counter
	CommissionsCredited  *prometheus.CounterVec

	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferErrors   *prometheus.CounterVec
	FeeQuotes        prometheus.Counter

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	EventsPublished  prometheus.Counter
	EventPublishLags prometheus.Histogram
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		WithdrawalsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_withdrawals_created_total",
			Help: "Total number of withdrawal requests created",
		}),
		WithdrawalsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_withdrawals_settled_total",
			Help: "Total number of withdrawals settled",
		}),
		WithdrawalsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosolo_withdrawals_rejected_total",
				Help: "Total number of withdrawals rejected by reason",
			},
			[]string{"reason"},
		),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mosolo_settlement_duration_seconds",
			Help:    "Duration of withdrawal settlements",
			Buckets: prometheus.DefBuckets,
		}),
		WithdrawalAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mosolo_withdrawal_amount",
			Help:    "Withdrawal amounts in smallest currency unit",
			Buckets: []float64{1000, 10000, 50000, 100000, 500000, 1000000, 5000000},
		}),

		DepositsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_deposits_recorded_total",
			Help: "Total number of agent deposits recorded",
		}),
		DepositVolume: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mosolo_deposit_amount",
			Help:    "Deposit amounts in smallest currency unit",
			Buckets: []float64{1000, 10000, 50000, 100000, 500000, 1000000, 5000000},
		}),
		QuotaBonusesUnlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_quota_bonuses_unlocked_total",
			Help: "Total number of daily quota bonuses unlocked",
		}),
		CommissionsCredited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosolo_commissions_credited_total",
				Help: "Total commission credits by source",
			},
			[]string{"source"},
		),

		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_transfers_created_total",
			Help: "Total number of peer transfers created",
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosolo_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),
		FeeQuotes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_fee_quotes_total",
			Help: "Total number of fee quotes computed",
		}),

		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosolo_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mosolo_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosolo_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosolo_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mosolo_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mosolo_outbox_events_published_total",
			Help: "Total outbox events published",
		}),
		EventPublishLags: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mosolo_outbox_publish_lag_seconds",
			Help:    "Delay between event creation and publication",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
	}
}
