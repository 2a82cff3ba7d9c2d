package simulator

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 轮次结果标签
const (
	outcomeBlock         = "block"
	outcomeValidateError = "validate_error"
	outcomeBuildError    = "build_error"
	outcomeAbandoned     = "abandoned"
)

var (
	simulatorMetricsOnce sync.Once

	roundsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finality",
			Subsystem: "simulator",
			Name:      "rounds_total",
			Help:      "Simulator rounds by outcome.",
		},
		[]string{"outcome"},
	)

	roundDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "finality",
		Subsystem: "simulator",
		Name:      "round_duration_seconds",
		Help:      "Time from ProcessProposal to block publication.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "finality",
			Subsystem: "simulator",
			Name:      "transactions_total",
			Help:      "Proposal transactions by stateful validation result.",
		},
		[]string{"result"},
	)

	blockHeight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "finality",
		Subsystem: "simulator",
		Name:      "block_height",
		Help:      "Height of the last block published by the simulator.",
	})
)

// initMetrics 首次创建模拟器时注册到默认注册表
func initMetrics() {
	simulatorMetricsOnce.Do(func() {
		for _, c := range []prometheus.Collector{roundsTotal, roundDuration, transactionsTotal, blockHeight} {
			if err := prometheus.Register(c); err != nil {
				var are prometheus.AlreadyRegisteredError
				if !errors.As(err, &are) {
					panic(err)
				}
			}
		}
	})
}

func observeRound(outcome string, started time.Time) {
	roundsTotal.WithLabelValues(outcome).Inc()
	if outcome == outcomeBlock && !started.IsZero() {
		roundDuration.Observe(time.Since(started).Seconds())
	}
}

func observeTransactions(accepted, rejected int) {
	transactionsTotal.WithLabelValues("accepted").Add(float64(accepted))
	transactionsTotal.WithLabelValues("rejected").Add(float64(rejected))
}
