package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usernotes"

var (
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Moderator commands seen, by community, verb and outcome.",
	}, []string{"community", "verb", "outcome"})

	Calls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "executor_calls_total",
		Help:      "Mutating platform calls, by action and result.",
	}, []string{"action", "result"})

	Retries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "executor_retries_total",
		Help:      "Transient failures that were retried.",
	})

	ThrottleWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "throttle_wait_seconds",
		Help:      "Time spent waiting on the shared throttle gate.",
		Buckets:   []float64{0, 0.5, 1, 2, 3, 4, 5, 10},
	})

	Restarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_restarts_total",
		Help:      "Community workers restarted after abnormal exit.",
	}, []string{"community"})

	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderator_refresh_total",
		Help:      "Moderator roster refreshes, by community and result.",
	}, []string{"community", "result"})
)
