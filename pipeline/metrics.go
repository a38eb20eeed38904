package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TurnsProcessed      *prometheus.CounterVec
	RetrievalTier       *prometheus.CounterVec
	RetrievalTierErrors *prometheus.CounterVec
	Fallbacks           *prometheus.CounterVec
	ValidationErrors    *prometheus.CounterVec
	PersistenceFailures prometheus.Counter
	TurnDuration        prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TurnsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_turns_total",
			Help: "Total number of turns processed, by classified intent",
		}, []string{"intent"}),
		RetrievalTier: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_retrieval_tier_total",
			Help: "Retrieval cascade outcomes, by the tier that produced results",
		}, []string{"tier"}),
		RetrievalTierErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_retrieval_tier_errors_total",
			Help: "Retrieval tiers that failed and were treated as empty",
		}, []string{"tier"}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_fallbacks_total",
			Help: "Fallback responses used, by component",
		}, []string{"component"}),
		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_validation_errors_total",
			Help: "Turns rejected before processing, by error type",
		}, []string{"type"}),
		PersistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_persistence_failures_total",
			Help: "Conversation writes that failed",
		}),
		TurnDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "assistant_turn_duration_seconds",
			Help:    "Time taken to produce a reply",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
