package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BotUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "attendbot", Name: "updates_total", Help: "Processed telegram updates",
	})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "attendbot", Name: "handler_errors_total", Help: "Handler errors",
	})
	// outcome: ok | clarification | failure
	Extractions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendbot", Name: "extractions_total", Help: "NLU extraction outcomes",
	}, []string{"outcome"})
	ExtractionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attendbot", Name: "extraction_seconds", Help: "NLU extraction latency",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16},
	})
	IntentOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendbot", Name: "intents_total", Help: "Intent dispatch outcomes",
	}, []string{"intent", "outcome"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attendbot", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(BotUpdates, HandlerErrors, Extractions, ExtractionDuration, IntentOutcomes, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveExtraction(outcome string, d time.Duration) {
	Extractions.WithLabelValues(outcome).Inc()
	ExtractionDuration.Observe(d.Seconds())
}
