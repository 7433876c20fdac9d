package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dubvote"

// Vote error reasons.
const (
	ReasonInvalid     = "invalid"
	ReasonUnavailable = "unavailable"
	ReasonInternal    = "internal"
)

type Metrics struct {
	VotesTotal      *prometheus.CounterVec
	VoteErrorsTotal *prometheus.CounterVec
	PublishFailures prometheus.Counter
	StoreAvailable  prometheus.Gauge
}

func New(r prometheus.Registerer) *Metrics {
	m := &Metrics{
		VotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Votes counted by this instance, by option.",
		}, []string{"option"}),
		VoteErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_errors_total",
			Help:      "Rejected or failed vote and results requests, by reason.",
		}, []string{"reason"}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_failures_total",
			Help:      "Vote events that could not be published.",
		}),
		StoreAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_available",
			Help:      "1 when the counter store handle is present, 0 otherwise.",
		}),
	}

	r.MustRegister(m.VotesTotal, m.VoteErrorsTotal, m.PublishFailures, m.StoreAvailable)
	return m
}
