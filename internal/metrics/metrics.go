package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "postboard"

// Metrics holds the Prometheus collectors for post operations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	mutations       *prometheus.CounterVec
	votes           *prometheus.CounterVec
	conflictRetries *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
}

// New registers the post collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_mutations_total",
			Help:      "Post mutations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		votes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Votes by direction and whether they changed the ledgers.",
		}, []string{"direction", "result"}),
		conflictRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_conflicts_total",
			Help:      "Optimistic concurrency conflicts seen by the post service.",
		}, []string{"operation"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "post_cache_lookups_total",
			Help:      "Post cache lookups by result.",
		}, []string{"result"}),
	}
}

// ObserveMutation counts a finished mutation. outcome is e.g. "ok", "forbidden", "conflict".
func (m *Metrics) ObserveMutation(operation, outcome string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation, outcome).Inc()
}

// ObserveVote counts an applied vote; changed is false for idempotent re-votes
func (m *Metrics) ObserveVote(direction string, changed bool) {
	if m == nil {
		return
	}
	result := "changed"
	if !changed {
		result = "unchanged"
	}
	m.votes.WithLabelValues(direction, result).Inc()
}

// ObserveConflict counts one version conflict for operation
func (m *Metrics) ObserveConflict(operation string) {
	if m == nil {
		return
	}
	m.conflictRetries.WithLabelValues(operation).Inc()
}

// ObserveCacheLookup counts a cache hit or miss
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
