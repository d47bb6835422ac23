package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sleuth"

// Metrics holds the Prometheus collectors of the bot. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	searches       *prometheus.CounterVec
	searchDuration *prometheus.HistogramVec
	pagesFetched   prometheus.Counter
	messagesRead   prometheus.Counter
	commands       *prometheus.CounterVec
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Number of history searches by kind and outcome.",
		}, []string{"kind", "status"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Wall time of history searches.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"kind"}),
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_pages_fetched_total",
			Help:      "Number of conversations.history pages fetched.",
		}),
		messagesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_messages_fetched_total",
			Help:      "Number of history messages fetched.",
		}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Number of bot commands by keyword.",
		}, []string{"keyword"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.searches,
		m.searchDuration,
		m.pagesFetched,
		m.messagesRead,
		m.commands,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePage records one fetched history page of size messages.
func (m *Metrics) ObservePage(size int) {
	if m == nil {
		return
	}
	m.pagesFetched.Inc()
	m.messagesRead.Add(float64(size))
}

// ObserveSearch records the outcome of one search.
func (m *Metrics) ObserveSearch(kind, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.searches.WithLabelValues(kind, status).Inc()
	m.searchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveCommand records one handled command keyword.
func (m *Metrics) ObserveCommand(keyword string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(keyword).Inc()
}
