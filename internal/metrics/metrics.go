package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LookupsTotal          = "nft_lookups_total"
	UpstreamRequestsTotal = "blockspan_requests_total"
	UpstreamDuration      = "blockspan_request_duration_seconds"
)

// Metrics records lookups and upstream calls on its own registry.
type Metrics struct {
	registry *prometheus.Registry
	lookups  *prometheus.CounterVec
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: LookupsTotal,
			Help: "Count of NFT lookups by outcome",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: UpstreamRequestsTotal,
			Help: "Count of Blockspan API requests",
		}, []string{"endpoint", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    UpstreamDuration,
			Help:    "Latency of Blockspan API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m.registry.MustRegister(m.lookups, m.requests, m.duration)
	return m
}

func (m *Metrics) ObserveLookup(outcome string) {
	m.lookups.WithLabelValues(outcome).Inc()
}

// ObserveRequest records one upstream call. Status 0 is reported as "error".
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(endpoint, label).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
