package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Optional Prometheus exposition of decoder health.
 *
 * Description:	Counters and gauges are updated synchronously from the
 *		decode path; only the HTTP listener runs on its own
 *		goroutine, owned by whoever started it.
 *
 *------------------------------------------------------------------*/

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects decoder statistics for Prometheus scraping.
type Metrics struct {
	groupsDecoded prometheus.Counter
	blockErrors   prometheus.Counter
	currentBLER   prometheus.Gauge
	syncState     prometheus.Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		groupsDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "redbone_groups_decoded_total",
			Help: "Groups assembled from the bit stream, including partial ones.",
		}),
		blockErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "redbone_block_errors_total",
			Help: "Blocks that were missing or received with errors, corrected or not, within decoded groups.",
		}),
		currentBLER: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redbone_block_error_rate",
			Help: "Block error rate in percent, averaged over recent groups.",
		}),
		syncState: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "redbone_synchronized",
			Help: "Whether block synchronization currently holds (0 or 1).",
		}),
	}
}

func (m *Metrics) observeGroup(numErrors int, bler float32, hasBLER, inSync bool) {
	m.groupsDecoded.Inc()
	m.blockErrors.Add(float64(numErrors))
	if hasBLER {
		m.currentBLER.Set(float64(bler))
	}
	if inSync {
		m.syncState.Set(1)
	} else {
		m.syncState.Set(0)
	}
}

// Serve exposes /metrics on addr. It blocks, so run it on its own
// goroutine.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
