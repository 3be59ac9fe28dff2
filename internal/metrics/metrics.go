// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every asicreg collector.
var Registry = prometheus.NewRegistry()

var (
	MirrorPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asicreg_mirror_polls_total",
			Help: "Number of register poll cycles by unit and result",
		},
		[]string{"unit", "result"},
	)

	MirrorPollDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asicreg_mirror_poll_duration_seconds",
			Help:    "Time spent reading one unit's registers",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
		[]string{"unit"},
	)

	MirrorWriteErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asicreg_mirror_write_errors_total",
			Help: "Number of failed deliveries to mirror targets",
		},
		[]string{"unit"},
	)

	MirrorHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asicreg_mirror_health",
			Help: "Device status health code per unit",
		},
		[]string{"unit"},
	)

	RegisterValue = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asicreg_register_value",
			Help: "Last mirrored value of a register word",
		},
		[]string{"unit", "register", "word"},
	)

	RunInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asicreg_mirror_run_info",
			Help: "Identifies the running mirror instance",
		},
		[]string{"run_id", "generation"},
	)
)

func init() {
	Registry.MustRegister(MirrorPollsTotal)
	Registry.MustRegister(MirrorPollDuration)
	Registry.MustRegister(MirrorWriteErrorsTotal)
	Registry.MustRegister(MirrorHealth)
	Registry.MustRegister(RegisterValue)
	Registry.MustRegister(RunInfo)
}

// ObserveWords publishes one block of mirrored words.
func ObserveWords(unit, register string, words []uint32) {
	for i, w := range words {
		RegisterValue.WithLabelValues(unit, register, strconv.Itoa(i)).Set(float64(w))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
