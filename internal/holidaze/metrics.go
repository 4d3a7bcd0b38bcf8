package holidaze

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "holidaze_api_requests_total",
			Help: "Calls made to the venue service",
		},
		[]string{"op", "status"},
	)
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "holidaze_api_request_duration_seconds",
			Help:    "Latency of calls to the venue service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// RegisterMetrics registers the client collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{apiRequestsTotal, apiRequestDuration} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func observe(op string, status int, d time.Duration) {
	code := "error"
	if status != 0 {
		code = strconv.Itoa(status)
	}
	apiRequestsTotal.WithLabelValues(op, code).Inc()
	apiRequestDuration.WithLabelValues(op).Observe(d.Seconds())
}
