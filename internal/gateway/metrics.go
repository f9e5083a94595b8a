package gateway

import "github.com/prometheus/client_golang/prometheus"

var opTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "gateway_requests_total", Help: "Count of gateway operations"},
	[]string{"backend", "op", "outcome"},
)

func init() { prometheus.MustRegister(opTotal) }

func countOp(backend, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	opTotal.WithLabelValues(backend, op, outcome).Inc()
}
