package file

import (
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc/status"
)

var requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "webpath",
	Subsystem: "gnoi_file",
	Name:      "requests_total",
	Help:      "Total number of gNOI File requests by RPC and status code.",
}, []string{"rpc", "code"})

func init() {
	prometheus.MustRegister(requestsTotal)
}

// observe records the outcome of an RPC
func observe(rpc string, err error) {
	requestsTotal.WithLabelValues(rpc, status.Code(err).String()).Inc()
}
