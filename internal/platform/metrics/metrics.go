package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loki-messenger/go-backend/internal/mnemonic"
)

const namespace = "loki"

// Registry owns the daemon's collectors. A nil *Registry is a valid no-op.
type Registry struct {
	reg        *prometheus.Registry
	codecOps   *prometheus.CounterVec
	onboarding *prometheus.CounterVec
	rpcCalls   *prometheus.CounterVec
	rpcLatency *prometheus.HistogramVec
}

func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		codecOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mnemonic",
			Name:      "operations_total",
			Help:      "Mnemonic encode/decode operations by outcome.",
		}, []string{"op", "result"}),
		onboarding: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "onboarding",
			Name:      "steps_total",
			Help:      "Onboarding steps by outcome.",
		}, []string{"step", "result"}),
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "JSON-RPC requests by method and error code.",
		}, []string{"method", "code"}),
		rpcLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	r.reg.MustRegister(
		r.codecOps,
		r.onboarding,
		r.rpcCalls,
		r.rpcLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

func (r *Registry) ObserveCodec(op string, err error) {
	if r == nil {
		return
	}
	r.codecOps.WithLabelValues(op, CodecResult(err)).Inc()
}

func (r *Registry) ObserveOnboarding(step string, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.onboarding.WithLabelValues(step, result).Inc()
}

func (r *Registry) ObserveRPC(method string, code int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.rpcCalls.WithLabelValues(method, strconv.Itoa(code)).Inc()
	r.rpcLatency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// CodecResult maps codec errors to a bounded label set.
func CodecResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, mnemonic.ErrInvalidKeyLength):
		return "invalid_key_length"
	case errors.Is(err, mnemonic.ErrMalformedPhrase):
		return "malformed_phrase"
	case errors.Is(err, mnemonic.ErrUnknownWord):
		return "unknown_word"
	case errors.Is(err, mnemonic.ErrAmbiguousPrefix):
		return "ambiguous_prefix"
	case errors.Is(err, mnemonic.ErrChecksumMismatch):
		return "checksum_mismatch"
	default:
		return "error"
	}
}
