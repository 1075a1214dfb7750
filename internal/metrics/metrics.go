// Package metrics exposes decoder activity to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gesture outcomes.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "nomatch"
	OutcomeError   = "error"
)

// Metrics holds the collectors of one server. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry
	gestures *prometheus.CounterVec
	decode   prometheus.Histogram
	words    prometheus.Gauge
}

// New creates collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swipeserve_gestures_total",
			Help: "Decoded gestures by outcome",
		}, []string{"outcome"}),
		decode: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "swipeserve_decode_seconds",
			Help:    "Time from gesture end to ranked candidates",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		words: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "swipeserve_dictionary_words",
			Help: "Words in the loaded dictionary",
		}),
	}
	m.registry.MustRegister(m.gestures, m.decode, m.words)
	return m
}

// ObserveGesture counts one gesture and its decode time.
func (m *Metrics) ObserveGesture(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.gestures.WithLabelValues(outcome).Inc()
	m.decode.Observe(elapsed.Seconds())
}

// SetDictionaryWords reports the dictionary size.
func (m *Metrics) SetDictionaryWords(n int) {
	if m == nil {
		return
	}
	m.words.Set(float64(n))
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}

// ListenAndServe serves Handler on addr until ctx is done.
func (m *Metrics) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("Metrics shutdown: %v", err)
		}
	}()

	log.Debugf("Serving metrics on %s/metrics", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
