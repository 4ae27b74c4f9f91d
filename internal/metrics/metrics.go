package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drawparty",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "drawparty",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "drawparty",
		Name:      "active_rooms",
		Help:      "Number of rooms currently holding at least one connection",
	})

	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "drawparty",
		Name:      "active_connections",
		Help:      "Number of open WebSocket connections",
	})

	eventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "drawparty",
		Name:      "events_received_total",
		Help:      "Inbound game events by kind",
	}, []string{"event"})

	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "drawparty",
		Name:      "frames_dropped_total",
		Help:      "Outbound frames dropped because a peer queue was full or closed",
	})
)

func SetActiveRooms(n int)      { activeRooms.Set(float64(n)) }
func ConnectionOpened()         { activeConnections.Inc() }
func ConnectionClosed()         { activeConnections.Dec() }
func EventReceived(kind string) { eventsReceived.WithLabelValues(kind).Inc() }
func FrameDropped()             { framesDropped.Inc() }

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack is required so the WebSocket upgrade still works behind the
// middleware.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request counts and latency with Prometheus labels.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
