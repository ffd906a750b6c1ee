package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	recordsAppended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trastes",
		Subsystem: "records",
		Name:      "appended_total",
		Help:      "Chore records stored, by activity and person.",
	}, []string{"activity", "person"})

	storeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trastes",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Failed record store operations, by operation.",
	}, []string{"op"})

	chartRender = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trastes",
		Subsystem: "chart",
		Name:      "render_duration_seconds",
		Help:      "Time spent rendering one pie chart.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	rowsSynced = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trastes",
		Subsystem: "sync",
		Name:      "rows_total",
		Help:      "Records mirrored to Google Sheets, by result.",
	}, []string{"result"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trastes",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, by method and status code.",
	}, []string{"method", "status"})
)

func init() {
	prometheus.MustRegister(recordsAppended, storeErrors, chartRender, rowsSynced, httpRequests)
}

// RecordAppended counts one stored record.
func RecordAppended(activity, person string) {
	recordsAppended.WithLabelValues(activity, person).Inc()
}

// StoreError counts a failed "append" or "read".
func StoreError(op string) {
	storeErrors.WithLabelValues(op).Inc()
}

// ChartRendered observes how long a chart took since start.
func ChartRendered(start time.Time) {
	chartRender.Observe(time.Since(start).Seconds())
}

// RowsSynced counts n mirrored records with result "ok" or "error".
func RowsSynced(result string, n int) {
	if n <= 0 {
		return
	}
	rowsSynced.WithLabelValues(result).Add(float64(n))
}

func HTTPRequest(method, status string) {
	httpRequests.WithLabelValues(method, status).Inc()
}
