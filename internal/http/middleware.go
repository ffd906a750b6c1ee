package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	applog "trastes/internal/log"
	"trastes/internal/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}

// requestLogger tags the context logger with a request ID, echoes the ID
// back, and logs the start and end of every request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestID(r)
		ip := clientIP(r)

		logger := applog.FromContext(r.Context()).With(applog.NewFields().WithRequestID(id).ToSlice()...)
		ctx := applog.NewContext(r.Context(), logger)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", id)

		applog.LogHTTPStart(ctx, r, ip)
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		observability.HTTPRequest(r.Method, strconv.Itoa(rw.status))
		applog.LogHTTPEnd(ctx, r, rw.status, time.Since(start).Milliseconds(), ip)
	})
}
