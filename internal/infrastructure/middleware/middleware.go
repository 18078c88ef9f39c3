// Package middleware holds the HTTP middleware of the pair group API
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/damon-houk/pair-group-store/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"

	// RequestIDHeader carries the request id in both directions
	RequestIDHeader = "X-Request-ID"

	maxRequestIDLength = 128
)

// RequestIDMiddleware propagates the caller's request id or assigns a new one.
// Caller ids that are too long or contain non-printable characters are
// replaced, since they end up in every log line of the request.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

// LoggingMiddleware writes one line per finished request. Server errors are
// logged at ERROR, client errors at WARN and the rest at INFO. The route
// template and the pair group and pair ids from the path are included when
// the router matched one.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			requestID := GetRequestID(r.Context())

			log.Debug("Request received", map[string]interface{}{
				"request_id":  requestID,
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})

			next.ServeHTTP(rec, r)

			fields := map[string]interface{}{
				"request_id":     requestID,
				"method":         r.Method,
				"path":           r.URL.Path,
				"route":          routeTemplate(r),
				"status":         rec.statusCode,
				"duration_ms":    time.Since(start).Milliseconds(),
				"content_length": rec.contentLength,
			}
			vars := mux.Vars(r)
			if id, ok := vars["id"]; ok {
				fields["pair_group_id"] = id
			}
			if id, ok := vars["pairId"]; ok {
				fields["pair_id"] = id
			}

			switch {
			case rec.statusCode >= http.StatusInternalServerError:
				log.Error("Request failed", fields)
			case rec.statusCode >= http.StatusBadRequest:
				log.Warn("Request rejected", fields)
			default:
				log.Info("Request completed", fields)
			}
		})
	}
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// statusRecorder remembers the first status code and the body size a handler
// wrote. It is shared by the logging and metrics middleware.
type statusRecorder struct {
	http.ResponseWriter
	statusCode    int
	wroteHeader   bool
	contentLength int64
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	if !rec.wroteHeader {
		rec.statusCode = statusCode
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(statusCode)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	n, err := rec.ResponseWriter.Write(b)
	rec.contentLength += int64(n)
	return n, err
}
