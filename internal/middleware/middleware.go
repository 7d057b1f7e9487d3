package middleware

import (
	"context"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"tcsgo-engine/pkg/apierror"
	"tcsgo-engine/pkg/uid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// EventIDKey is the context key for the operation correlation id. The
// engine uses it as the default eventId when the caller supplies none.
const EventIDKey contextKey = "event_id"

// EventID attaches a correlation id to each request, taken from the
// X-Event-ID header or generated.
func EventID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID := r.Header.Get("X-Event-ID")
		if eventID == "" {
			eventID = uid.New()
		}

		w.Header().Set("X-Event-ID", eventID)

		ctx := context.WithValue(r.Context(), EventIDKey, eventID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetEventID retrieves the correlation id from context.
func GetEventID(ctx context.Context) string {
	if id, ok := ctx.Value(EventIDKey).(string); ok {
		return id
	}
	return ""
}

// Logging is a middleware that logs HTTP requests.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log.Printf(
			"[%s] %s event=%s %d %s",
			r.Method,
			r.URL.Path,
			GetEventID(r.Context()),
			wrapped.statusCode,
			duration,
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Recovery is a middleware that recovers from panics, so nothing escapes
// the operation boundary uncaught.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %v\n%s", err, debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(apierror.InternalError("internal server error").ToJSON())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
