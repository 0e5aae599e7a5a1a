package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type LoggerOptions struct {
	// RequestIDHeader is consulted before generating a random request id.
	RequestIDHeader string
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		RequestIDHeader: "X-Request-ID",
	}
}

type statusWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.statusCode = http.StatusOK
		w.statusWritten = true
	}
	return w.ResponseWriter.Write(b)
}

// WithLogger logs one line per request with method, path, status and duration.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(opts.RequestIDHeader)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)

			logger.WithFields(logrus.Fields{
				"request-id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     sw.statusCode,
				"duration":   time.Since(start).String(),
			}).Info("Request handled")
		})
	}
}
