package middleware

import (
	"context"
	"net/http"
	"time"
)

type logger interface {
	Info(msg string, args ...any)
}

// accessRecord collects per-request fields that become known at different
// points of the chain: the writer fills status and size, auth fills the
// operator id.
type accessRecord struct {
	status     int
	size       int
	operatorID string
}

type recordKey struct{}

// markOperator attaches the authenticated operator id to the request's
// access record. No-op when the request is not being logged.
func markOperator(ctx context.Context, id string) {
	if rec, ok := ctx.Value(recordKey{}).(*accessRecord); ok {
		rec.operatorID = id
	}
}

type recordingWriter struct {
	http.ResponseWriter
	rec *accessRecord
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.rec.size += n
	return n, err
}

func (w *recordingWriter) WriteHeader(statusCode int) {
	w.ResponseWriter.WriteHeader(statusCode)
	w.rec.status = statusCode
}

// AccessLog logs every handled request: method, uri, latency, status and
// response size, plus the operator id when auth ran further down the chain.
func AccessLog(l logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &accessRecord{status: http.StatusOK}

			ctx := context.WithValue(r.Context(), recordKey{}, rec)
			next.ServeHTTP(&recordingWriter{ResponseWriter: w, rec: rec}, r.WithContext(ctx))

			fields := []any{
				"method", r.Method,
				"uri", r.RequestURI,
				"duration", time.Since(start),
				"status", rec.status,
				"size", rec.size,
			}
			if rec.operatorID != "" {
				fields = append(fields, "operator", rec.operatorID)
			}

			l.Info("got HTTP request", fields...)
		})
	}
}
