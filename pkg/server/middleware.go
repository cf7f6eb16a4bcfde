package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"mercator-hq/gatekeep/pkg/telemetry/logging"
	"mercator-hq/gatekeep/pkg/telemetry/metrics"
	"mercator-hq/gatekeep/pkg/telemetry/tracing"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied request IDs.
const maxRequestIDLength = 128

// requestIDMiddleware assigns a request ID, honouring a client-provided
// X-Request-ID, and stores it in the context for log correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		ctx := logging.WithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoveryMiddleware turns handler panics into 500 responses. The stack
// is logged; clients only see a generic message.
func recoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "panic in handler",
					"error", fmt.Sprint(rec),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				respondError(w, http.StatusInternalServerError, CodeInternal,
					"an internal error occurred", nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// accessMiddleware logs each request and records HTTP metrics under the
// matched route pattern, so path parameters do not explode cardinality.
func accessMiddleware(logger *logging.Logger, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			collector.HTTPInFlight(1)
			defer collector.HTTPInFlight(-1)

			ctx := r.Context()
			tracing.SetRequestID(tracing.SpanFromContext(ctx), logging.GetRequestID(ctx))
			if traceID := tracing.TraceID(ctx); traceID != "" {
				ctx = logging.WithTraceID(ctx, traceID)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			latency := time.Since(start)
			route := routePattern(r)

			collector.RecordHTTPRequest(route, r.Method, status, latency)

			args := []any{
				"method", r.Method,
				"route", route,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"latency_ms", float64(latency.Microseconds()) / 1000,
				"remote_addr", r.RemoteAddr,
			}
			switch {
			case status >= 500:
				logger.ErrorContext(r.Context(), "request completed", args...)
			case status >= 400:
				logger.WarnContext(r.Context(), "request completed", args...)
			default:
				logger.DebugContext(r.Context(), "request completed", args...)
			}
		})
	}
}

// routePattern returns the chi route pattern, or "unmatched" for requests
// that hit no route.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
