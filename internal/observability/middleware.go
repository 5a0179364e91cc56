package observability

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/photogallery/server/observability"

// HTTPMetrics holds HTTP-related metrics
type HTTPMetrics struct {
	requests       metric.Int64Counter
	duration       metric.Float64Histogram
	responseSize   metric.Int64Histogram
	activeRequests metric.Int64UpDownCounter
	upgrades       metric.Int64Counter
}

// NewHTTPMetrics creates HTTP metrics instruments
func NewHTTPMetrics() (*HTTPMetrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &HTTPMetrics{}
	var err error

	if m.requests, err = meter.Int64Counter("http.server.request_count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.responseSize, err = meter.Int64Histogram("http.server.response.size",
		metric.WithDescription("HTTP response body size in bytes"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if m.activeRequests, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{requests}")); err != nil {
		return nil, err
	}
	if m.upgrades, err = meter.Int64Counter("http.server.websocket_upgrades",
		metric.WithDescription("Connections switched to the websocket change feed"),
		metric.WithUnit("{connections}")); err != nil {
		return nil, err
	}
	return m, nil
}

// statusRecorder captures the status code and body size of a response
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

func (rw *statusRecorder) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets websocket upgrades pass through the recorder
func (rw *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	rw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func record(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

// routePattern returns the matched chi pattern such as /api/albums/{id},
// or "unmatched" before routing or for 404s. Only valid after the request
// has been served.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// TracingMiddleware starts a server span per request, continuing any
// incoming trace context. The span is renamed to the matched route once
// the handler returns.
func TracingMiddleware(serviceName string) func(http.Handler) http.Handler {
	tracer := otel.Tracer(instrumentationName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			propagator := otel.GetTextMapPropagator()
			ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.ServiceName(serviceName),
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					semconv.URLScheme(scheme(r)),
					semconv.ServerAddress(r.Host),
					semconv.ClientAddress(r.RemoteAddr),
					semconv.UserAgentOriginal(r.UserAgent()),
				),
			)
			defer span.End()

			propagator.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			rw := record(w)
			r = r.WithContext(ctx)
			next.ServeHTTP(rw, r)

			route := routePattern(r)
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				semconv.HTTPRoute(route),
				semconv.HTTPResponseStatusCode(rw.status),
				attribute.Int64("http.response.body.size", rw.size),
			)
			if rw.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rw.status))
			}
		})
	}
}

// MetricsMiddleware records request counts, latency and response sizes
// labelled by method, route pattern and status.
func MetricsMiddleware(metrics *HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			method := metric.WithAttributes(semconv.HTTPRequestMethodKey.String(r.Method))
			metrics.activeRequests.Add(ctx, 1, method)
			defer metrics.activeRequests.Add(ctx, -1, method)

			rw := record(w)
			next.ServeHTTP(rw, r)

			if rw.status == http.StatusSwitchingProtocols {
				metrics.upgrades.Add(ctx, 1)
				return
			}

			attrs := metric.WithAttributes(
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRoute(routePattern(r)),
				semconv.HTTPResponseStatusCode(rw.status),
			)
			metrics.requests.Add(ctx, 1, attrs)
			metrics.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
			metrics.responseSize.Record(ctx, rw.size, attrs)
		})
	}
}

func scheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if s := r.Header.Get("X-Forwarded-Proto"); s != "" {
		return s
	}
	return "http"
}
