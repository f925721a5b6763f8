package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrument returns a middleware that wraps the handler with otelhttp
// tracing and metrics. Span names use the mux route pattern when one matches,
// keeping cardinality bounded.
func Instrument(service string, mux *http.ServeMux, tp trace.TracerProvider, mp metric.MeterProvider) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithMeterProvider(mp),
			otelhttp.WithSpanOptions(trace.WithAttributes(
				attribute.String("service.component", service),
			)),
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				if _, pattern := mux.Handler(r); pattern != "" {
					return pattern
				}
				return operation
			}),
		)
	}
}
