package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Telemetry wraps the relay in otelhttp so incoming trace context is
// extracted and the standard HTTP server metrics are recorded.
func Telemetry(serviceName string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(serviceName)
}
