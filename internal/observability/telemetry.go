// Package observability builds the process logger and exposes the otel
// instruments shared by the page host and the HTTP layer.
package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/BrandonAlanDev/Portfolio2025"

// Tracer returns the named tracer from the global provider. Without an SDK
// installed the spans are no-ops.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationName + "/" + component)
}

// Meter returns the named meter from the global provider.
func Meter(component string) metric.Meter {
	return otel.GetMeterProvider().Meter(instrumentationName + "/" + component)
}
