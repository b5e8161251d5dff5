package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Error type constants for structured error recording
const (
	ErrorTypeNetwork = "network"
	ErrorTypeHTTP    = "http"
	ErrorTypeParse   = "parse"
	ErrorTypeStorage = "storage"
)

// RecordError records err on span with a type attribute and marks the span failed
func RecordError(span trace.Span, err error, errorType string, transient bool) {
	span.RecordError(err, trace.WithAttributes(
		attribute.String("error.type", errorType),
		attribute.Bool("error.transient", transient),
	))
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanOk marks span as successfully completed
func SetSpanOk(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
