package tracing

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Scope is a thin handle over an active span.
type Scope interface {
	End()
	TraceError(err error)
	TraceIfError(err error)
	AddEvent(name string, attributes map[string]any)
	SetAttribute(key string, value any)
	SetAttributes(attributes map[string]any)
}

// NewScope wraps span.
func NewScope(span oteltrace.Span) Scope {
	return &spanScope{span: span}
}

type spanScope struct {
	span oteltrace.Span
}

func (s *spanScope) End() { s.span.End() }

func (s *spanScope) TraceError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *spanScope) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}

// AddEvent records a point-in-time event that does not change the span status.
func (s *spanScope) AddEvent(name string, attributes map[string]any) {
	s.span.AddEvent(name, oteltrace.WithAttributes(toAttributes(attributes)...))
}

func (s *spanScope) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

func (s *spanScope) SetAttributes(attributes map[string]any) {
	s.span.SetAttributes(toAttributes(attributes)...)
}

func toAttributes(attributes map[string]any) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attributes))
	for key, value := range attributes {
		kvs = append(kvs, toAttribute(key, value))
	}
	return kvs
}

// toAttribute maps ids, flags and labels to typed attributes; anything else is formatted.
func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case int64:
		return attribute.Int64(key, v)
	case int:
		return attribute.Int(key, v)
	case bool:
		return attribute.Bool(key, v)
	case string:
		return attribute.String(key, v)
	case error:
		return attribute.String(key, v.Error())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
