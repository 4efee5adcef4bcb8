package tracing

import (
	"bytes"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(t.Context(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := shutdown(t.Context()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestInit_ExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(t.Context(), Config{
		Enabled:     true,
		ServiceName: "flashcards-test",
		SampleRatio: 1,
		Writer:      &buf,
	})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, span := otel.Tracer("test").Start(t.Context(), "delivery.Deliver")
	span.End()

	if err := shutdown(t.Context()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), "delivery.Deliver") {
		t.Errorf("exported spans missing span name: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "flashcards-test") {
		t.Errorf("exported spans missing service name")
	}
}
