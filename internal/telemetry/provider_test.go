package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/TwigBush/roleguard/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	before := otel.GetTracerProvider()

	for _, cfg := range []config.Tracing{
		{},
		{Enabled: true},
		{Endpoint: "http://localhost:4318/v1/traces"},
	} {
		shutdown, err := Setup(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Setup(%+v) error = %v", cfg, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown() error = %v", err)
		}
	}
	if otel.GetTracerProvider() != before {
		t.Fatalf("disabled Setup replaced the global provider")
	}
}

func TestNewProviderTagsService(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp, err := NewProvider(context.Background(), sdktrace.WithSyncer(exp))
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "probe")
	span.End()

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	found := false
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.name" && kv.Value.AsString() == serviceName {
			found = true
		}
	}
	if !found {
		t.Fatalf("service.name not set on resource")
	}
}

func TestSampler(t *testing.T) {
	if got := sampler(0).Description(); got != sdktrace.AlwaysSample().Description() {
		t.Fatalf("sampler(0) = %s", got)
	}
	if got := sampler(0.25).Description(); got == sdktrace.AlwaysSample().Description() {
		t.Fatalf("sampler(0.25) = %s, want ratio based", got)
	}
}
