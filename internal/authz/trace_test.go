package authz

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(s tracetest.SpanStub, key string) string {
	for _, kv := range s.Attributes {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestDecideRecordsSpan(t *testing.T) {
	t.Parallel()

	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	g, err := NewGuard(Options{
		Requirements: testRequirements,
		Tokens:       tokens(NewRoles("billing"), nil),
		Tracing:      tp,
	})
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}

	if ok, _ := g.CanAuthorize(context.Background(), "invoices.read"); !ok {
		t.Fatalf("CanAuthorize(invoices.read) = false")
	}
	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	s := spans[0]
	if s.Name != "authz.Guard.Decide" {
		t.Fatalf("span name = %q", s.Name)
	}
	if got := spanAttr(s, "authz.operation"); got != "invoices.read" {
		t.Fatalf("authz.operation = %q", got)
	}
	if got := spanAttr(s, "authz.outcome"); got != OutcomeAllowed {
		t.Fatalf("authz.outcome = %q", got)
	}

	exp.Reset()
	g2, _ := NewGuard(Options{
		Requirements: testRequirements,
		Tokens:       tokens(nil, errors.New("backend down")),
		Tracing:      tp,
	})
	_, _ = g2.CanAuthorize(context.Background(), "reports.read")
	s = exp.GetSpans()[0]
	if s.Status.Code != codes.Error || spanAttr(s, "authz.outcome") != OutcomeError {
		t.Fatalf("failed decision span = %v / %q", s.Status, spanAttr(s, "authz.outcome"))
	}
}
