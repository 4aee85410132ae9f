package observability

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tbourn/thoughts-chat/internal/config"
)

func preserveOTelGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func enabledCfg(name string, insecure bool) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    insecure,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1.0,
	}
}

func TestSetupOTel_Disabled_NoOp(t *testing.T) {
	preserveOTelGlobals(t)
	prev := otel.GetTracerProvider()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{Enabled: false}, "v0.0.0")
	if err != nil || shutdown == nil {
		t.Fatalf("SetupOTel disabled = %v, %v", shutdown, err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown: %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatal("disabled setup replaced the global provider")
	}
}

func TestSetupOTel_InsecureAndTLS_InstallProvider(t *testing.T) {
	for _, insecure := range []bool{true, false} {
		preserveOTelGlobals(t)

		shutdown, err := SetupOTel(context.Background(), enabledCfg("thoughts-chat", insecure), "v1.2.3")
		if err != nil {
			t.Fatalf("insecure=%v: %v", insecure, err)
		}
		if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
			t.Fatalf("insecure=%v: expected *sdktrace.TracerProvider", insecure)
		}

		carrier := propagation.MapCarrier{}
		ctx, span := otel.Tracer("test").Start(context.Background(), "send")
		otel.GetTextMapPropagator().Inject(ctx, carrier)
		span.End()
		if !strings.HasPrefix(carrier.Get("traceparent"), "00-") {
			t.Fatalf("traceparent not injected: %v", carrier)
		}
		_ = shutdown(context.Background())
	}
}

func TestSetupOTel_ResourceCarriesServiceAndExtras(t *testing.T) {
	preserveOTelGlobals(t)

	orig := newServiceResourceFn
	t.Cleanup(func() { newServiceResourceFn = orig })

	var got []attribute.KeyValue
	newServiceResourceFn = func(ctx context.Context, attrs []attribute.KeyValue) (*resource.Resource, error) {
		got = attrs
		return orig(ctx, attrs)
	}

	shutdown, err := SetupOTel(context.Background(), enabledCfg("svc", true), "v9", attribute.String("deployment.environment", "test"))
	if err != nil {
		t.Fatalf("SetupOTel: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	want := map[string]string{"service.name": "svc", "service.version": "v9", "deployment.environment": "test"}
	for _, kv := range got {
		if w, ok := want[string(kv.Key)]; ok && kv.Value.AsString() == w {
			delete(want, string(kv.Key))
		}
	}
	if len(want) != 0 {
		t.Fatalf("missing resource attributes: %v (got %v)", want, got)
	}
}

func TestSetupOTel_ExporterError_LeavesGlobals(t *testing.T) {
	preserveOTelGlobals(t)

	orig := newOTLPExporterFn
	t.Cleanup(func() { newOTLPExporterFn = orig })
	newOTLPExporterFn = func(context.Context, otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("boom-exporter")
	}

	prev := otel.GetTracerProvider()
	if _, err := SetupOTel(context.Background(), enabledCfg("svc", true), "v1"); err == nil || !strings.Contains(err.Error(), "boom-exporter") {
		t.Fatalf("expected exporter error, got %v", err)
	}
	if otel.GetTracerProvider() != prev {
		t.Fatal("provider replaced despite exporter error")
	}
}

func TestSetupOTel_ResourceError_Propagates(t *testing.T) {
	preserveOTelGlobals(t)

	orig := newServiceResourceFn
	t.Cleanup(func() { newServiceResourceFn = orig })
	newServiceResourceFn = func(context.Context, []attribute.KeyValue) (*resource.Resource, error) {
		return nil, errors.New("boom-resource")
	}

	if _, err := SetupOTel(context.Background(), enabledCfg("svc", true), "v1"); err == nil || !strings.Contains(err.Error(), "boom-resource") {
		t.Fatalf("expected resource error, got %v", err)
	}
}

func TestSampler_Edges(t *testing.T) {
	cases := map[float64]string{
		1:   "AlwaysOnSampler",
		2:   "AlwaysOnSampler",
		0:   "AlwaysOffSampler",
		-1:  "AlwaysOffSampler",
		0.5: "TraceIDRatioBased{0.5}",
	}
	for ratio, root := range cases {
		desc := sampler(ratio).Description()
		if !strings.Contains(desc, "ParentBased{root:"+root) {
			t.Fatalf("sampler(%v) = %s; want root %s", ratio, desc, root)
		}
	}
}
