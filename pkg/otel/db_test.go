package otel

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestDBSpan_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	err := DBSpan(context.Background(), "customers", "find", func(ctx context.Context) error {
		if ctx == nil {
			t.Error("DBSpan passed a nil context")
		}
		return want
	})
	if !errors.Is(err, want) {
		t.Errorf("DBSpan() error = %v, want %v", err, want)
	}
}

func TestClientSpan_Success(t *testing.T) {
	called := false
	err := ClientSpan(context.Background(), "crm", "lookup", func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Errorf("ClientSpan() err = %v, called = %v", err, called)
	}
}

func TestInitTracing_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingConfig{
		ServiceName:    "care-voice",
		ServiceVersion: "test",
		Environment:    "test",
	})
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "AlwaysOnSampler"},
		{1, "AlwaysOnSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.ratio).Description(); !strings.Contains(got, tt.want) {
			t.Errorf("sampler(%v) = %q, want it to contain %q", tt.ratio, got, tt.want)
		}
	}
}
