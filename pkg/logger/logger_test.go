package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestMaskPhone(t *testing.T) {
	f := MaskPhone("caller", "+14155551234")
	if f.Key != "caller" {
		t.Errorf("MaskPhone().Key = %q, want caller", f.Key)
	}
	if f.String == "+14155551234" {
		t.Error("MaskPhone() left the phone number in clear text")
	}
}

func TestTurnFields(t *testing.T) {
	fields := TurnFields("start", "+14155551234", "en-US", "alice")
	if len(fields) != 4 {
		t.Fatalf("TurnFields() returned %d fields, want 4", len(fields))
	}
	if fields[1].String == "+14155551234" {
		t.Error("TurnFields() did not mask caller")
	}
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"error", false, false},
		{"nonsense", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, "production")
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := l.Core().Enabled(zapcore.DebugLevel); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if got := l.Core().Enabled(zapcore.WarnLevel); got != tt.warn {
				t.Errorf("warn enabled = %v, want %v", got, tt.warn)
			}
		})
	}
}
