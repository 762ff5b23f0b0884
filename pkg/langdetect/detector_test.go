package langdetect

import (
	"context"
	"errors"
	"testing"
)

func TestWhatlang_Detect(t *testing.T) {
	d := NewWhatlang()
	tests := []struct {
		name string
		text string
		want string
	}{
		{"english", "Hello, I would like to know the status of my order please", "en"},
		{"hindi", "मैं अपने खाते के बारे में जानकारी चाहता हूँ, कृपया मेरी मदद कीजिए", "hi"},
		{"marathi", "मला माझ्या खात्याबद्दल माहिती हवी आहे, कृपया मला मदत करा", "mr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.Detect(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWhatlang_UnsupportedLanguages(t *testing.T) {
	d := NewWhatlang()
	for _, text := range []string{
		"Hola, quiero saber el estado de mi pedido por favor",
		"Bonjour, je voudrais connaître l'état de ma commande s'il vous plaît",
	} {
		got, err := d.Detect(context.Background(), text)
		if !errors.Is(err, ErrUndetermined) {
			t.Errorf("Detect(%q) = %q, %v; want ErrUndetermined", text, got, err)
		}
	}
}

func TestWhatlang_DetectEmpty(t *testing.T) {
	if _, err := NewWhatlang().Detect(context.Background(), "   "); !errors.Is(err, ErrUndetermined) {
		t.Errorf("Detect() error = %v, want ErrUndetermined", err)
	}
}

func TestWhatlang_DetectCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Either outcome is acceptable once the context is gone, but it must not hang.
	_, err := NewWhatlang().Detect(ctx, "hello there, how are you doing today")
	if err != nil && !errors.Is(err, context.Canceled) {
		t.Errorf("Detect() error = %v", err)
	}
}
