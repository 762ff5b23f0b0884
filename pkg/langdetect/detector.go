// Package langdetect guesses the language of a caller utterance.
package langdetect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetermined is returned for empty input or an unsupported language.
var ErrUndetermined = errors.New("language could not be determined")

// Detector returns an ISO 639-1 code for text.
type Detector interface {
	Detect(ctx context.Context, text string) (string, error)
}

var isoCodes = map[whatlanggo.Lang]string{
	whatlanggo.Eng: "en",
	whatlanggo.Hin: "hi",
	whatlanggo.Mar: "mr",
}

// Whatlang detects the language of an utterance. Languages the voice pipeline
// has no code for are reported as ErrUndetermined, never coerced into one it has.
type Whatlang struct {
	// devanagari narrows Devanagari text to Hindi and Marathi; other scripts
	// are detected against every language whatlanggo knows.
	devanagari whatlanggo.Options
}

func NewWhatlang() *Whatlang {
	return &Whatlang{devanagari: whatlanggo.Options{
		Whitelist: map[whatlanggo.Lang]bool{whatlanggo.Hin: true, whatlanggo.Mar: true},
	}}
}

func (w *Whatlang) detect(text string) whatlanggo.Info {
	if whatlanggo.DetectScript(text) == unicode.Devanagari {
		return whatlanggo.DetectWithOptions(text, w.devanagari)
	}
	return whatlanggo.Detect(text)
}

func (w *Whatlang) Detect(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUndetermined
	}

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		info := w.detect(text)
		code, ok := isoCodes[info.Lang]
		if !ok {
			done <- result{err: fmt.Errorf("%w: %s", ErrUndetermined, info.Lang.String())}
			return
		}
		done <- result{code: code}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.code, r.err
	}
}
