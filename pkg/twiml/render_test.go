package twiml

import (
	"encoding/xml"
	"strings"
	"testing"
)

func decode(t *testing.T, doc string) ResponseElement {
	t.Helper()
	var out ResponseElement
	if err := xml.Unmarshal([]byte(doc), &out); err != nil {
		t.Fatalf("markup is not well-formed: %v\n%s", err, doc)
	}
	return out
}

func TestGatherSpeech(t *testing.T) {
	r := NewRenderer()
	doc, err := r.GatherSpeech(GatherOptions{
		Prompt:   `Say "yes" & <wait>`,
		Action:   "/voice/handle",
		Language: "en-US",
		Voice:    "alice",
		Hints:    `billing, "orders"`,
	})
	if err != nil {
		t.Fatalf("GatherSpeech() error = %v", err)
	}

	if !strings.HasPrefix(doc, xml.Header) {
		t.Error("missing xml header")
	}
	for _, raw := range []string{`"yes"`, "& <wait>", `"orders"`} {
		if strings.Contains(doc, raw) {
			t.Errorf("unescaped text %q in markup", raw)
		}
	}

	got := decode(t, doc)
	if got.Gather == nil || got.Gather.Say == nil {
		t.Fatalf("missing Gather/Say: %+v", got)
	}
	if got.Gather.Input != "speech" || got.Gather.Method != "POST" || got.Gather.Action != "/voice/handle" {
		t.Errorf("Gather attributes = %+v", got.Gather)
	}
	if got.Gather.Language != "en-US" || got.Gather.Hints != `billing, "orders"` {
		t.Errorf("Gather language/hints = %q/%q", got.Gather.Language, got.Gather.Hints)
	}
	if got.Gather.Say.Text != `Say "yes" & <wait>` || got.Gather.Say.Voice != "alice" {
		t.Errorf("prompt round-trip = %+v", got.Gather.Say)
	}
	if len(got.Says) != 1 || got.Says[0].Text != NoInputMessage {
		t.Errorf("no-input fallback = %+v", got.Says)
	}
	if got.Hangup == nil {
		t.Error("missing Hangup")
	}
}

func TestGatherSpeech_OmitsEmptyHints(t *testing.T) {
	doc, err := NewRenderer().GatherSpeech(GatherOptions{Prompt: "hi", Action: "/voice/handle", Language: "hi-IN", Voice: "Polly.Aditi"})
	if err != nil {
		t.Fatalf("GatherSpeech() error = %v", err)
	}
	if strings.Contains(doc, "hints=") {
		t.Errorf("empty hints rendered: %s", doc)
	}
}

func TestSay_EscapesReply(t *testing.T) {
	reply := `Tom & Jerry's <b>"deal"</b>`
	doc, err := NewRenderer().Say(reply, "hi-IN", "Polly.Aditi")
	if err != nil {
		t.Fatalf("Say() error = %v", err)
	}
	if strings.Contains(doc, "<b>") {
		t.Errorf("reply broke markup: %s", doc)
	}

	got := decode(t, doc)
	if got.Gather != nil || got.Hangup != nil {
		t.Errorf("say-only markup has extra verbs: %+v", got)
	}
	if len(got.Says) != 1 {
		t.Fatalf("Says = %+v", got.Says)
	}
	say := got.Says[0]
	if say.Text != reply || say.Language != "hi-IN" || say.Voice != "Polly.Aditi" {
		t.Errorf("Say round-trip = %+v", say)
	}
}

func TestFallback_WellFormed(t *testing.T) {
	got := decode(t, Fallback)
	if len(got.Says) != 1 || got.Says[0].Language != "en-US" {
		t.Errorf("Fallback = %+v", got)
	}
}
