package ai

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

// MockProvider is a mock implementation of Provider for testing
type MockProvider struct {
	name      string
	available bool
	shouldErr bool
	err       error
	reply     string
	calls     int
}

func (m *MockProvider) GenerateReply(ctx context.Context, req *ReplyRequest) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if m.shouldErr {
		return "", errors.New("mock error")
	}
	return m.reply, nil
}

func (m *MockProvider) IsAvailable() bool {
	return m.available
}

func (m *MockProvider) Name() string {
	return m.name
}

func TestManager_GetAvailableProvider(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name      string
		providers []Provider
		want      string
		wantNil   bool
	}{
		{
			name: "returns first available provider",
			providers: []Provider{
				&MockProvider{name: "provider1", available: true},
				&MockProvider{name: "provider2", available: true},
			},
			want:    "provider1",
			wantNil: false,
		},
		{
			name: "skips unavailable providers",
			providers: []Provider{
				&MockProvider{name: "provider1", available: false},
				&MockProvider{name: "provider2", available: true},
			},
			want:    "provider2",
			wantNil: false,
		},
		{
			name: "returns nil when no providers available",
			providers: []Provider{
				&MockProvider{name: "provider1", available: false},
				&MockProvider{name: "provider2", available: false},
			},
			wantNil: true,
		},
		{
			name:      "returns nil for empty list",
			providers: nil,
			wantNil:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.providers, logger)
			got := m.GetAvailableProvider()
			if tt.wantNil {
				if got != nil {
					t.Errorf("GetAvailableProvider() = %v, want nil", got.Name())
				}
				return
			}
			if got == nil || got.Name() != tt.want {
				t.Errorf("GetAvailableProvider() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestManager_GenerateReply(t *testing.T) {
	logger := zap.NewNop()

	t.Run("falls back to next provider", func(t *testing.T) {
		first := &MockProvider{name: "p1", available: true, shouldErr: true}
		second := &MockProvider{name: "p2", available: true, reply: "hello"}
		m := NewManager([]Provider{first, second}, logger)

		got, err := m.GenerateReply(context.Background(), &ReplyRequest{Utterance: "hi"})
		if err != nil {
			t.Fatalf("GenerateReply() error = %v", err)
		}
		if got != "hello" || first.calls != 1 || second.calls != 1 {
			t.Errorf("GenerateReply() = %q, calls %d/%d", got, first.calls, second.calls)
		}
	})

	t.Run("all providers fail", func(t *testing.T) {
		errA := errors.New("rate limited")
		errB := errors.New("bad gateway")
		m := NewManager([]Provider{
			&MockProvider{name: "p1", available: true, err: errA},
			&MockProvider{name: "p2", available: true, err: errB},
		}, logger)
		_, err := m.GenerateReply(context.Background(), &ReplyRequest{})
		if !errors.Is(err, errA) || !errors.Is(err, errB) {
			t.Errorf("GenerateReply() error = %v, want both provider errors", err)
		}
	})

	t.Run("canceled context stops failover", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		second := &MockProvider{name: "p2", available: true, reply: "late"}
		m := NewManager([]Provider{&MockProvider{name: "p1", available: true, err: context.Canceled}, second}, logger)
		if _, err := m.GenerateReply(ctx, &ReplyRequest{}); !errors.Is(err, context.Canceled) {
			t.Errorf("GenerateReply() error = %v, want context.Canceled", err)
		}
		if second.calls != 0 {
			t.Errorf("second provider called %d times after cancel", second.calls)
		}
	})

	t.Run("none available", func(t *testing.T) {
		m := NewManager([]Provider{&MockProvider{name: "p1"}}, logger)
		if _, err := m.GenerateReply(context.Background(), &ReplyRequest{}); !errors.Is(err, ErrNoProviders) {
			t.Errorf("GenerateReply() error = %v, want ErrNoProviders", err)
		}
	})
}

func TestManager_Names(t *testing.T) {
	m := NewManager([]Provider{
		&MockProvider{name: "openai", available: true},
		&MockProvider{name: "gemini"},
		&MockProvider{name: "anthropic", available: true},
	}, zap.NewNop())
	got := m.Names()
	if len(got) != 2 || got[0] != "openai" || got[1] != "anthropic" {
		t.Errorf("Names() = %v", got)
	}
}

func TestReplyGenerator(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name      string
		providers []Provider
		language  string
		want      string
	}{
		{
			name:     "no credential marathi",
			language: "mr-IN",
			want:     "फोन केल्याबद्दल धन्यवाद. मी तुम्हाला कशी मदत करू?",
		},
		{
			name:     "no credential hindi",
			language: "hi-IN",
			want:     "फोन करने के लिए धन्यवाद। मैं आपकी कैसे मदद कर सकता/सकती हूँ?",
		},
		{
			name:     "no credential unknown language",
			language: "fr-FR",
			want:     "Thanks for calling. How can I help you today?",
		},
		{
			name:      "provider failure uses canned reply",
			providers: []Provider{&MockProvider{name: "p1", available: true, shouldErr: true}},
			language:  "hi-IN",
			want:      "फोन करने के लिए धन्यवाद। मैं आपकी कैसे मदद कर सकता/सकती हूँ?",
		},
		{
			name:      "provider reply is returned",
			providers: []Provider{&MockProvider{name: "p1", available: true, reply: "Your order ships today."}},
			language:  "en-US",
			want:      "Your order ships today.",
		},
		{
			name:      "empty provider content stays empty",
			providers: []Provider{&MockProvider{name: "p1", available: true, reply: ""}},
			language:  "en-US",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewReplyGenerator(NewManager(tt.providers, logger), 0, logger)
			got := g.Generate(context.Background(), &ReplyRequest{Utterance: "hello", Language: tt.language})
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserPrompt(t *testing.T) {
	got := UserPrompt(&ReplyRequest{Utterance: "where is my order", Language: "en-US", Name: "Asha"})
	want := "Language hint: en-US.  The caller's name is Asha. User said: where is my order"
	if got != want {
		t.Errorf("UserPrompt() = %q, want %q", got, want)
	}

	got = UserPrompt(&ReplyRequest{Utterance: "hi", Language: "hi-IN"})
	if want := "Language hint: hi-IN.  User said: hi"; got != want {
		t.Errorf("UserPrompt() without name = %q, want %q", got, want)
	}
}
