package callflow

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/ai"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/profile"
	"github.com/troikatech/care-voice/pkg/twiml"
	"github.com/troikatech/care-voice/pkg/voice"
)

// State is where a call stands after a turn.
type State int

const (
	AwaitingCall State = iota
	AwaitingSpeech
	Responded
)

func (s State) String() string {
	switch s {
	case AwaitingCall:
		return "awaiting_call"
	case AwaitingSpeech:
		return "awaiting_speech"
	case Responded:
		return "responded"
	default:
		return "unknown"
	}
}

// Turn is one webhook request worth of work.
type Turn struct {
	CallerID   string
	Utterance  string
	Profile    *profile.Profile
	ResolvedBy string
	Voice      voice.Selection
	Reply      string
	Markup     string
	State      State
}

// Orchestrator is stateless; each turn is rebuilt from the caller id.
type Orchestrator struct {
	resolver     *Resolver
	selector     *voice.Selector
	replies      ai.Generator
	renderer     *twiml.Renderer
	continuePath string
	logger       *zap.Logger
}

func NewOrchestrator(resolver *Resolver, selector *voice.Selector, replies ai.Generator, renderer *twiml.Renderer, continuePath string, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		resolver:     resolver,
		selector:     selector,
		replies:      replies,
		renderer:     renderer,
		continuePath: continuePath,
		logger:       logger,
	}
}

// Start greets the caller and asks the provider to capture speech.
func (o *Orchestrator) Start(ctx context.Context, callerID string) (*Turn, error) {
	turn := &Turn{CallerID: strings.TrimSpace(callerID), State: AwaitingCall}

	turn.Profile, turn.ResolvedBy = o.resolver.ResolveStart(ctx, turn.CallerID)
	turn.Voice = o.selector.Select(turn.Profile.LanguageCode, turn.Profile.Gender)

	markup, err := o.renderer.GatherSpeech(twiml.GatherOptions{
		Prompt:   Prompt(turn.Profile.LanguageCode),
		Action:   o.continuePath,
		Language: turn.Voice.Language,
		Voice:    turn.Voice.Voice,
	})
	if err != nil {
		return nil, err
	}
	turn.Markup = markup
	turn.State = AwaitingSpeech

	o.logger.Info("Call started", append(logger.TurnFields(turn.State.String(), turn.CallerID, turn.Voice.Language, turn.Voice.Voice),
		zap.String("resolved_by", turn.ResolvedBy))...)
	return turn, nil
}

// Continue answers the recognized speech. utterance is empty when the
// provider heard nothing.
func (o *Orchestrator) Continue(ctx context.Context, callerID, utterance string) (*Turn, error) {
	turn := &Turn{
		CallerID:  strings.TrimSpace(callerID),
		Utterance: strings.TrimSpace(utterance),
		State:     AwaitingSpeech,
	}

	turn.Profile, turn.ResolvedBy = o.resolver.ResolveContinue(ctx, turn.CallerID, turn.Utterance)
	turn.Voice = o.selector.Select(turn.Profile.LanguageCode, turn.Profile.Gender)

	turn.Reply = o.replies.Generate(ctx, &ai.ReplyRequest{
		Utterance: turn.Utterance,
		Language:  turn.Profile.LanguageCode,
		Name:      turn.Profile.DisplayName(),
	})

	markup, err := o.renderer.Say(turn.Reply, turn.Voice.Language, turn.Voice.Voice)
	if err != nil {
		return nil, err
	}
	turn.Markup = markup
	turn.State = Responded

	o.logger.Info("Call turn answered", append(logger.TurnFields(turn.State.String(), turn.CallerID, turn.Voice.Language, turn.Voice.Voice),
		zap.String("resolved_by", turn.ResolvedBy),
		zap.Int("utterance_len", len(turn.Utterance)))...)
	return turn, nil
}
