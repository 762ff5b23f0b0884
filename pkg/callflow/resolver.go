// Package callflow resolves callers and drives the two webhook turns of a call.
package callflow

import (
	"context"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/metrics"
	"github.com/troikatech/care-voice/pkg/profile"
)

// sourceDefault names resolutions that fell through every source.
const sourceDefault = "default"

// Resolver walks an ordered list of sources and returns the first hit.
// Start and Continue turns use different chains.
type Resolver struct {
	start    []Source
	cont     []Source
	defaults profile.Defaults
	logger   *zap.Logger
}

func NewResolver(start, cont []Source, defaults profile.Defaults, logger *zap.Logger) *Resolver {
	return &Resolver{start: start, cont: cont, defaults: defaults, logger: logger}
}

// ResolveStart resolves a caller without an utterance. A caller nobody knows
// gets an unsaved profile with the defaults.
func (r *Resolver) ResolveStart(ctx context.Context, callerID string) (*profile.Profile, string) {
	return r.resolve(ctx, r.start, Lookup{CallerID: callerID})
}

// ResolveContinue resolves a caller on the speech turn.
func (r *Resolver) ResolveContinue(ctx context.Context, callerID, utterance string) (*profile.Profile, string) {
	return r.resolve(ctx, r.cont, Lookup{CallerID: callerID, Utterance: utterance})
}

func (r *Resolver) resolve(ctx context.Context, chain []Source, in Lookup) (*profile.Profile, string) {
	for _, source := range chain {
		if p, ok := source.Lookup(ctx, in); ok && p != nil {
			metrics.RecordResolution(source.Name())
			return r.defaults.Apply(p), source.Name()
		}
	}

	r.logger.Info("Caller not resolved, using defaults", logger.MaskPhone("caller", in.CallerID))
	metrics.RecordResolution(sourceDefault)
	return r.defaults.Transient(in.CallerID), sourceDefault
}
