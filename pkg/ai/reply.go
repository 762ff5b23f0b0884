package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/metrics"
	"github.com/troikatech/care-voice/pkg/utils"
)

const defaultCannedReply = "Thanks for calling. How can I help you today?"

var cannedReplies = map[string]string{
	"en": defaultCannedReply,
	"hi": "फोन करने के लिए धन्यवाद। मैं आपकी कैसे मदद कर सकता/सकती हूँ?",
	"mr": "फोन केल्याबद्दल धन्यवाद. मी तुम्हाला कशी मदत करू?",
}

// CannedReply returns the fixed greeting for a language, English if unknown.
func CannedReply(language string) string {
	if reply, ok := cannedReplies[strings.ToLower(utils.BaseLanguage(language))]; ok {
		return reply
	}
	return defaultCannedReply
}

// Generator is what a call turn needs from reply generation.
type Generator interface {
	Generate(ctx context.Context, req *ReplyRequest) string
}

// ReplyGenerator asks the configured providers for a reply and falls back to
// the canned greeting when none is configured or the call fails.
type ReplyGenerator struct {
	manager *Manager
	timeout time.Duration
	logger  *zap.Logger
}

func NewReplyGenerator(manager *Manager, timeout time.Duration, logger *zap.Logger) *ReplyGenerator {
	return &ReplyGenerator{manager: manager, timeout: timeout, logger: logger}
}

// Generate always returns a reply. A provider answering with no content
// yields "".
func (g *ReplyGenerator) Generate(ctx context.Context, req *ReplyRequest) string {
	if g.manager == nil || !g.manager.HasAvailable() {
		return CannedReply(req.Language)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	reply, err := g.manager.GenerateReply(ctx, req)
	if err != nil {
		metrics.RecordFallback("reply")
		g.logger.Warn("Reply generation failed, using canned reply",
			zap.String("language", req.Language),
			zap.Error(err),
		)
		return CannedReply(req.Language)
	}
	return reply
}
