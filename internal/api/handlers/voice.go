package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/metrics"
	"github.com/troikatech/care-voice/pkg/middleware"
	"github.com/troikatech/care-voice/pkg/twiml"
	"github.com/troikatech/care-voice/pkg/utils"
)

// VoiceIncoming answers the provider's call-start webhook.
func (h *Handler) VoiceIncoming(c *gin.Context) {
	start := time.Now()
	caller := utils.NormalizeCallerID(c.PostForm("From"))

	turn, err := h.calls.Start(c.Request.Context(), caller)
	if err != nil {
		metrics.RecordRequest("voice_incoming", false, time.Since(start))
		h.logger.Error("Call start failed", logger.MaskPhone("caller", caller), zap.Error(err))
		writeMarkup(c, twiml.Fallback)
		return
	}

	metrics.RecordRequest("voice_incoming", true, time.Since(start))
	writeMarkup(c, turn.Markup)
}

// VoiceHandle answers the provider's speech webhook.
func (h *Handler) VoiceHandle(c *gin.Context) {
	start := time.Now()
	caller := utils.NormalizeCallerID(c.PostForm("From"))
	utterance := middleware.SanitizeString(c.PostForm("SpeechResult"))

	turn, err := h.calls.Continue(c.Request.Context(), caller, utterance)
	if err != nil {
		metrics.RecordRequest("voice_handle", false, time.Since(start))
		h.logger.Error("Call turn failed", logger.MaskPhone("caller", caller), zap.Error(err))
		writeMarkup(c, twiml.Fallback)
		return
	}

	metrics.RecordRequest("voice_handle", true, time.Since(start))
	writeMarkup(c, turn.Markup)
}

func writeMarkup(c *gin.Context, markup string) {
	c.Data(http.StatusOK, twiml.ContentType, []byte(markup))
}
