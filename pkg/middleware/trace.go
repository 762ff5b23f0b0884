package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	traceIDHeader   = "X-Trace-ID"
	requestIDHeader = "X-Request-ID"
	// providerRetryHeader is constant across the provider's retries of one webhook.
	providerRetryHeader = "I-Twilio-Idempotency-Token"
)

// TraceMiddleware tags each request with a trace id and a request id, stored
// in the gin context as trace_id and request_id and echoed in the response.
// An incoming X-Trace-ID is kept. Webhook retries reuse the provider's token
// as the request id so they can be correlated.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		requestID := c.GetHeader(providerRetryHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)
		c.Header(traceIDHeader, traceID)
		c.Header(requestIDHeader, requestID)

		c.Next()
	}
}
