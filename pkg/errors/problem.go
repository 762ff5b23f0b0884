package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const problemBaseURL = "https://care-voice.troikatech.in/problems"

// ProblemDetail represents an RFC 7807 Problem Details response
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
	Instance string `json:"instance,omitempty"`

	InvalidParams []InvalidParam `json:"invalid_params,omitempty"`
}

func newProblem(c *gin.Context, status int, title, detail string) ProblemDetail {
	traceID := c.GetString("trace_id")
	if traceID == "" {
		traceID = c.GetString("request_id")
	}
	return ProblemDetail{
		Type:     getProblemType(status),
		Title:    title,
		Status:   status,
		Detail:   detail,
		TraceID:  traceID,
		Instance: c.Request.URL.Path,
	}
}

// ErrorResponse sends a problem+json error response
func ErrorResponse(c *gin.Context, status int, title, detail string) {
	c.Render(status, problemJSON{newProblem(c, status, title, detail)})
}

// InternalError logs and sends a 500 error
func InternalError(c *gin.Context, err error, logger *zap.Logger) {
	logger.Error("Internal server error",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)

	ErrorResponse(c, http.StatusInternalServerError,
		"Internal Server Error",
		"An unexpected error occurred. Please try again later.",
	)
}

// BadRequest sends a 400 error
func BadRequest(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusBadRequest, "Bad Request", detail)
}

// NotFound sends a 404 error
func NotFound(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusNotFound, "Not Found", detail)
}

// Conflict sends a 409 error
func Conflict(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusConflict, "Conflict", detail)
}

// TooManyRequests sends a 429 error
func TooManyRequests(c *gin.Context, detail string) {
	ErrorResponse(c, http.StatusTooManyRequests, "Too Many Requests", detail)
}

func getProblemType(status int) string {
	switch status {
	case http.StatusBadRequest:
		return problemBaseURL + "/bad-request"
	case http.StatusNotFound:
		return problemBaseURL + "/not-found"
	case http.StatusConflict:
		return problemBaseURL + "/conflict"
	case http.StatusUnprocessableEntity:
		return problemBaseURL + "/idempotency-key-reused"
	case http.StatusRequestEntityTooLarge:
		return problemBaseURL + "/payload-too-large"
	case http.StatusTooManyRequests:
		return problemBaseURL + "/rate-limit-exceeded"
	case http.StatusInternalServerError:
		return problemBaseURL + "/internal-error"
	default:
		return problemBaseURL + "/error"
	}
}
