package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/troikatech/care-voice/pkg/errors"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
	idempotencyCacheKey  = "idempotency_cache_key"
	idempotencyBodyHash  = "idempotency_body_hash"
)

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key. Reusing a key with a different body is rejected with 422.
// Redis errors let the request through.
func IdempotencyMiddleware(redisClient redis.Cmdable) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			errors.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Payload Too Large", "request body too large")
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		cacheKey := "idempotency:" + hash(c.Request.Method+" "+c.FullPath()+" "+key)
		bodyHash := hash(string(body))

		stored, err := redisClient.HGetAll(c.Request.Context(), cacheKey).Result()
		if err == nil && stored["body"] != "" {
			if stored["request_hash"] != "" && stored["request_hash"] != bodyHash {
				errors.ErrorResponse(c, http.StatusUnprocessableEntity, "Unprocessable Entity",
					"Idempotency-Key was already used with a different request body")
				c.Abort()
				return
			}
			status, convErr := strconv.Atoi(stored["status"])
			if convErr != nil {
				status = http.StatusOK
			}
			c.Header("X-Idempotency-Key-Used", "true")
			c.Data(status, "application/json; charset=utf-8", []byte(stored["body"]))
			c.Abort()
			return
		}

		c.Set(idempotencyCacheKey, cacheKey)
		c.Set(idempotencyBodyHash, bodyHash)
		c.Next()
	}
}

// StoreIdempotencyResponse saves a response under the request's key, if any.
func StoreIdempotencyResponse(c *gin.Context, redisClient redis.Cmdable, status int, body []byte) {
	cacheKey := c.GetString(idempotencyCacheKey)
	if cacheKey == "" || redisClient == nil {
		return
	}

	ctx := c.Request.Context()
	pipe := redisClient.TxPipeline()
	pipe.HSet(ctx, cacheKey,
		"status", status,
		"body", string(body),
		"request_hash", c.GetString(idempotencyBodyHash),
	)
	pipe.Expire(ctx, cacheKey, idempotencyTTL)
	_, _ = pipe.Exec(ctx)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
