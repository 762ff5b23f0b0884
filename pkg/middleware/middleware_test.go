package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
		"Cache-Control":          "no-store",
	}
	for k, v := range want {
		if got := w.Header().Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestRequestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimit(16))
	r.POST("/x", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"within limit", "From=%2B1415", http.StatusOK},
		{"over limit", strings.Repeat("a", 64), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(tt.body))
			w := serve(r, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	t.Run("unknown length is still capped", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(strings.Repeat("a", 64)))
		req.ContentLength = -1
		w := serve(r, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", w.Code)
		}
	})
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = c.GetString("trace_id")
		c.Status(http.StatusOK)
	})
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get(traceIDHeader) == "" || w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected trace and request id headers")
	}
	if seen != w.Header().Get(traceIDHeader) {
		t.Errorf("context trace_id = %q, header = %q", seen, w.Header().Get(traceIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(traceIDHeader, "retry-123")
	w = serve(r, req)
	if got := w.Header().Get(traceIDHeader); got != "retry-123" {
		t.Errorf("trace id = %q, want incoming header kept", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(providerRetryHeader, "tok-1")
	w = serve(r, req)
	if got := w.Header().Get(requestIDHeader); got != "tok-1" {
		t.Errorf("request id = %q, want provider token", got)
	}
}

func TestValidateParams(t *testing.T) {
	r := gin.New()
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.GetString("value")) }
	r.GET("/by-phone/:phone", ValidatePhoneParam("phone"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("phone"))
	})
	r.GET("/by-id/:id", ValidateObjectIDParam("id"), ok)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"valid phone", "/by-phone/%2B14155551234", http.StatusOK},
		{"client identity", "/by-phone/client:alice", http.StatusOK},
		{"sip uri", "/by-phone/sip:alice@example.com", http.StatusOK},
		{"blank", "/by-phone/%20%20", http.StatusBadRequest},
		{"inner space", "/by-phone/%2B1%20415", http.StatusBadRequest},
		{"too long", "/by-phone/" + strings.Repeat("9", 200), http.StatusBadRequest},
		{"valid id", "/by-id/507f1f77bcf86cd799439011", http.StatusOK},
		{"malformed id", "/by-id/not-an-id", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  +1415\x00555  "); got != "+1415555" {
		t.Errorf("SanitizeString() = %q", got)
	}
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	rl := NewRateLimiter(client, 1, zap.NewNop())
	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200 when redis is down", i, w.Code)
		}
	}
}

func TestRequestLogger_UsesRouteTemplate(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/profiles/:phone", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/profiles/+14155551234", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["route"] != "/profiles/:phone" {
		t.Errorf("route = %v, want template", fields["route"])
	}
	for _, v := range fields {
		if s, ok := v.(string); ok && strings.Contains(s, "5551234") {
			t.Errorf("log leaked phone number: %v", fields)
		}
	}
}

func TestIdempotencyMiddleware_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := gin.New()
	r.Use(IdempotencyMiddleware(client))
	r.POST("/profiles", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		if c.GetString(idempotencyCacheKey) == "" {
			t.Error("cache key not set for a keyed request")
		}
		c.String(http.StatusCreated, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/profiles", strings.NewReader(`{"phone_number":"+1555"}`))
	req.Header.Set(idempotencyKeyHeader, "k-1")
	w := serve(r, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if w.Body.String() != `{"phone_number":"+1555"}` {
		t.Errorf("handler saw body %q, want the original", w.Body.String())
	}
}

func TestIdempotencyMiddleware_SkipsUnkeyed(t *testing.T) {
	r := gin.New()
	r.Use(IdempotencyMiddleware(nil))
	r.POST("/profiles", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/profiles", func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, httptest.NewRequest(http.MethodPost, "/profiles", nil)); w.Code != http.StatusCreated {
		t.Errorf("POST without key status = %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	req.Header.Set(idempotencyKeyHeader, "k-1")
	if w := serve(r, req); w.Code != http.StatusOK {
		t.Errorf("GET with key status = %d", w.Code)
	}
}
