package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func hitFrom(r *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestSimpleRateLimit_BlocksOverLimit(t *testing.T) {
	r := limitedRouter(SimpleRateLimit(3, time.Minute))

	for i := 0; i < 3; i++ {
		if code := hitFrom(r, "10.9.1.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, code)
		}
	}
	if code := hitFrom(r, "10.9.1.1:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit request: got %d, want 429", code)
	}
}

func TestSimpleRateLimit_SeparatePerClient(t *testing.T) {
	r := limitedRouter(SimpleRateLimit(1, time.Minute))

	if code := hitFrom(r, "10.9.2.1:1000"); code != http.StatusOK {
		t.Fatalf("first client: got %d", code)
	}
	if code := hitFrom(r, "10.9.2.2:1000"); code != http.StatusOK {
		t.Fatalf("second client must have its own window, got %d", code)
	}
}

func TestRedisRateLimit_EnforcesWithoutRedis(t *testing.T) {
	if redisClient != nil {
		t.Skip("redis configured, fallback path not reachable")
	}
	r := limitedRouter(RedisRateLimit(2, time.Minute))

	for i := 0; i < 2; i++ {
		if code := hitFrom(r, "10.9.3.1:1000"); code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, code)
		}
	}
	if code := hitFrom(r, "10.9.3.1:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("limiter must hold without redis: got %d, want 429", code)
	}
}
