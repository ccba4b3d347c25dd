package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func rateLimitedRouter(cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewIPRateLimitingMiddleware(cfg))
	router.POST("/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiter_BurstThenRejects(t *testing.T) {
	router := rateLimitedRouter(RateLimitConfig{RequestsPerSecond: 1, Burst: 3})

	post := func(ip string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":12345"
		router.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 3; i++ {
		if code := post("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d within burst: got %d", i+1, code)
		}
	}
	if code := post("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 past burst, got %d", code)
	}

	// Another client has its own budget
	if code := post("10.0.0.2"); code != http.StatusOK {
		t.Errorf("expected 200 for a different IP, got %d", code)
	}
}

func TestRateLimiter_CleanupRemovesStaleEntries(t *testing.T) {
	limiter := newIPRateLimiter(1, 1)
	defer limiter.Stop()

	limiter.getLimiter("10.0.0.1")
	limiter.mu.Lock()
	limiter.limiters["10.0.0.1"].lastUsed = limiter.limiters["10.0.0.1"].lastUsed.Add(-time.Hour)
	limiter.mu.Unlock()

	limiter.cleanup()

	limiter.mu.RLock()
	_, ok := limiter.limiters["10.0.0.1"]
	limiter.mu.RUnlock()
	if ok {
		t.Error("expected a stale entry to be removed")
	}
}
