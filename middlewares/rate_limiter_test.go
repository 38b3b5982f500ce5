package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"npj/middlewares"
)

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     1,
		Burst:   2,
		IdleTTL: time.Minute,
	})

	r := gin.New()
	r.Use(rl.Middleware(func(c *gin.Context) string { return "fixed" }))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}

	if codes[0] != 200 || codes[1] != 200 {
		t.Fatalf("burst of 2 should pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third call should be limited, got %v", codes)
	}
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.1,
		Burst:   1,
		IdleTTL: time.Minute,
	})

	r := gin.New()
	r.Use(rl.Middleware(func(c *gin.Context) string { return c.Query("k") }))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, k := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?k="+k, nil))
		if w.Code != 200 {
			t.Fatalf("key %s first call should pass, got %d", k, w.Code)
		}
	}
}
