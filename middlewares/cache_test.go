package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"npj/middlewares"
	"npj/utils"
)

func cachedServer(t *testing.T) (*gin.Engine, *redis.Client, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hits := 0
	r := gin.New()
	r.Use(middlewares.ResponseCache(rdb, 30*time.Second))
	r.GET("/cases", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, []string{"a"})
	})
	r.GET("/events/stats", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"total": 0})
	})
	return r, rdb, &hits
}

func TestResponseCache_SecondGetIsHit(t *testing.T) {
	r, _, hits := cachedServer(t)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/cases", nil))
	if w1.Code != 200 {
		t.Fatalf("first get: %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/cases", nil))
	if w2.Code != 200 {
		t.Fatalf("second get: %d", w2.Code)
	}
	if w2.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("want cache hit, header=%q", w2.Header().Get("X-Cache"))
	}
	if *hits != 1 {
		t.Fatalf("handler ran %d times, want 1", *hits)
	}
	if w1.Body.String() != w2.Body.String() {
		t.Fatalf("cached body differs: %q vs %q", w1.Body.String(), w2.Body.String())
	}
}

func TestResponseCache_InvalidationForcesMiss(t *testing.T) {
	r, rdb, hits := cachedServer(t)
	inv := utils.NewCacheInvalidator(rdb)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases", nil))
	if *hits != 1 {
		t.Fatalf("precondition: handler ran %d times, want 1", *hits)
	}

	inv.PurgeCases(t.Context())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases", nil))
	if *hits != 2 {
		t.Fatalf("after purge handler ran %d times, want 2", *hits)
	}
}

func TestResponseCache_StatsNamespace(t *testing.T) {
	r, rdb, hits := cachedServer(t)
	inv := utils.NewCacheInvalidator(rdb)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/stats", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/stats", nil))
	if *hits != 1 {
		t.Fatalf("stats should be cached, handler ran %d times", *hits)
	}

	// purging cases must not touch the events namespace
	inv.PurgeCases(t.Context())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/stats", nil))
	if *hits != 1 {
		t.Fatalf("case purge evicted event stats, handler ran %d times", *hits)
	}

	inv.PurgeEvents(t.Context())
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/stats", nil))
	if *hits != 2 {
		t.Fatalf("event purge should force a miss, handler ran %d times", *hits)
	}
}
