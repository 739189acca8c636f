package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONField(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/auth", strings.NewReader(`{"email":" Test@Example.com "}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	key := KeyByIPAndJSONField("email")(c)
	if key != "test@example.com|1.2.3.4" {
		t.Fatalf("key want test@example.com|1.2.3.4 got %s", key)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read body after key extraction failed: %v", err)
	}
	if !strings.Contains(string(body), "Test@Example.com") {
		t.Fatalf("request body should be restored after reading field")
	}
}

func TestRateLimitDisabledRulePassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(nil, RateLimitRule{WindowSeconds: 0, MaxRequests: 1}, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if !strings.Contains(w.Body.String(), `"ok":true`) {
			t.Fatalf("request %d should pass, got %s", i+1, w.Body.String())
		}
	}
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimit(nil, RateLimitRule{Prefix: "like", WindowSeconds: 60, MaxRequests: 2}, KeyByIP))
	r.POST("/like", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	send := func(remote string) string {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/like", nil)
		req.RemoteAddr = remote
		r.ServeHTTP(w, req)
		return w.Body.String()
	}

	for i := 0; i < 2; i++ {
		if body := send("9.9.9.9:1000"); !strings.Contains(body, `"ok":true`) {
			t.Fatalf("request %d should pass, got %s", i+1, body)
		}
	}
	if body := send("9.9.9.9:1000"); !strings.Contains(body, `"status_code":429`) {
		t.Fatalf("third request should be limited, got %s", body)
	}
	if body := send("8.8.8.8:1000"); !strings.Contains(body, `"ok":true`) {
		t.Fatalf("other ip should not share bucket, got %s", body)
	}
}

func TestTokenBucketsEvictIdleKeys(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := newTokenBuckets(RateLimitRule{WindowSeconds: 10, MaxRequests: 1})
	store.now = func() time.Time { return now }

	if ok, _, _ := store.take(context.Background(), "a"); !ok {
		t.Fatalf("first hit should pass")
	}
	if ok, wait, _ := store.take(context.Background(), "a"); ok || wait <= 0 {
		t.Fatalf("second hit should wait, got ok=%v wait=%v", ok, wait)
	}
	now = now.Add(5 * time.Minute)
	_, _, _ = store.take(context.Background(), "b")
	if _, exists := store.entries["a"]; exists {
		t.Fatalf("idle key should be evicted")
	}
}
