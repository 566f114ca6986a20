package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request in window must be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients are unaffected")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("window expiry must reset the bucket")
	}
}

func TestRequestIDEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	// caller-supplied id is kept
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDKey, "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDKey); got != "abc-123" {
		t.Fatalf("expected echoed id, got %q", got)
	}

	// otherwise one is minted
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Header().Get(RequestIDKey) == "" {
		t.Fatal("expected generated request id")
	}
}
