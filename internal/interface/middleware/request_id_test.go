package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

var modeOnce sync.Once

func captureRouter(mw gin.HandlerFunc, key string) (*gin.Engine, *string) {
	modeOnce.Do(func() { gin.SetMode(gin.TestMode) })
	var got string
	r := gin.New()
	r.Use(mw)
	r.GET("/ping", func(c *gin.Context) {
		got = c.GetString(key)
		c.Status(http.StatusNoContent)
	})
	return r, &got
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	r, got := captureRouter(RequestID(), "request_id")
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if *got == "" {
		t.Fatal("request id must be set in the context")
	}
	if rec.Header().Get("X-Request-ID") != *got {
		t.Fatal("request id must be echoed on the response")
	}
}

func TestRequestIDReusesInboundHeader(t *testing.T) {
	r, got := captureRouter(RequestID(), "request_id")
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "upstream-trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if *got != "upstream-trace-1" {
		t.Fatalf("expected the inbound id to be reused, got %q", *got)
	}
	if rec.Header().Get("X-Request-ID") != "upstream-trace-1" {
		t.Fatal("the inbound id must be echoed on the response")
	}
}

func TestRealIPHeaderPrecedence(t *testing.T) {
	r, got := captureRouter(RealIP(), "real_ip")

	serve := func(headers map[string]string) string {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return *got
	}

	if ip := serve(map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}); ip != "203.0.113.7" {
		t.Fatalf("CF header must win, got %q", ip)
	}
	if ip := serve(map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}); ip != "198.51.100.1" {
		t.Fatalf("left-most forwarded address must win, got %q", ip)
	}
	if ip := serve(nil); ip == "" {
		t.Fatal("fallback must still produce an address")
	}
	if ip := serve(map[string]string{"CF-Connecting-IP": "not-an-ip"}); ip == "not-an-ip" {
		t.Fatal("unparseable proxy headers must be ignored")
	}
}
