package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy.local:3128", "", "internal.example,10.0.0.0/8")

	tests := []struct {
		target string
		want   string
	}{
		{"http://news.example/a", "http://proxy.local:3128"},
		{"https://news.example/a", "http://proxy.local:3128"},
		{"https://internal.example/a", ""},
		{"http://10.1.2.3/", ""},
	}

	for _, tt := range tests {
		u, _ := url.Parse(tt.target)
		got, err := fn(&http.Request{URL: u})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.target, err)
		}
		gotStr := ""
		if got != nil {
			gotStr = got.String()
		}
		if gotStr != tt.want {
			t.Errorf("%s: proxy = %q, want %q", tt.target, gotStr, tt.want)
		}
	}
}

func TestNewProxyFunc_SeparateHTTPS(t *testing.T) {
	fn := NewProxyFunc("http://plain.local:80", "http://secure.local:443", "")
	u, _ := url.Parse("https://news.example/")
	got, err := fn(&http.Request{URL: u})
	if err != nil || got == nil || got.Host != "secure.local:443" {
		t.Errorf("https proxy = %v, %v", got, err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"truthweaver/0.3 (+https://github.com/esachdev28/truth-weaver)": "truthweaver",
		"Googlebot": "Googlebot",
		"":          "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRobotsChecker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		_, _ = w.Write([]byte("User-agent: truthweaver\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow: /\n"))
	}))
	defer server.Close()

	rc := NewRobotsChecker("truthweaver/0.3", 2*time.Second, "", "", "")
	ctx := context.Background()

	allowed, delay, err := rc.CanFetch(ctx, server.URL+"/news/story")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected /news/story to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("crawl delay = %v, want 2s", delay)
	}

	allowed, _, _ = rc.CanFetch(ctx, server.URL+"/private/doc")
	if allowed {
		t.Error("expected /private/doc to be disallowed")
	}

	if hits.Load() != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", hits.Load())
	}
}

func TestRobotsChecker_StatusSemantics(t *testing.T) {
	tests := []struct {
		status  int
		allowed bool
	}{
		{http.StatusNotFound, true},
		{http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		rc := NewRobotsChecker("truthweaver", time.Second, "", "", "")
		allowed, _, err := rc.CanFetch(context.Background(), server.URL+"/page")
		server.Close()

		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", tt.status, err)
		}
		if allowed != tt.allowed {
			t.Errorf("status %d: allowed = %v, want %v", tt.status, allowed, tt.allowed)
		}
	}
}

func TestRobotsChecker_Unreachable(t *testing.T) {
	rc := NewRobotsChecker("truthweaver", 500*time.Millisecond, "", "", "")
	allowed, _, err := rc.CanFetch(context.Background(), "http://127.0.0.1:1/page")
	if err != nil || !allowed {
		t.Errorf("unreachable robots.txt should allow, got %v, %v", allowed, err)
	}

	if _, _, err := rc.CanFetch(context.Background(), "ftp://example.com/file"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}
