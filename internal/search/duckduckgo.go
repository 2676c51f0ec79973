package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/esachdev28/truth-weaver/internal/cache"
	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/util"
)

// DefaultBaseURL is the JavaScript-free DuckDuckGo endpoint
const DefaultBaseURL = "https://html.duckduckgo.com/html/"

const maxResponseBytes = 1 << 20

// HostLimiter throttles requests per host
type HostLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Config configures the DuckDuckGo client
type Config struct {
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	CacheTTL   time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DuckDuckGo searches the DuckDuckGo HTML interface
type DuckDuckGo struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    HostLimiter
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *zap.Logger
}

// NewDuckDuckGo creates a client. limiter and c may be nil.
func NewDuckDuckGo(cfg Config, limiter HostLimiter, c cache.Cache, log *zap.Logger) *DuckDuckGo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}

	return &DuckDuckGo{
		baseURL:   baseURL,
		userAgent: ua,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)},
		},
		limiter:  limiter,
		cache:    c,
		cacheTTL: cfg.CacheTTL,
		log:      logging.OrNop(log),
	}
}

// Search runs query and returns at most max results
func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]Result, error) {
	key := cache.Key("search", query, fmt.Sprint(max))
	var cached []Result
	if cache.GetJSON(d.cache, key, &cached) {
		d.log.Debug("search cache hit", zap.String("query", query))
		return cached, nil
	}

	searchURL := d.baseURL + "?q=" + url.QueryEscape(query)

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, searchURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	results, err := ParseResults(string(body), max)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(d.cache, key, results, d.cacheTTL); err != nil {
		d.log.Debug("search cache write failed", zap.Error(err))
	}
	return results, nil
}

// ParseResults extracts organic results from a DuckDuckGo HTML page.
// Sponsored results are skipped.
func ParseResults(htmlContent string, max int) ([]Result, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	results := []Result{}

	var findResults func(*html.Node)
	findResults = func(n *html.Node) {
		if max > 0 && len(results) >= max {
			return
		}

		if n.Type == html.ElementNode && n.Data == "div" {
			class := attrValue(n, "class")
			if strings.Contains(class, "result") && strings.Contains(class, "results_links") {
				if strings.Contains(class, "result--ad") {
					return
				}
				if r := extractResult(n); r.URL != "" && r.Title != "" {
					results = append(results, r)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			findResults(c)
		}
	}

	findResults(doc)
	return results, nil
}

func extractResult(n *html.Node) Result {
	var r Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			class := attrValue(n, "class")
			switch {
			case strings.Contains(class, "result__a"):
				r.URL = attrValue(n, "href")
				r.Title = textContent(n)
			case strings.Contains(class, "result__snippet"):
				r.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	r.URL = unwrapRedirect(r.URL)
	return r
}

// unwrapRedirect turns //duckduckgo.com/l/?uddg=<target>&rut=... into <target>
func unwrapRedirect(raw string) string {
	if !strings.Contains(raw, "duckduckgo.com/l/") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return raw
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
