package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/cache"
	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/util"
)

// DefaultBaseURL is the newsdata.io v1 API root
const DefaultBaseURL = "https://newsdata.io/api/1"

// ErrNoAPIKey is returned when the feed has no credential
var ErrNoAPIKey = errors.New("newsdata API key not configured")

// Article is one feed entry
type Article struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	SourceID    string `json:"source_id"`
}

// Query selects feed articles
type Query struct {
	Q        string
	Language string
	Country  string
	Category string
}

// Feed returns the latest articles matching a query
type Feed interface {
	Latest(ctx context.Context, q Query) ([]Article, error)
}

// HostLimiter throttles requests per host
type HostLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// NewsDataConfig configures the newsdata.io client
type NewsDataConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewsData is a client for the newsdata.io /news endpoint
type NewsData struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    HostLimiter
	cache      cache.Cache
	cacheTTL   time.Duration
	log        *zap.Logger
}

type newsDataResponse struct {
	Status       string          `json:"status"`
	TotalResults int             `json:"totalResults"`
	Results      json.RawMessage `json:"results"`
}

type newsDataError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NewNewsData creates a feed client. limiter and c may be nil.
func NewNewsData(cfg NewsDataConfig, limiter HostLimiter, c cache.Cache, log *zap.Logger) *NewsData {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &NewsData{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
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

// Latest fetches articles for q. Responses are cached per query.
func (n *NewsData) Latest(ctx context.Context, q Query) ([]Article, error) {
	if n.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	key := cache.Key("news", q.Q, q.Language, q.Country, q.Category)
	var cached []Article
	if cache.GetJSON(n.cache, key, &cached) {
		n.log.Debug("news cache hit", zap.String("category", q.Category))
		return cached, nil
	}

	params := url.Values{}
	params.Set("apikey", n.apiKey)
	if q.Q != "" {
		params.Set("q", q.Q)
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	endpoint := n.baseURL + "/news?" + params.Encode()

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx, endpoint); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", redactKey(err, n.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed newsDataResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("API error (%d): unmarshal response: %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Status != "success" {
		var apiErr newsDataError
		if err := json.Unmarshal(parsed.Results, &apiErr); err == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s - %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): status %q", resp.StatusCode, parsed.Status)
	}

	var articles []Article
	if len(parsed.Results) > 0 && string(parsed.Results) != "null" {
		if err := json.Unmarshal(parsed.Results, &articles); err != nil {
			return nil, fmt.Errorf("unmarshal articles: %w", err)
		}
	}

	if err := cache.SetJSON(n.cache, key, articles, n.cacheTTL); err != nil {
		n.log.Debug("news cache write failed", zap.Error(err))
	}
	return articles, nil
}

// redactKey keeps the API key out of logged URL errors
func redactKey(err error, key string) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, perr := url.Parse(uerr.URL); perr == nil {
			q := u.Query()
			if q.Get("apikey") == key {
				q.Set("apikey", "REDACTED")
				u.RawQuery = q.Encode()
				return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
			}
		}
	}
	return err
}
