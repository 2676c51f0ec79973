package cli

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/cache"
	"github.com/esachdev28/truth-weaver/internal/explain"
	"github.com/esachdev28/truth-weaver/internal/llm"
	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/news"
	"github.com/esachdev28/truth-weaver/internal/pipeline"
	"github.com/esachdev28/truth-weaver/internal/score"
	"github.com/esachdev28/truth-weaver/internal/search"
	"github.com/esachdev28/truth-weaver/internal/util"
	"github.com/esachdev28/truth-weaver/internal/worker"
)

// app is a fully wired pipeline plus the provider it scores with
type app struct {
	pipeline *pipeline.Pipeline
	provider llm.Provider
	creds    model.Credentials
}

// buildApp wires every stage from configuration. retryFetches makes link
// evidence use FetchWithRetry; the HTTP server keeps single attempts.
func buildApp(cfg *model.Config, log *zap.Logger, retryFetches bool) (*app, error) {
	creds, err := model.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg, creds))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	if provider == nil {
		log.Warn("no text-generation credential, scoring and explanations run degraded",
			zap.String("provider", cfg.LLM.Provider))
	} else {
		log.Info("text generation enabled", zap.String("provider", provider.Name()))
	}

	memCache := cache.NewMemoryCache(5*time.Minute, 10*time.Minute)

	fetcher := pipeline.NewFetcher(
		model.Seconds(cfg.HTTP.Timeout),
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy,
	)
	if cfg.HTTP.RespectRobots {
		robots := util.NewRobotsChecker(cfg.HTTP.UserAgent, model.Seconds(cfg.HTTP.Timeout),
			cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
		// crawl delays only, no base rate
		fetcher.WithPoliteness(robots, worker.NewLimiter(0, 1))
	}
	var pageFetcher pipeline.PageFetcher = fetcher
	if retryFetches {
		pageFetcher = fetcher.Retrying()
	}

	searcher := search.NewDuckDuckGo(search.Config{
		BaseURL:    cfg.Search.BaseURL,
		Timeout:    model.Seconds(cfg.HTTP.Timeout),
		CacheTTL:   model.Seconds(cfg.Search.CacheTTL),
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}, worker.NewLimiter(cfg.Search.RequestsPerSecond, cfg.Search.Burst), memCache, log.Named("search"))

	var feed news.Feed
	if creds.NewsDataAPIKey != "" {
		feed = news.NewNewsData(news.NewsDataConfig{
			BaseURL:    cfg.News.BaseURL,
			APIKey:     creds.NewsDataAPIKey,
			Timeout:    model.Seconds(cfg.HTTP.Timeout),
			CacheTTL:   model.Seconds(cfg.News.CacheTTL),
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
		}, worker.NewLimiter(cfg.News.RequestsPerSecond, 1), memCache, log.Named("news"))
	} else {
		log.Warn("no news feed credential, scans return mock claims")
	}

	p := pipeline.New(pipeline.Components{
		Collector: pipeline.NewCollector(pageFetcher, searcher, pipeline.CollectorConfig{
			MaxResults:    cfg.Search.MaxResults,
			QuerySuffixes: cfg.Search.QuerySuffixes,
		}, log.Named("collector")),
		Scorer:    score.NewScorer(provider, log.Named("score")),
		Explainer: explain.NewExplainer(provider, log.Named("explain")),
		Scanner: news.NewScanner(feed, news.ScannerConfig{
			Query:    cfg.News.Query,
			Language: cfg.News.Language,
			Country:  cfg.News.Country,
		}, log.Named("scanner")),
		Logger: log,
	})

	return &app{pipeline: p, provider: provider, creds: creds}, nil
}
