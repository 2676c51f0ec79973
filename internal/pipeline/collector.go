package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/extract"
	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/search"
)

// MaxLinkTextRunes bounds the page text kept as link evidence
const MaxLinkTextRunes = 1000

// PageFetcher fetches a single page
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*FetchResult, error)
}

// CollectorConfig tunes the fact-check search strategy
type CollectorConfig struct {
	MaxResults    int      // Unique results kept across all queries
	QuerySuffixes []string // One query per suffix, in order
}

// DefaultCollectorConfig returns the standard search strategy
func DefaultCollectorConfig() CollectorConfig {
	return CollectorConfig{
		MaxResults:    3,
		QuerySuffixes: []string{"fact check", "snopes"},
	}
}

// Collector gathers evidence for a claim from a link, an uploaded
// artifact and a fact-check web search
type Collector struct {
	fetcher  PageFetcher
	searcher search.Searcher
	config   CollectorConfig
	log      *zap.Logger
}

// NewCollector creates a collector. A nil searcher disables web search.
func NewCollector(fetcher PageFetcher, searcher search.Searcher, cfg CollectorConfig, log *zap.Logger) *Collector {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	if len(cfg.QuerySuffixes) == 0 {
		cfg.QuerySuffixes = DefaultCollectorConfig().QuerySuffixes
	}
	return &Collector{
		fetcher:  fetcher,
		searcher: searcher,
		config:   cfg,
		log:      logging.OrNop(log),
	}
}

// Collect appends evidence to claim in the order link, artifact, search.
// Failures become evidence entries; Collect itself never fails.
func (c *Collector) Collect(ctx context.Context, claim *model.Claim, link string, artifact []byte) {
	if claim.Evidence == nil {
		claim.Evidence = []model.Evidence{}
	}

	if link = strings.TrimSpace(link); link != "" {
		c.collectLink(ctx, claim, link)
	}

	if len(artifact) > 0 {
		claim.AddEvidence(model.Evidence{
			Source:  model.EvidenceSourceUserImage,
			Content: fmt.Sprintf("Image received (%d bytes). Vision analysis not yet implemented.", len(artifact)),
			URL:     "",
		})
		if claim.Text == "" {
			claim.Text = "Verify uploaded image content"
		}
	}

	if strings.TrimSpace(claim.Text) != "" {
		c.collectSearch(ctx, claim)
	}
}

func (c *Collector) collectLink(ctx context.Context, claim *model.Claim, link string) {
	page, err := c.fetchPage(ctx, link)
	if err != nil {
		c.log.Warn("link evidence fetch failed", zap.String("url", link), zap.Error(err))
		claim.AddEvidence(model.Evidence{
			Source:  model.EvidenceSourceUserLink,
			Content: fmt.Sprintf("Failed to fetch content from %s: %v", link, err),
			URL:     link,
		})
		return
	}

	title := page.Title
	if title == "" {
		title = link
	}
	claim.AddEvidence(model.Evidence{
		Source:  model.EvidenceSourceUserLink + ": " + title,
		Content: "Extracted content: " + extract.Truncate(page.Text, MaxLinkTextRunes) + "...",
		URL:     link,
	})

	if claim.Text == "" {
		claim.Text = "Check content from " + link
	}
}

func (c *Collector) fetchPage(ctx context.Context, link string) (*extract.Page, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("no fetcher configured")
	}
	res, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}
	return extract.ParsePage(res.HTML)
}

func (c *Collector) collectSearch(ctx context.Context, claim *model.Claim) {
	if c.searcher == nil {
		return
	}

	text := strings.TrimSpace(claim.Text)
	seen := make(map[string]bool)

	for _, suffix := range c.config.QuerySuffixes {
		query := text + " " + suffix
		results, err := c.searcher.Search(ctx, query, c.config.MaxResults)
		if err != nil {
			c.log.Warn("fact-check search failed", zap.String("query", query), zap.Error(err))
			claim.AddEvidence(model.Evidence{
				Source:  model.EvidenceSourceSearchError,
				Content: fmt.Sprintf("Search failed: %v", err),
				URL:     "",
			})
			return
		}

		for _, r := range results {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true

			source := r.Title
			if source == "" {
				source = model.EvidenceSourceUnknown
			}
			claim.AddEvidence(model.Evidence{Source: source, Content: r.Snippet, URL: r.URL})

			if len(seen) >= c.config.MaxResults {
				return
			}
		}
	}
}
