package news

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/model"
)

// ScannerConfig holds the feed query used by plain scans
type ScannerConfig struct {
	Query    string
	Language string
	Country  string
}

// DefaultScannerConfig returns the crisis-oriented query
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		Query:    "crisis OR war OR disaster OR emergency OR earthquake OR attack",
		Language: "en",
		Country:  "us",
	}
}

// Scanner turns feed articles into unverified claims. With a nil feed, or
// when the feed fails or returns nothing, it yields a fixed mock claim.
type Scanner struct {
	feed     Feed
	config   ScannerConfig
	sanitize *bluemonday.Policy
	log      *zap.Logger
}

// NewScanner creates a scanner
func NewScanner(feed Feed, cfg ScannerConfig, log *zap.Logger) *Scanner {
	return &Scanner{
		feed:     feed,
		config:   cfg,
		sanitize: bluemonday.StrictPolicy(),
		log:      logging.OrNop(log),
	}
}

// Scan pulls the latest crisis-related headlines. sourceURL is recorded in
// logs only; the feed query is fixed by configuration.
func (s *Scanner) Scan(ctx context.Context, sourceURL string) []model.Claim {
	claims := s.fetch(ctx, Query{
		Q:        s.config.Query,
		Language: s.config.Language,
		Country:  s.config.Country,
	}, zap.String("source_url", sourceURL))
	if len(claims) > 0 {
		return claims
	}

	return []model.Claim{*model.NewClaim(GenericMockHeadline, model.SourceSocialMock, model.StatusUnverified)}
}

// ScanByCategory pulls headlines for one topic
func (s *Scanner) ScanByCategory(ctx context.Context, category string) []model.Claim {
	feedCategory := FeedCategory(category)
	claims := s.fetch(ctx, Query{
		Language: s.config.Language,
		Country:  s.config.Country,
		Category: feedCategory,
	}, zap.String("category", feedCategory))
	if len(claims) > 0 {
		return claims
	}

	return []model.Claim{*model.NewClaim(MockHeadline(category), model.SourceMockData, model.StatusUnverified)}
}

func (s *Scanner) fetch(ctx context.Context, q Query, field zap.Field) []model.Claim {
	if s.feed == nil {
		s.log.Debug("news feed disabled, using mock claims", field)
		return nil
	}

	articles, err := s.feed.Latest(ctx, q)
	if err != nil {
		s.log.Warn("news feed failed, using mock claims", field, zap.Error(err))
		return nil
	}

	claims := s.toClaims(articles)
	if len(claims) == 0 {
		s.log.Info("news feed returned no articles, using mock claims", field)
	}
	return claims
}

// toClaims converts articles, dropping empty and repeated titles. The
// first occurrence of a title wins.
func (s *Scanner) toClaims(articles []Article) []model.Claim {
	seen := make(map[string]bool)
	var claims []model.Claim

	for _, a := range articles {
		title := s.clean(a.Title)
		if title == "" || seen[title] {
			continue
		}
		seen[title] = true

		source := strings.TrimSpace(a.SourceID)
		if source == "" {
			source = model.SourceNewsData
		}
		content := s.clean(a.Description)
		if content == "" {
			content = title
		}

		c := model.NewClaim(title, source, model.StatusUnverified)
		c.AddEvidence(model.Evidence{Source: source, Content: content, URL: a.Link})
		claims = append(claims, *c)
	}

	return claims
}

// clean strips markup and collapses whitespace
func (s *Scanner) clean(text string) string {
	text = html.UnescapeString(s.sanitize.Sanitize(text))
	return strings.Join(strings.Fields(text), " ")
}
