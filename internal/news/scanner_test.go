package news

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/esachdev28/truth-weaver/internal/model"
)

type fakeFeed struct {
	articles []Article
	err      error
	queries  []Query
}

func (f *fakeFeed) Latest(ctx context.Context, q Query) ([]Article, error) {
	f.queries = append(f.queries, q)
	return f.articles, f.err
}

func TestScanByCategory_HealthFallback(t *testing.T) {
	for name, feed := range map[string]Feed{
		"no feed":    nil,
		"feed error": &fakeFeed{err: errors.New("503")},
		"no results": &fakeFeed{},
	} {
		t.Run(name, func(t *testing.T) {
			claims := NewScanner(feed, DefaultScannerConfig(), nil).ScanByCategory(context.Background(), "health")
			require.Len(t, claims, 1)
			require.Equal(t, model.SourceMockData, claims[0].Source)
			require.Equal(t, "Health officials report a new surge in seasonal flu cases.", claims[0].Text)
			require.Equal(t, model.StatusUnverified, claims[0].Status)
			require.NotNil(t, claims[0].Evidence)
		})
	}
}

func TestScan_GenericFallback(t *testing.T) {
	claims := NewScanner(nil, DefaultScannerConfig(), nil).Scan(context.Background(), "https://twitter.com")
	require.Len(t, claims, 1)
	require.Equal(t, GenericMockHeadline, claims[0].Text)
	require.Equal(t, model.SourceSocialMock, claims[0].Source)
}

func TestScan_ConvertsAndDedupes(t *testing.T) {
	feed := &fakeFeed{articles: []Article{
		{Title: "Flood warning issued", Description: "<p>Rivers <b>rising</b> &amp; roads closed</p>", Link: "https://a.example/1", SourceID: "ap"},
		{Title: "Flood warning issued", Description: "duplicate", Link: "https://b.example/2", SourceID: "cnn"},
		{Title: "   ", Description: "no title"},
		{Title: "Storm nears coast", Link: "https://c.example/3"},
	}}

	claims := NewScanner(feed, DefaultScannerConfig(), nil).Scan(context.Background(), "")
	require.Len(t, claims, 2)

	require.Equal(t, "Flood warning issued", claims[0].Text)
	require.Equal(t, "ap", claims[0].Source)
	require.Equal(t, []model.Evidence{{Source: "ap", Content: "Rivers rising & roads closed", URL: "https://a.example/1"}}, claims[0].Evidence)

	require.Equal(t, "newsdata", claims[1].Source)
	require.Equal(t, "Storm nears coast", claims[1].Evidence[0].Content, "title stands in for a missing description")

	require.Len(t, feed.queries, 1)
	require.Equal(t, DefaultScannerConfig().Query, feed.queries[0].Q)
	require.Equal(t, "en", feed.queries[0].Language)
	require.Equal(t, "us", feed.queries[0].Country)
	require.Empty(t, feed.queries[0].Category)
}

func TestScanByCategory_MapsCategory(t *testing.T) {
	feed := &fakeFeed{articles: []Article{{Title: "Chip shortage eases"}}}
	s := NewScanner(feed, DefaultScannerConfig(), nil)

	s.ScanByCategory(context.Background(), "Tech")
	s.ScanByCategory(context.Background(), "astrology")

	require.Equal(t, "technology", feed.queries[0].Category)
	require.Equal(t, "top", feed.queries[1].Category)
	require.Empty(t, feed.queries[0].Q)
}

func TestFeedCategory(t *testing.T) {
	tests := map[string]string{
		"politics": "politics",
		" HEALTH ": "health",
		"finance":  "business",
		"climate":  "environment",
		"crisis":   "top",
		"":         "top",
		"unknown":  "top",
	}
	for in, want := range tests {
		require.Equal(t, want, FeedCategory(in), in)
	}
	require.IsNonDecreasing(t, Categories())
	for _, c := range Categories() {
		require.NotEmpty(t, MockHeadline(c), c)
	}
	require.Equal(t, GenericMockHeadline, MockHeadline("nonsense"))
}
