package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/esachdev28/truth-weaver/internal/news"
)

var (
	scanCategory string
	scanTimeout  time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan [source-url]",
	Short: "Pull candidate claims from the news feed",
	Long: `Scan queries the news feed for crisis-related headlines, or for one
category, and prints the resulting unverified claims.

Without NEWSDATA_API_KEY, or when the feed returns nothing, a fixed mock
headline is returned instead.

Unknown categories fall back to the feed's top stories.

Example:
  truthweaver scan
  truthweaver scan --category health`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanCategory, "category", "",
		"news category to scan ("+strings.Join(news.Categories(), ", ")+")")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 30*time.Second, "scan timeout")
}

func runScan(cmd *cobra.Command, args []string) error {
	sourceURL := ""
	if len(args) == 1 {
		sourceURL = args[0]
	}

	a, err := buildApp(appConfig, logger, false)
	if err != nil {
		return err
	}

	warnUnknownCategory(cmd.ErrOrStderr(), scanCategory)

	ctx, cancel := context.WithTimeout(cmd.Context(), scanTimeout)
	defer cancel()

	claims := a.pipeline.ScanAndRegister(ctx, sourceURL, scanCategory)
	return printJSON(cmd.OutOrStdout(), claims)
}

// warnUnknownCategory reports categories that will be scanned as top stories
func warnUnknownCategory(w io.Writer, category string) bool {
	if category == "" || slices.Contains(news.Categories(), strings.ToLower(strings.TrimSpace(category))) {
		return false
	}
	_, _ = fmt.Fprintf(w, "unknown category %q, scanning top stories\n", category)
	return true
}
