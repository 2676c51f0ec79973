package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	crisisCategories []string
	crisisJSON       bool
)

var crisisCmd = &cobra.Command{
	Use:   "crisis",
	Short: "Scan the news and report crisis alerts",
	Long: `Crisis scans the news feed (all crisis headlines, or the given
categories) and flags claims containing crisis vocabulary.

Example:
  truthweaver crisis
  truthweaver crisis --category world --category environment --json`,
	Args: cobra.NoArgs,
	RunE: runCrisis,
}

func init() {
	rootCmd.AddCommand(crisisCmd)

	crisisCmd.Flags().StringSliceVar(&crisisCategories, "category", nil, "categories to scan before detection")
	crisisCmd.Flags().BoolVar(&crisisJSON, "json", false, "print the full response as JSON")
}

func runCrisis(cmd *cobra.Command, args []string) error {
	a, err := buildApp(appConfig, logger, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	for _, category := range crisisCategories {
		warnUnknownCategory(cmd.ErrOrStderr(), category)
		a.pipeline.ScanAndRegister(ctx, "", category)
	}
	resp := a.pipeline.CheckCrisis(ctx)

	if crisisJSON {
		return printJSON(cmd.OutOrStdout(), resp)
	}

	out := cmd.OutOrStdout()
	if !resp.CrisisDetected {
		fmt.Fprintln(out, "No crisis detected.")
		return nil
	}

	fmt.Fprintf(out, "%d potential crisis alert(s)\n\n", len(resp.Alerts))
	for _, alert := range resp.Alerts {
		marker := " "
		if alert.Verified {
			marker = "✓"
		}
		fmt.Fprintf(out, "%s [%s] %s\n", marker, alert.Severity, alert.Description)
		fmt.Fprintf(out, "    keywords: %s\n", strings.Join(alert.Keywords, ", "))
	}
	fmt.Fprintf(out, "\nRecommended: %s\n", strings.Join(resp.RecommendedActions, "; "))
	return nil
}
