package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/pipeline"
	"github.com/esachdev28/truth-weaver/internal/worker"
)

var (
	concurrency  int
	batchOut     string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many claims from a file in parallel",
	Long: `Batch verifies one submission per line concurrently:
- Lines starting with http:// or https:// are verified as links
- Any other line is verified as claim text
- Blank lines, # comments and duplicates are skipped

Results are written as a JSON array in input order, followed by a crisis
check over everything that was verified.

Example:
  truthweaver batch claims.txt
  truthweaver batch claims.txt --concurrency 8 --out results.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write results to this file instead of stdout")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

type batchRecord struct {
	Line  int                 `json:"line"`
	Claim model.Claim         `json:"claim"`
	Score model.ScoreResponse `json:"score"`
	Error string              `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Truth Weaver Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	a, err := buildApp(appConfig, logger, true)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(a.pipeline, concurrency)
	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	records := make([]batchRecord, 0, len(outcomes))
	counts := make(map[model.Verdict]int)
	failures := 0
	for _, o := range outcomes {
		rec := batchRecord{Line: o.Index + 1, Claim: o.Result.Claim, Score: o.Result.Score}
		if o.Error != nil {
			failures++
			rec.Error = o.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", requestLabel(o.Request), o.Error)
		} else {
			counts[o.Result.Score.Verdict]++
			fmt.Fprintf(os.Stderr, "✓ [%s %d/100] %s\n", o.Result.Score.Verdict, o.Result.Score.FinalScore, o.Result.Claim.Text)
		}
		records = append(records, rec)
	}

	if err := writeBatchResults(cmd, records); err != nil {
		return err
	}

	crisis := a.pipeline.CheckCrisis(ctx)

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:       %d claims\n", len(outcomes))
	fmt.Fprintf(os.Stderr, "  Verified:    %d\n", counts[model.VerdictVerified])
	fmt.Fprintf(os.Stderr, "  False:       %d\n", counts[model.VerdictFalse])
	fmt.Fprintf(os.Stderr, "  Mixed:       %d\n", counts[model.VerdictMixed])
	fmt.Fprintf(os.Stderr, "  Unverified:  %d\n", counts[model.VerdictUnverified])
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Crisis:      %d alert(s)\n", len(crisis.Alerts))
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

func writeBatchResults(cmd *cobra.Command, records []batchRecord) (err error) {
	if batchOut == "" {
		return printJSON(cmd.OutOrStdout(), records)
	}

	f, err := os.Create(batchOut)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
	}()

	if err := printJSON(f, records); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\n✓ Wrote results: %s\n", batchOut)
	return nil
}

// requestLabel names a submission for progress output
func requestLabel(req pipeline.VerifyRequest) string {
	if req.Text != "" {
		return req.Text
	}
	return req.Link
}
