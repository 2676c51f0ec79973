package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/pipeline"
)

var (
	verifyLink    string
	verifyImage   string
	verifyExplain bool
	verifyLang    string
	verifyTimeout time.Duration
)

var verifyCmd = &cobra.Command{
	Use:   "verify [claim text]",
	Short: "Verify a single claim and print the result as JSON",
	Long: `Verify collects evidence for a claim (from a link, an image and a
fact-check web search), scores it and prints the claim with its score.

Example:
  truthweaver verify "The Great Wall of China is visible from space"
  truthweaver verify --link https://example.com/story
  truthweaver verify --image photo.jpg --explain --lang es`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyLink, "link", "", "URL to collect as evidence")
	verifyCmd.Flags().StringVar(&verifyImage, "image", "", "image file to attach")
	verifyCmd.Flags().BoolVar(&verifyExplain, "explain", false, "also generate an explanation of the verdict")
	verifyCmd.Flags().StringVar(&verifyLang, "lang", "en", "explanation language")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "overall timeout")
}

type verifyOutput struct {
	Claim       model.Claim         `json:"claim"`
	Score       model.ScoreResponse `json:"score"`
	Explanation string              `json:"explanation,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	req := pipeline.VerifyRequest{
		Text: strings.TrimSpace(strings.Join(args, " ")),
		Link: strings.TrimSpace(verifyLink),
	}
	if verifyImage != "" {
		data, err := readLimited(verifyImage, appConfig.Server.MaxUploadBytes)
		if err != nil {
			return err
		}
		req.Image = data
	}
	if req.Text == "" && req.Link == "" && len(req.Image) == 0 {
		return fmt.Errorf("nothing to verify: pass claim text, --link or --image")
	}

	a, err := buildApp(appConfig, logger, true)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	res := a.pipeline.Verify(ctx, req)
	out := verifyOutput{Claim: res.Claim, Score: res.Score}
	if verifyExplain {
		out.Explanation = a.pipeline.Explain(ctx, res.Claim.Text, res.Score.Verdict, verifyLang)
	}

	return printJSON(cmd.OutOrStdout(), out)
}

func readLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("image exceeds %d bytes", limit)
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
