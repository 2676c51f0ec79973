package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/pipeline"
)

// ClaimScanner pulls claims from the news feed and registers them
type ClaimScanner interface {
	ScanAndRegister(ctx context.Context, sourceURL, category string) []model.Claim
}

// ScanJob is a background news scan
type ScanJob struct {
	SourceURL string
	Category  string
	Scanner   ClaimScanner
}

// Execute runs the scan
func (j *ScanJob) Execute(ctx context.Context) Result {
	claims := j.Scanner.ScanAndRegister(ctx, j.SourceURL, j.Category)
	return &ScanResult{
		SourceURL: j.SourceURL,
		Category:  j.Category,
		Claims:    claims,
		Error:     ctx.Err(),
	}
}

// ScanResult represents the result of a scan job
type ScanResult struct {
	SourceURL string
	Category  string
	Claims    []model.Claim
	Error     error
}

// GetError returns the error from the scan result
func (r *ScanResult) GetError() error {
	return r.Error
}

// Verifier runs the full verification pass for one submission
type Verifier interface {
	Verify(ctx context.Context, req pipeline.VerifyRequest) pipeline.VerifyResult
}

// VerifyJob verifies one line of a batch. Ctx, when set, is the caller's
// context; the job stops when either it or the pool is cancelled.
type VerifyJob struct {
	Ctx      context.Context
	Index    int
	Request  pipeline.VerifyRequest
	Verifier Verifier
}

// Execute runs the verification
func (j *VerifyJob) Execute(ctx context.Context) Result {
	if j.Ctx != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(j.Ctx, cancel)
		defer stop()
		if err := j.Ctx.Err(); err != nil {
			return &VerifyOutcome{Index: j.Index, Request: j.Request, Error: err}
		}
	}

	res := j.Verifier.Verify(ctx, j.Request)
	return &VerifyOutcome{
		Index:   j.Index,
		Request: j.Request,
		Result:  res,
		Error:   ctx.Err(),
	}
}

// VerifyOutcome represents the result of a verify job
type VerifyOutcome struct {
	Index   int
	Request pipeline.VerifyRequest
	Result  pipeline.VerifyResult
	Error   error
}

// GetError returns the error from the verify outcome
func (r *VerifyOutcome) GetError() error {
	return r.Error
}

// BatchProcessor verifies many claims concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// Process verifies each request and returns outcomes in input order.
// Once ctx is done no further requests are submitted; those requests get
// an outcome carrying ctx's error.
func (b *BatchProcessor) Process(ctx context.Context, reqs []pipeline.VerifyRequest) []*VerifyOutcome {
	if len(reqs) == 0 {
		return []*VerifyOutcome{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	var skipped []*VerifyOutcome
	for i, req := range reqs {
		if err := ctx.Err(); err != nil {
			skipped = append(skipped, &VerifyOutcome{Index: i, Request: req, Error: err})
			continue
		}
		if !pool.Submit(&VerifyJob{Ctx: ctx, Index: i, Request: req, Verifier: b.verifier}) {
			skipped = append(skipped, &VerifyOutcome{Index: i, Request: req, Error: fmt.Errorf("submit: pool closed")})
		}
	}

	results := pool.Wait()

	outcomes := make([]*VerifyOutcome, 0, len(results)+len(skipped))
	outcomes = append(outcomes, skipped...)
	for _, result := range results {
		if o, ok := result.(*VerifyOutcome); ok {
			outcomes = append(outcomes, o)
		}
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Index < outcomes[j].Index })

	return outcomes
}

// ProcessFile reads submissions from a file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyOutcome, error) {
	reqs, err := ReadRequestsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}

	return b.Process(ctx, reqs), nil
}

// ReadRequestsFromFile reads one submission per line. Lines starting with
// http:// or https:// are submitted as links, anything else as claim text.
// Blank lines, # comments and duplicates are skipped.
func ReadRequestsFromFile(filePath string) ([]pipeline.VerifyRequest, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var reqs []pipeline.VerifyRequest
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			reqs = append(reqs, pipeline.VerifyRequest{Link: line})
		} else {
			reqs = append(reqs, pipeline.VerifyRequest{Text: line})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return reqs, nil
}
