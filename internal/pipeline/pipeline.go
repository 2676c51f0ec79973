package pipeline

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/crisis"
	"github.com/esachdev28/truth-weaver/internal/explain"
	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/esachdev28/truth-weaver/internal/news"
	"github.com/esachdev28/truth-weaver/internal/registry"
	"github.com/esachdev28/truth-weaver/internal/score"
)

// Scorer assigns a credibility assessment to a claim
type Scorer interface {
	Score(ctx context.Context, claim *model.Claim) model.ScoreResponse
}

// Explainer writes a rationale for a verdict
type Explainer interface {
	Explain(ctx context.Context, text string, verdict model.Verdict, lang string) string
}

// NewsScanner pulls unverified claims from a news feed
type NewsScanner interface {
	Scan(ctx context.Context, sourceURL string) []model.Claim
	ScanByCategory(ctx context.Context, category string) []model.Claim
}

// Components are the stages wired together by a Pipeline. Nil fields
// get degraded-mode defaults.
type Components struct {
	Collector *Collector
	Scorer    Scorer
	Explainer Explainer
	Scanner   NewsScanner
	Detector  *crisis.Detector
	Registry  *registry.Registry
	Logger    *zap.Logger
}

// VerifyRequest is one user submission. At least one field should be set.
type VerifyRequest struct {
	Text  string
	Link  string
	Image []byte
}

// VerifyResult is the outcome of a verification pass
type VerifyResult struct {
	Claim model.Claim         `json:"claim"`
	Score model.ScoreResponse `json:"score"`
}

// Pipeline orchestrates collect, score, status and registration for
// submissions and scans
type Pipeline struct {
	collector *Collector
	scorer    Scorer
	explainer Explainer
	scanner   NewsScanner
	detector  *crisis.Detector
	registry  *registry.Registry
	activity  *Activity
	newID     func() string
	log       *zap.Logger
}

// New creates a pipeline from its components
func New(c Components) *Pipeline {
	log := logging.OrNop(c.Logger)

	p := &Pipeline{
		collector: c.Collector,
		scorer:    c.Scorer,
		explainer: c.Explainer,
		scanner:   c.Scanner,
		detector:  c.Detector,
		registry:  c.Registry,
		activity:  NewActivity(DefaultActivitySize),
		newID:     uuid.NewString,
		log:       log,
	}
	if p.collector == nil {
		p.collector = NewCollector(nil, nil, DefaultCollectorConfig(), log)
	}
	if p.scorer == nil {
		p.scorer = score.NewScorer(nil, log)
	}
	if p.explainer == nil {
		p.explainer = explain.NewExplainer(nil, log)
	}
	if p.scanner == nil {
		p.scanner = news.NewScanner(nil, news.DefaultScannerConfig(), log)
	}
	if p.detector == nil {
		p.detector = crisis.NewDetector()
	}
	if p.registry == nil {
		p.registry = registry.New()
	}
	return p
}

// Verify runs the full pass for one submission: collect evidence, score,
// set status from the verdict, then register. It always returns a
// well-formed result.
func (p *Pipeline) Verify(ctx context.Context, req VerifyRequest) VerifyResult {
	done := p.activity.Begin(AgentVerify)
	claim := model.NewClaim(strings.TrimSpace(req.Text), model.SourceUserSubmission, model.StatusProcessing)
	claim.ID = p.newID()

	p.collector.Collect(ctx, claim, req.Link, req.Image)
	done("Collected evidence for submitted claim", StatusSuccess)

	result := p.scoreClaim(ctx, claim)
	claim.Score = &result
	claim.Status = model.StatusFor(result.Verdict)

	p.registry.Append(*claim)
	p.log.Info("claim verified",
		zap.String("id", claim.ID),
		zap.String("verdict", string(result.Verdict)),
		zap.Int("evidence", len(claim.Evidence)),
	)

	return VerifyResult{Claim: claim.Clone(), Score: result}
}

// ScoreClaim scores an ad-hoc claim without registering it
func (p *Pipeline) ScoreClaim(ctx context.Context, text string, evidence []model.Evidence) model.ScoreResponse {
	claim := model.NewClaim(text, "", model.StatusUnverified)
	claim.AddEvidence(evidence...)
	return p.scoreClaim(ctx, claim)
}

func (p *Pipeline) scoreClaim(ctx context.Context, claim *model.Claim) model.ScoreResponse {
	done := p.activity.Begin(AgentScore)
	result := p.scorer.Score(ctx, claim)
	done("Scored claim as "+string(result.Verdict), StatusSuccess)
	return result
}

// Explain returns a rationale for a verdict. It does not touch the registry.
func (p *Pipeline) Explain(ctx context.Context, text string, verdict model.Verdict, lang string) string {
	done := p.activity.Begin(AgentExplain)
	out := p.explainer.Explain(ctx, text, verdict, lang)
	if out == explain.Unavailable {
		done("Explanation skipped, no provider", StatusWarning)
	} else {
		done("Generated explanation for "+string(verdict)+" verdict", StatusSuccess)
	}
	return out
}

// ScanAndRegister runs a news scan, assigns ids and registers every claim.
// An empty category uses the default crisis query.
func (p *Pipeline) ScanAndRegister(ctx context.Context, sourceURL, category string) []model.Claim {
	claims := p.scan(ctx, sourceURL, category)
	for i := range claims {
		claims[i].ID = p.newID()
	}
	p.registry.Append(claims...)
	p.log.Info("scan registered claims",
		zap.String("source_url", sourceURL),
		zap.String("category", category),
		zap.Int("claims", len(claims)),
	)
	return claims
}

func (p *Pipeline) scan(ctx context.Context, sourceURL, category string) []model.Claim {
	done := p.activity.Begin(AgentScan)
	var claims []model.Claim
	if strings.TrimSpace(category) != "" {
		claims = p.scanner.ScanByCategory(ctx, category)
	} else {
		claims = p.scanner.Scan(ctx, sourceURL)
	}
	done("Scanned for crisis events", StatusSuccess)
	return claims
}

// CheckCrisis runs crisis detection over the registry. When the registry
// is empty it scans fresh claims and checks those without registering them.
func (p *Pipeline) CheckCrisis(ctx context.Context) model.CrisisResponse {
	claims := p.registry.Snapshot()
	if len(claims) == 0 {
		p.log.Info("registry empty, scanning for breaking news")
		claims = p.scan(ctx, "", "")
	}

	resp := p.detector.Detect(claims)
	if resp.CrisisDetected {
		p.activity.Record(AgentSystem, "Crisis keywords detected", StatusWarning)
	}
	return resp
}

// Claims returns a snapshot of the registry
func (p *Pipeline) Claims() []model.Claim {
	return p.registry.Snapshot()
}

// Registry exposes the underlying claim store
func (p *Pipeline) Registry() *registry.Registry {
	return p.registry
}

// AgentStatus summarizes stage counters and recent activity
func (p *Pipeline) AgentStatus() AgentReport {
	return p.activity.Report()
}
