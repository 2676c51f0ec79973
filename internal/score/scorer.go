package score

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/llm"
	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/model"
)

// SystemPrompt is sent with every scoring request
const SystemPrompt = "You are a fact-checking AI. Output ONLY JSON."

var errMalformedReply = errors.New("malformed score reply")

// Scorer produces credibility assessments through a text-generation provider.
// A nil provider puts the scorer in degraded mode.
type Scorer struct {
	provider llm.Provider
	log      *zap.Logger
}

// NewScorer creates a scorer
func NewScorer(provider llm.Provider, log *zap.Logger) *Scorer {
	return &Scorer{provider: provider, log: logging.OrNop(log)}
}

// Enabled reports whether a provider is configured
func (s *Scorer) Enabled() bool {
	return s.provider != nil
}

// Score assesses a claim against its evidence. It never fails: missing
// credentials, call errors and unparseable replies all yield FallbackScore.
func (s *Scorer) Score(ctx context.Context, claim *model.Claim) model.ScoreResponse {
	if s.provider == nil {
		return model.FallbackScore()
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		System: SystemPrompt,
		Prompt: BuildPrompt(claim.Text, claim.Evidence),
		JSON:   true,
	})
	if err != nil {
		s.log.Warn("scoring call failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return model.FallbackScore()
	}

	result, err := ParseReply(resp.Text)
	if err != nil {
		s.log.Warn("scoring reply rejected", zap.Error(err), zap.String("reply", truncate(resp.Text, 200)))
		return model.FallbackScore()
	}

	if !result.Verdict.InBand(result.FinalScore) {
		s.log.Info("score outside verdict band",
			zap.String("verdict", string(result.Verdict)),
			zap.Int("final_score", result.FinalScore))
	}

	return result
}

// BuildPrompt renders the scoring prompt for a claim and its evidence
func BuildPrompt(text string, evidence []model.Evidence) string {
	lines := make([]string, 0, len(evidence))
	for _, e := range evidence {
		lines = append(lines, fmt.Sprintf("- %s (%s)", e.Content, e.URL))
	}
	evidenceText := strings.Join(lines, "\n")
	if evidenceText == "" {
		evidenceText = "(no evidence collected)"
	}

	return fmt.Sprintf(`Analyze the following claim based on the evidence provided.
Claim: %s
Evidence:
%s

Return a JSON object with the following keys:
- final_score (integer 0-100)
- source_reliability (integer 0-100)
- evidence_strength (integer 0-100)
- consistency (integer 0-100)
- verdict (VERIFIED, FALSE, MIXED, UNVERIFIED)

Scoring policy:
- FALSE requires final_score between 0 and 30
- MIXED requires final_score between 40 and 60
- VERIFIED requires final_score between 70 and 100
- Use UNVERIFIED when the evidence is insufficient to decide`, text, evidenceText)
}

type scoreReply struct {
	FinalScore        *json.Number `json:"final_score"`
	SourceReliability *json.Number `json:"source_reliability"`
	EvidenceStrength  *json.Number `json:"evidence_strength"`
	Consistency       *json.Number `json:"consistency"`
	Verdict           *string      `json:"verdict"`
}

// ParseReply decodes a model reply into a ScoreResponse. The JSON object
// may be wrapped in prose or code fences. All five fields are required;
// scores are rounded and clamped to [0,100].
func ParseReply(raw string) (model.ScoreResponse, error) {
	body := extractJSON(raw)
	if body == "" {
		return model.ScoreResponse{}, fmt.Errorf("%w: no JSON object", errMalformedReply)
	}

	var reply scoreReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return model.ScoreResponse{}, fmt.Errorf("%w: %v", errMalformedReply, err)
	}

	if reply.Verdict == nil {
		return model.ScoreResponse{}, fmt.Errorf("%w: missing verdict", errMalformedReply)
	}
	verdict, ok := model.ParseVerdict(*reply.Verdict)
	if !ok {
		return model.ScoreResponse{}, fmt.Errorf("%w: unknown verdict %q", errMalformedReply, *reply.Verdict)
	}

	var out model.ScoreResponse
	out.Verdict = verdict
	fields := []struct {
		name string
		num  *json.Number
		dst  *int
	}{
		{"final_score", reply.FinalScore, &out.FinalScore},
		{"source_reliability", reply.SourceReliability, &out.SourceReliability},
		{"evidence_strength", reply.EvidenceStrength, &out.EvidenceStrength},
		{"consistency", reply.Consistency, &out.Consistency},
	}
	for _, f := range fields {
		if f.num == nil {
			return model.ScoreResponse{}, fmt.Errorf("%w: missing %s", errMalformedReply, f.name)
		}
		v, err := f.num.Float64()
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return model.ScoreResponse{}, fmt.Errorf("%w: %s is not a number", errMalformedReply, f.name)
		}
		*f.dst = int(math.Max(0, math.Min(100, math.Round(v))))
	}

	return out, nil
}

func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "…"
}
