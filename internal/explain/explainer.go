package explain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/esachdev28/truth-weaver/internal/llm"
	"github.com/esachdev28/truth-weaver/internal/logging"
	"github.com/esachdev28/truth-weaver/internal/model"
)

const (
	// Unavailable is returned when no text-generation provider is configured
	Unavailable = "Explanation unavailable (No AI Key)."

	// DefaultLanguage is used when the caller does not name one
	DefaultLanguage = "en"

	systemPrompt = "You are a helpful assistant."
)

// Explainer writes short rationales for verdicts
type Explainer struct {
	provider llm.Provider
	log      *zap.Logger
}

// NewExplainer creates an explainer; a nil provider means degraded mode
func NewExplainer(provider llm.Provider, log *zap.Logger) *Explainer {
	return &Explainer{provider: provider, log: logging.OrNop(log)}
}

// Explain returns a concise rationale for why text received verdict.
// Failures are reported inside the returned text.
func (e *Explainer) Explain(ctx context.Context, text string, verdict model.Verdict, lang string) string {
	if e.provider == nil {
		return Unavailable
	}
	if strings.TrimSpace(lang) == "" {
		lang = DefaultLanguage
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System: systemPrompt,
		Prompt: BuildPrompt(text, verdict, lang),
	})
	if err != nil {
		e.log.Warn("explanation call failed", zap.String("provider", e.provider.Name()), zap.Error(err))
		return fmt.Sprintf("Error generating explanation: %v", err)
	}
	return resp.Text
}

// BuildPrompt renders the explanation request
func BuildPrompt(text string, verdict model.Verdict, lang string) string {
	return fmt.Sprintf("Explain why the claim '%s' was judged as %s. Language: %s. Keep it concise.", text, verdict, lang)
}
