package model

import "strings"

// ScoreResponse is the structured credibility assessment of a claim
type ScoreResponse struct {
	FinalScore        int     `json:"final_score"`        // 0-100
	SourceReliability int     `json:"source_reliability"` // 0-100
	EvidenceStrength  int     `json:"evidence_strength"`  // 0-100
	Consistency       int     `json:"consistency"`        // 0-100
	Verdict           Verdict `json:"verdict"`
}

// Verdict is the categorical outcome of scoring
type Verdict string

const (
	VerdictVerified   Verdict = "VERIFIED"
	VerdictFalse      Verdict = "FALSE"
	VerdictMixed      Verdict = "MIXED"
	VerdictUnverified Verdict = "UNVERIFIED"
)

// ParseVerdict normalizes s into a known verdict.
func ParseVerdict(s string) (Verdict, bool) {
	switch v := Verdict(strings.ToUpper(strings.TrimSpace(s))); v {
	case VerdictVerified, VerdictFalse, VerdictMixed, VerdictUnverified:
		return v, true
	default:
		return "", false
	}
}

// InBand reports whether score falls inside the range the verdict implies.
// UNVERIFIED has no band.
func (v Verdict) InBand(score int) bool {
	switch v {
	case VerdictFalse:
		return score >= 0 && score <= 30
	case VerdictVerified:
		return score >= 70 && score <= 100
	case VerdictMixed:
		return score >= 40 && score <= 60
	default:
		return true
	}
}

// FallbackScore is returned whenever scoring is unavailable or fails
func FallbackScore() ScoreResponse {
	return ScoreResponse{Verdict: VerdictUnverified}
}

// StatusFor maps a verdict to the claim status it implies
func StatusFor(v Verdict) ClaimStatus {
	if v == VerdictVerified {
		return StatusVerified
	}
	return StatusUnverified
}
