// Package crisis flags claims whose text contains crisis vocabulary.
package crisis

import (
	"fmt"
	"strings"

	"github.com/OneOfOne/xxhash"

	"github.com/esachdev28/truth-weaver/internal/model"
)

const (
	alertTitle    = "Potential Crisis Detected"
	alertSeverity = "HIGH"
	alertRegion   = "Unknown"
)

// Keywords is the ordered crisis vocabulary. Alert keywords are reported
// in this order.
var Keywords = []string{
	"earthquake", "pandemic", "violence", "tsunami", "terror", "flood", "war", "attack", "assassinated",
	"airstrike", "conflict", "dead", "killed", "crisis", "warning", "strike", "military", "navy",
	"russia", "israel", "lebanon", "gaza", "ukraine", "iran", "missile", "bomb", "blast", "explosion",
	"fire", "wildfire", "storm", "hurricane", "tornado", "typhoon", "cyclone", "weather", "heat",
	"emergency", "rescue", "police", "arrest", "shoot", "gun", "crime", "murder", "crash", "accident",
	"disaster", "danger", "threat", "alert", "breaking",
}

// RecommendedActions is returned whenever at least one alert fires
var RecommendedActions = []string{"Monitor situation", "Verify sources"}

// Detector matches claims against a keyword table
type Detector struct {
	keywords []string
}

// NewDetector creates a detector over the default keyword table
func NewDetector() *Detector {
	return &Detector{keywords: Keywords}
}

// Match returns the keywords found in text. Matching is a plain
// case-insensitive substring test, so "war" also hits "warning".
func (d *Detector) Match(text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, k := range d.keywords {
		if strings.Contains(lower, k) {
			hits = append(hits, k)
		}
	}
	return hits
}

// Detect emits one alert per matching claim, in input order
func (d *Detector) Detect(claims []model.Claim) model.CrisisResponse {
	alerts := []model.CrisisAlert{}
	for _, c := range claims {
		hits := d.Match(c.Text)
		if len(hits) == 0 {
			continue
		}
		alerts = append(alerts, model.CrisisAlert{
			ID:          AlertID(c.Text),
			Title:       alertTitle,
			Severity:    alertSeverity,
			Region:      alertRegion,
			Verified:    c.Status == model.StatusVerified,
			Keywords:    hits,
			Description: c.Text,
		})
	}

	actions := []string{}
	if len(alerts) > 0 {
		actions = append(actions, RecommendedActions...)
	}

	return model.CrisisResponse{
		CrisisDetected:     len(alerts) > 0,
		Alerts:             alerts,
		RecommendedActions: actions,
	}
}

// AlertID is the xxhash64 of text as 16 hex digits. The seed is fixed,
// so ids survive restarts.
func AlertID(text string) string {
	return fmt.Sprintf("%016x", xxhash.ChecksumString64(text))
}
