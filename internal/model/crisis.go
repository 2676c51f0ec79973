package model

// CrisisAlert flags a claim whose text contains crisis vocabulary
type CrisisAlert struct {
	ID          string   `json:"id"`          // Stable hash of the claim text
	Title       string   `json:"title"`
	Severity    string   `json:"severity"`    // Always "HIGH"
	Region      string   `json:"region"`      // Always "Unknown"
	Verified    bool     `json:"verified"`    // Claim status was verified at detection time
	Keywords    []string `json:"keywords"`    // Matched keywords in table order
	Description string   `json:"description"` // Claim text
}

// CrisisResponse aggregates alerts over a set of claims
type CrisisResponse struct {
	CrisisDetected     bool          `json:"crisis_detected"`
	Alerts             []CrisisAlert `json:"alerts"`
	RecommendedActions []string      `json:"recommended_actions"`
}
