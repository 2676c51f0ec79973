package model

// Claim is a statement under evaluation together with the evidence gathered for it
type Claim struct {
	ID       string         `json:"id"`       // Assigned at creation or on registry insertion
	Text     string         `json:"text"`     // Statement being evaluated, may be derived from a link or upload
	Source   string         `json:"source"`   // Origin label (feed name, "mock_data", "user_submission", ...)
	Status   ClaimStatus    `json:"status"`   // unverified, processing, verified
	Evidence []Evidence     `json:"evidence"` // Collection order: link, artifact, search
	Score    *ScoreResponse `json:"score"`    // Attached after scoring, null until then
}

// ClaimStatus tracks where a claim is in the verification lifecycle
type ClaimStatus string

const (
	StatusUnverified ClaimStatus = "unverified"
	StatusProcessing ClaimStatus = "processing"
	StatusVerified   ClaimStatus = "verified"
)

// Source labels used for claims that do not come from a feed
const (
	SourceUserSubmission = "user_submission"
	SourceSocialMock     = "social_media_mock"
	SourceMockData       = "mock_data"
	SourceNewsData       = "newsdata"
)

// NewClaim returns a claim with a non-nil evidence slice.
func NewClaim(text, source string, status ClaimStatus) *Claim {
	return &Claim{
		Text:     text,
		Source:   source,
		Status:   status,
		Evidence: []Evidence{},
	}
}

// AddEvidence appends evidence in collection order.
func (c *Claim) AddEvidence(ev ...Evidence) {
	c.Evidence = append(c.Evidence, ev...)
}

// Clone returns a deep copy of the claim
func (c Claim) Clone() Claim {
	out := c
	out.Evidence = make([]Evidence, len(c.Evidence))
	copy(out.Evidence, c.Evidence)
	if c.Score != nil {
		s := *c.Score
		out.Score = &s
	}
	return out
}
