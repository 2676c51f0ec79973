package model

// Evidence is one piece of corroborating or refuting material
type Evidence struct {
	Source  string `json:"source"`  // Site title, search result title, or an error marker
	Content string `json:"content"` // Snippet, truncated page text, or failure description
	URL     string `json:"url"`     // Empty when not applicable, never omitted
}

// Evidence source markers
const (
	EvidenceSourceUserLink    = "User Link"
	EvidenceSourceUserImage   = "User Image"
	EvidenceSourceSearchError = "Search Error"
	EvidenceSourceUnknown     = "Unknown"
)
