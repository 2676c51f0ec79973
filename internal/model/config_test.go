package model

import "testing"

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")
	t.Setenv("NEWSDATA_API_KEY", "pub-test")
	t.Setenv("OLLAMA_BASE_URL", "")

	creds, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if creds.GroqAPIKey != "gsk-test" {
		t.Errorf("GroqAPIKey = %q, want gsk-test", creds.GroqAPIKey)
	}
	if creds.NewsDataAPIKey != "pub-test" {
		t.Errorf("NewsDataAPIKey = %q, want pub-test", creds.NewsDataAPIKey)
	}
	if got := creds.LLMKey("groq"); got != "gsk-test" {
		t.Errorf("LLMKey(groq) = %q", got)
	}
	if got := (Credentials{AnthropicAPIKey: "ant"}).LLMKey("claude"); got != "ant" {
		t.Errorf("LLMKey(claude) = %q, want anthropic key", got)
	}
	if got := creds.LLMKey("ollama"); got != "" {
		t.Errorf("LLMKey(ollama) = %q, want empty", got)
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		in   string
		want Verdict
		ok   bool
	}{
		{"VERIFIED", VerdictVerified, true},
		{" false ", VerdictFalse, true},
		{"Mixed", VerdictMixed, true},
		{"unverified", VerdictUnverified, true},
		{"TRUE", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseVerdict(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseVerdict(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVerdictInBand(t *testing.T) {
	if !VerdictFalse.InBand(30) || VerdictFalse.InBand(31) {
		t.Error("FALSE band should be [0,30]")
	}
	if !VerdictVerified.InBand(70) || VerdictVerified.InBand(69) {
		t.Error("VERIFIED band should be [70,100]")
	}
	if !VerdictMixed.InBand(50) || VerdictMixed.InBand(61) {
		t.Error("MIXED band should be [40,60]")
	}
	if !VerdictUnverified.InBand(99) {
		t.Error("UNVERIFIED has no band")
	}
}

func TestClaimClone(t *testing.T) {
	c := NewClaim("text", SourceUserSubmission, StatusProcessing)
	c.AddEvidence(Evidence{Source: "a", Content: "b"})
	s := FallbackScore()
	c.Score = &s

	cp := c.Clone()
	cp.Evidence[0].Source = "changed"
	cp.Score.FinalScore = 99

	if c.Evidence[0].Source != "a" {
		t.Error("Clone shares evidence backing array")
	}
	if c.Score.FinalScore != 0 {
		t.Error("Clone shares score pointer")
	}
}
