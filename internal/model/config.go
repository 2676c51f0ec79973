package model

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the full runtime configuration. Durations are in seconds.
type Config struct {
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	HTTP   HTTPConfig   `yaml:"http" mapstructure:"http"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	News   NewsConfig   `yaml:"news" mapstructure:"news"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig controls the HTTP API and background scan workers
type ServerConfig struct {
	Addr            string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins     []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ScanWorkers     int      `yaml:"scan_workers" mapstructure:"scan_workers"`
	ScanQueue       int      `yaml:"scan_queue" mapstructure:"scan_queue"`
	ReadTimeout     int      `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    int      `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout int      `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// HTTPConfig controls outbound page fetches for link evidence
type HTTPConfig struct {
	Timeout       int    `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool   `yaml:"respect_robots" mapstructure:"respect_robots"`
	InsecureTLS   bool   `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LLMConfig selects the text-generation backend
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // groq, openai, anthropic, ollama, or "" to disable
	Model       string  `yaml:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
}

// NewsConfig configures the news feed used by the scanner
type NewsConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	Query             string  `yaml:"query" mapstructure:"query"`
	Language          string  `yaml:"language" mapstructure:"language"`
	Country           string  `yaml:"country" mapstructure:"country"`
	CacheTTL          int     `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// SearchConfig configures fact-check web searches
type SearchConfig struct {
	BaseURL           string   `yaml:"base_url" mapstructure:"base_url"`
	MaxResults        int      `yaml:"max_results" mapstructure:"max_results"`
	QuerySuffixes     []string `yaml:"query_suffixes" mapstructure:"query_suffixes"`
	CacheTTL          int      `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	RequestsPerSecond float64  `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int      `yaml:"burst" mapstructure:"burst"`
}

// LogConfig controls zap output
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			CORSOrigins:     []string{"*"},
			ScanWorkers:     2,
			ScanQueue:       32,
			ReadTimeout:     30,
			WriteTimeout:    120,
			ShutdownTimeout: 15,
			MaxUploadBytes:  10 << 20,
		},
		HTTP: HTTPConfig{
			Timeout:      10,
			UserAgent:    "truthweaver/0.3 (+https://github.com/esachdev28/truth-weaver)",
			MaxBodyBytes: 5 << 20,
		},
		LLM: LLMConfig{
			Provider:    "groq",
			Model:       "llama-3.3-70b-versatile",
			Timeout:     30,
			MaxTokens:   1000,
			Temperature: 0.2,
		},
		News: NewsConfig{
			BaseURL:           "https://newsdata.io/api/1",
			Query:             "crisis OR war OR disaster OR emergency OR earthquake OR attack",
			Language:          "en",
			Country:           "us",
			CacheTTL:          300,
			RequestsPerSecond: 1,
		},
		Search: SearchConfig{
			BaseURL:           "https://html.duckduckgo.com/html/",
			MaxResults:        3,
			QuerySuffixes:     []string{"fact check", "snopes"},
			CacheTTL:          600,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Seconds converts a config value in seconds to a duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Credentials are read from the environment only and never written to config files
type Credentials struct {
	GroqAPIKey      string `env:"GROQ_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OllamaBaseURL   string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	NewsDataAPIKey  string `env:"NEWSDATA_API_KEY"`
}

// LoadCredentials reads API keys from the environment
func LoadCredentials() (Credentials, error) {
	return env.ParseAs[Credentials]()
}

// LLMKey returns the credential matching the configured provider
func (c Credentials) LLMKey(provider string) string {
	switch provider {
	case "groq":
		return c.GroqAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic", "claude":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}
