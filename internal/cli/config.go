package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/esachdev28/truth-weaver/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Truth Weaver configuration",
	Long: `Manage Truth Weaver configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (TRUTHWEAVER_*, e.g. TRUTHWEAVER_SERVER_ADDR)
3. Config file (~/.truthweaver/config.yaml)
4. Defaults

API keys are read from the environment only: GROQ_API_KEY,
OPENAI_API_KEY, ANTHROPIC_API_KEY, OLLAMA_BASE_URL, NEWSDATA_API_KEY.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", used)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(appConfig)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		fmt.Fprintln(out, string(yamlData))

		creds, err := model.LoadCredentials()
		if err != nil {
			return fmt.Errorf("load credentials: %w", err)
		}
		fmt.Fprintln(out, "# Credentials (environment)")
		for _, c := range []struct{ name, value string }{
			{"GROQ_API_KEY", creds.GroqAPIKey},
			{"OPENAI_API_KEY", creds.OpenAIAPIKey},
			{"ANTHROPIC_API_KEY", creds.AnthropicAPIKey},
			{"NEWSDATA_API_KEY", creds.NewsDataAPIKey},
		} {
			fmt.Fprintf(out, "#   %-18s %s\n", c.name, maskSecret(c.value))
		}
		fmt.Fprintf(out, "#   %-18s %s\n", "OLLAMA_BASE_URL", creds.OllamaBaseURL)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create a default configuration file at ~/.truthweaver/config.yaml.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		dir, err := configDir()
		if err != nil {
			return err
		}
		configPath := filepath.Join(dir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'truthweaver config show' to view it, or delete it first to recreate", configPath)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("create config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		if err := writeDefaultConfig(f); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func writeDefaultConfig(w io.Writer) error {
	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	header := `# Truth Weaver configuration
#
# Configuration hierarchy (highest to lowest priority):
#   1. CLI flags
#   2. Environment variables (TRUTHWEAVER_*)
#   3. This config file
#   4. Built-in defaults
#
# Durations are in seconds.

`
	footer := `
# API keys are never read from this file. Export them instead:
#   export GROQ_API_KEY=gsk_...
#   export NEWSDATA_API_KEY=pub_...
#   export OPENAI_API_KEY=sk-...          (llm.provider: openai)
#   export ANTHROPIC_API_KEY=sk-ant-...   (llm.provider: anthropic)
#   export OLLAMA_BASE_URL=http://localhost:11434
`
	for _, chunk := range [][]byte{[]byte(header), yamlData, []byte(footer)} {
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	}
	return nil
}

func maskSecret(s string) string {
	switch {
	case s == "":
		return "(not set)"
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-2:]
	}
}
