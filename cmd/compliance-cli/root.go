package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Boakye-20/ai-compliance-tool/internal/config"
	"github.com/Boakye-20/ai-compliance-tool/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Assess AI governance documents against UK and EU frameworks",
	Long: `compliance scores an AI policy or governance PDF against the UK ICO AI guidance,
the UK DPA / GDPR, the EU AI Act and ISO/IEC 42001, and writes a Markdown report.

Configuration comes from --config (YAML) and COMPLIANCE_* environment variables,
for example COMPLIANCE_LLM__API_KEY.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(frameworksCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	// Logs go to stderr so stdout stays clean for --json output.
	slog.SetDefault(telemetry.NewLogger(os.Stderr, cfg.LogLevel))
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
