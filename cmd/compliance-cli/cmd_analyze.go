package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Boakye-20/ai-compliance-tool/internal/app"
	"github.com/Boakye-20/ai-compliance-tool/internal/models"
)

var analyzeFlags struct {
	frameworks []string
	outPath    string
	asJSON     bool
	quiet      bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <document.pdf>",
	Short: "Score a PDF against the selected frameworks",
	Long: `Analyze extracts a profile of the document, evaluates it against each selected
framework and prints the UK Alignment Score.

Usage:
  compliance analyze policy.pdf                          # all frameworks
  compliance analyze policy.pdf -f ICO -f DPA            # a subset
  compliance analyze policy.pdf -o report.md --json      # save the report, print JSON`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringSliceVarP(&analyzeFlags.frameworks, "framework", "f", nil, "Framework code to assess (ICO, DPA, EU_AI_ACT, ISO_42001); repeatable, default from config")
	f.StringVarP(&analyzeFlags.outPath, "out", "o", "", "Write the Markdown report to this path")
	f.BoolVar(&analyzeFlags.asJSON, "json", false, "Print the full analysis as JSON instead of a summary")
	f.BoolVarP(&analyzeFlags.quiet, "quiet", "q", false, "Do not print status messages")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	frameworks := cfg.DefaultFrameworks()
	if len(analyzeFlags.frameworks) > 0 {
		if frameworks, err = models.ParseFrameworks(analyzeFlags.frameworks); err != nil {
			return err
		}
	}

	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	stderr := cmd.ErrOrStderr()
	onStatus := func(msg string) {
		if !analyzeFlags.quiet {
			fmt.Fprintln(stderr, msg)
		}
	}

	job, err := a.Analyzer.Analyze(ctx, filepath.Base(args[0]), doc, frameworks, onStatus)
	if err != nil {
		return err
	}

	if analyzeFlags.outPath != "" {
		if len(job.ReportBytes) == 0 {
			return fmt.Errorf("no report was generated for job %s", job.ID)
		}
		if err := os.WriteFile(analyzeFlags.outPath, job.ReportBytes, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(stderr, "Report written to %s\n", analyzeFlags.outPath)
	}

	out := cmd.OutOrStdout()
	if analyzeFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(job.Run)
	}
	printSummary(out, job.Run)
	return nil
}

func printSummary(w io.Writer, run *models.PipelineRun) {
	s := run.Synthesis
	fmt.Fprintf(w, "UK Alignment Score: %d%%\n", s.CompositeScore)
	fmt.Fprintf(w, "%s\n\n", s.SummaryText)

	for _, res := range run.Results() {
		score := fmt.Sprintf("%3d%%", res.Score)
		if !res.Assessed {
			score += " (not assessed)"
		}
		fmt.Fprintf(w, "  %-16s %s  critical gaps: %d\n", res.Framework.Label(), score, res.CriticalGapCount)
	}

	if len(s.CrossFrameworkGaps) > 0 {
		fmt.Fprintln(w, "\nCross-framework gaps:")
		for _, g := range s.CrossFrameworkGaps {
			fmt.Fprintf(w, "  - %s (%s)\n", g.IssueName, strings.Join(g.ImpactedFrameworks, ", "))
		}
	}
	if len(s.PriorityActions) > 0 {
		fmt.Fprintln(w, "\nPriority actions:")
		for i, action := range s.PriorityActions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, action)
		}
	}
}
