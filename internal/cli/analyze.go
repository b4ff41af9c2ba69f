package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-matcher/internal/export"
	"github.com/fmuoria/resume-matcher/internal/ingestion"
	"github.com/fmuoria/resume-matcher/internal/logger"
	"github.com/fmuoria/resume-matcher/internal/models"
)

type analyzeOptions struct {
	resumePath string
	jdPath     string
	xlsxPath   string
	asJSON     bool
}

func newAnalyzeCmd(st *state) *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a résumé against a job description",
		Long: `Analyze a plain-text résumé and, optionally, a job description.

Examples:
  resume-matcher analyze --resume jane.txt
  resume-matcher analyze --resume jane.txt --jd backend.md
  resume-matcher analyze --resume jane.txt --jd backend.md --xlsx report.xlsx
  resume-matcher analyze --resume jane.txt --jd backend.md --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), st, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Résumé text file (.txt, .text, .md)")
	cmd.Flags().StringVarP(&opts.jdPath, "jd", "j", "", "Job description text file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Also write an Excel report to this path")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the analysis as JSON")
	cmd.MarkFlagRequired("resume")

	return cmd
}

func runAnalyze(ctx context.Context, out io.Writer, st *state, opts analyzeOptions) error {
	resume, err := ingestion.LoadDocument(opts.resumePath)
	if err != nil {
		return fmt.Errorf("failed to load résumé: %w", err)
	}

	var jd string
	if opts.jdPath != "" {
		if jd, err = ingestion.LoadDocument(opts.jdPath); err != nil {
			return fmt.Errorf("failed to load job description: %w", err)
		}
	}

	analyzer, annotators, err := st.newAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer annotators.Close()

	result, err := analyzer.Analyze(ctx, resume, jd)
	if err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		written, err := export.ExportToExcel(result, opts.xlsxPath)
		if err != nil {
			return err
		}
		logger.Info().Str("path", written).Msg("excel report written")
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	renderSummary(out, result)
	return nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	labelStyle = lipgloss.NewStyle().Bold(true).Width(14)
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// renderSummary prints a human readable analysis
func renderSummary(out io.Writer, result models.AnalysisResult) {
	const missing = "Not found"

	line := func(label, value string) {
		fmt.Fprintln(out, labelStyle.Render(label)+value)
	}

	fmt.Fprintln(out, titleStyle.Render("Résumé analysis"))
	line("Name:", models.Deref(result.Fields.Name, missing))
	line("Email:", models.Deref(result.Fields.Email, missing))
	line("Phone:", models.Deref(result.Fields.Phone, missing))
	line("Education:", joinOr(result.Education, missing))
	line("Skills:", joinOr(uniqueSkills(result.Skills), missing))

	if !result.HasJobDescription {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Job match"))
	line("Score:", scoreStyle(result.ScorePercent).Render(fmt.Sprintf("%.2f%%", result.ScorePercent)))
	line("Matched:", joinOr(result.Graph.MatchedSkills(), "None"))
	line("Missing:", joinOr(missingSkills(result.Graph), "None"))
}

func scoreStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= export.StrongMatchPercent:
		return goodStyle
	case percent >= export.PartialMatchPercent:
		return warnStyle
	default:
		return badStyle
	}
}

// missingSkills lists job description skills absent from the résumé
func missingSkills(g models.KnowledgeGraph) []string {
	var skills []string
	for _, id := range g.SkillIDs() {
		if e, ok := g.Edge(models.JobDescriptionNodeID, id); ok && !e.Matched {
			skills = append(skills, id)
		}
	}
	return skills
}

func uniqueSkills(skills []string) []string {
	seen := make(map[string]bool, len(skills))
	var out []string
	for _, s := range skills {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
