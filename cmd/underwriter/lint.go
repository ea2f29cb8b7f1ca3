package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/decision/source"
	"mercator-hq/underwriter/pkg/rulexpr"
)

var lintFlags struct {
	profiles string
	format   string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate decision profiles",
	Long: `Validate decision profile files without deciding any application.

The lint command loads profiles and checks:
  - File syntax (JSON, JSON Lines, YAML)
  - Profile structure (name, threshold, rule ids, weights)
  - Rule expressions and structured conditions, inactive rules included
  - Attribute names, operators and literal types

Examples:
  # Lint a directory of profiles
  underwriter lint --profiles profiles/

  # Lint a single profile
  underwriter lint --profiles profiles/conservative.yaml

  # JSON output for CI/CD
  underwriter lint --profiles profiles/ --format json`,
	RunE: lintProfiles,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.profiles, "profiles", "p", "", "profile file or directory")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the lint outcome of one profile, or of one entity that
// could not be decoded.
type LintResult struct {
	Profile  string        `json:"profile"`
	Source   string        `json:"source,omitempty"`
	Valid    bool          `json:"valid"`
	Problems []string      `json:"problems,omitempty"`
	Findings []LintFinding `json:"findings,omitempty"`
}

// LintFinding is a problem in one rule condition.
type LintFinding struct {
	RuleID     string `json:"rule_id"`
	Expression string `json:"expression,omitempty"`
	Message    string `json:"message"`
	Detail     string `json:"-"`
}

func lintProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := lintFlags.profiles
	if path == "" {
		path = cfg.Input.Profiles
	}
	if path == "" {
		return cli.NewConfigError("profiles", "--profiles or input.profiles is required")
	}
	if lintFlags.format != "text" && lintFlags.format != "json" {
		return cli.NewConfigError("format", fmt.Sprintf("unsupported format %q (want text or json)", lintFlags.format))
	}

	logger, err := newLogger(cfg, stderr(cmd))
	if err != nil {
		return err
	}

	set, err := source.NewFileSource(path, logger).LoadProfiles(context.Background())
	if err != nil {
		return cli.NewCommandError("lint", fmt.Errorf("failed to load profiles: %w", err))
	}

	results := make([]LintResult, 0, len(set.Rejected)+len(set.Profiles))
	for _, r := range set.Rejected {
		name := r.ID
		switch {
		case name != "":
		case r.Index < 0:
			name = "<unreadable>"
		default:
			name = fmt.Sprintf("<entity %d>", r.Index)
		}
		results = append(results, LintResult{
			Profile:  name,
			Source:   r.Source,
			Problems: []string{r.Reason},
		})
	}
	for _, p := range set.Profiles {
		results = append(results, lintProfile(p))
	}

	if lintFlags.format == "json" {
		return outputLintJSON(stdout(cmd), results)
	}
	return outputLintText(stdout(cmd), results)
}

// lintProfile collects the structural problems and condition findings of
// one profile.
func lintProfile(p *credit.DecisionProfile) LintResult {
	result := LintResult{Profile: p.Key()}

	if err := p.Validate(); err != nil {
		var verr *credit.ValidationError
		if errors.As(err, &verr) {
			result.Problems = verr.Problems
		} else {
			result.Problems = []string{err.Error()}
		}
	}

	for _, f := range rulexpr.LintProfile(p) {
		result.Findings = append(result.Findings, LintFinding{
			RuleID:     f.RuleID,
			Expression: f.Source,
			Message:    f.Err.Error(),
			Detail:     f.Err.Detailed(),
		})
	}

	result.Valid = len(result.Problems) == 0 && len(result.Findings) == 0
	return result
}

func outputLintText(w io.Writer, results []LintResult) error {
	var invalid int

	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(w, "✓ %s\n", r.Profile)
			continue
		}
		invalid++

		label := r.Profile
		if r.Source != "" {
			label += " (" + r.Source + ")"
		}
		fmt.Fprintf(w, "✗ %s\n", label)
		for _, problem := range r.Problems {
			fmt.Fprintf(w, "  - %s\n", problem)
		}
		for _, f := range r.Findings {
			fmt.Fprintf(w, "  rule %s:\n", f.RuleID)
			for _, line := range strings.Split(strings.TrimRight(f.Detail, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	fmt.Fprintf(w, "\nSummary: %d profiles, %d valid, %d invalid\n", len(results), len(results)-invalid, invalid)

	if invalid > 0 {
		return &cli.CommandError{
			Command: "lint",
			Code:    cli.ExitRejected,
			Err:     fmt.Errorf("%d invalid profiles", invalid),
		}
	}
	return nil
}

func outputLintJSON(w io.Writer, results []LintResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	for _, r := range results {
		if !r.Valid {
			return &cli.CommandError{
				Command: "lint",
				Code:    cli.ExitRejected,
				Err:     fmt.Errorf("validation failed"),
			}
		}
	}
	return nil
}
