package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/decision/engine"
	"mercator-hq/underwriter/pkg/report"
)

// OutputFormat represents the output format for decision results.
type OutputFormat string

const (
	// FormatText is an aligned plain text table (default).
	FormatText OutputFormat = "text"
	// FormatJSON is the full batch result as indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatCSV is one row per application and profile.
	FormatCSV OutputFormat = "csv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", NewConfigError("format", fmt.Sprintf("unsupported output format %q, must be one of: text, json, csv", s))
	}
}

// Formatter writes decision results. The summary is nil unless requested.
type Formatter interface {
	FormatTo(w io.Writer, result *engine.BatchResult, summary *report.Summary) error
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}

// TextFormatter formats results as aligned text tables.
type TextFormatter struct{}

// FormatTo writes one line per application, then rejections and the summary.
func (f *TextFormatter) FormatTo(w io.Writer, result *engine.BatchResult, summary *report.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "APPLICATION\tDECISION\tREVIEW\tMANUAL\tPROFILES\tDECLINE CODES")
	for i := range result.Results {
		r := &result.Results[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ApplicationID,
			r.FinalSystemDecision,
			yesNo(r.NeedsManualReview),
			orDash(manualDecision(r.ManualFinalDecision)),
			profileSummary(r.ProfileResults),
			orDash(strings.Join(r.AggregatedDeclineReasonCodes, ",")),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.Partial {
		fmt.Fprintf(w, "\nrun cancelled: %d results are partial\n", len(result.Results))
	}

	if len(result.Rejected) > 0 {
		fmt.Fprintf(w, "\nRejected (%d):\n", len(result.Rejected))
		for _, rej := range result.Rejected {
			fmt.Fprintf(w, "  %s\n", describeRejection(rej))
		}
	}

	if summary != nil {
		fmt.Fprintln(w)
		return summary.WriteText(w)
	}
	return nil
}

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	Indent bool
}

type jsonOutput struct {
	*engine.BatchResult
	Summary *report.Summary `json:"summary,omitempty"`
}

// FormatTo writes the batch result, with the summary under "summary".
func (f *JSONFormatter) FormatTo(w io.Writer, result *engine.BatchResult, summary *report.Summary) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(jsonOutput{BatchResult: result, Summary: summary})
}

// CSVFormatter formats results as CSV. Rejections and the summary are not
// part of the CSV stream.
type CSVFormatter struct{}

// CSVHeaders are the columns written by CSVFormatter.
var CSVHeaders = []string{
	"application_id",
	"final_system_decision",
	"needs_manual_review",
	"manual_final_decision",
	"aggregated_decline_reason_codes",
	"profile_id",
	"profile_decision",
	"total_score",
	"hard_decline_triggered",
	"profile_decline_reason_codes",
}

// FormatTo writes one row per application and profile. An application
// without profile results gets a single row with empty profile columns.
func (f *CSVFormatter) FormatTo(w io.Writer, result *engine.BatchResult, _ *report.Summary) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(CSVHeaders); err != nil {
		return err
	}

	for i := range result.Results {
		r := &result.Results[i]
		app := []string{
			r.ApplicationID,
			r.FinalSystemDecision.String(),
			strconv.FormatBool(r.NeedsManualReview),
			manualDecision(r.ManualFinalDecision),
			strings.Join(r.AggregatedDeclineReasonCodes, ";"),
		}

		if len(r.ProfileResults) == 0 {
			if err := csvWriter.Write(append(app, "", "", "", "", "")); err != nil {
				return err
			}
			continue
		}

		for _, pr := range r.ProfileResults {
			row := append(append([]string{}, app...),
				pr.ProfileID,
				pr.Decision.String(),
				strconv.FormatFloat(pr.TotalScore, 'g', -1, 64),
				strconv.FormatBool(pr.HardDeclineTriggered),
				strings.Join(pr.DeclineReasonCodes, ";"),
			)
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func profileSummary(results []engine.ProfileDecisionResult) string {
	if len(results) == 0 {
		return "-"
	}
	parts := make([]string, len(results))
	for i, pr := range results {
		parts[i] = fmt.Sprintf("%s=%s(%s)", pr.ProfileID, pr.Decision, strconv.FormatFloat(pr.TotalScore, 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}

func describeRejection(r engine.Rejection) string {
	var sb strings.Builder
	sb.WriteString(r.Kind)
	if r.ID != "" {
		sb.WriteString(" " + strconv.Quote(r.ID))
	}
	if r.Source != "" {
		sb.WriteString(" in " + r.Source)
	}
	if r.Index >= 0 {
		sb.WriteString(fmt.Sprintf(" at index %d", r.Index))
	}
	sb.WriteString(": " + r.Reason)
	return sb.String()
}

func manualDecision(d *credit.Decision) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
