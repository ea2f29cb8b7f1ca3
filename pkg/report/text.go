package report

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText renders the summary as aligned plain-text tables.
func (s *Summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Applications evaluated:\t%d\n", s.Applications)
	fmt.Fprintf(tw, "Inputs rejected:\t%d\n", s.Rejected)
	if s.Partial {
		fmt.Fprintf(tw, "Run:\tpartial (cancelled)\n")
	}
	fmt.Fprintf(tw, "Approved / Declined / Referred:\t%d / %d / %d\n", s.Approved, s.Declined, s.Referred)
	fmt.Fprintf(tw, "Needs manual review:\t%d\n", s.NeedsReview)
	fmt.Fprintf(tw, "Auto-decision rate:\t%s\n", percent(s.AutoDecisionRate))

	if s.WithManualDecision > 0 {
		fmt.Fprintf(tw, "With manual decision:\t%d\n", s.WithManualDecision)
		fmt.Fprintf(tw, "Match rate:\t%s (%d)\n", percent(s.MatchRate), s.Matched)
		fmt.Fprintf(tw, "False approvals:\t%d\n", s.FalseApprovals)
		fmt.Fprintf(tw, "False declines:\t%d\n", s.FalseDeclines)
		fmt.Fprintf(tw, "Referred with manual decision:\t%d\n", s.ReferredWithManualDecision)
	}

	if len(s.Profiles) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "PROFILE\tAPPROVE\tDECLINE\tREFER\tHARD DECLINES\tMATCH RATE")
		for _, p := range s.Profiles {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n",
				p.ProfileID, p.Approved, p.Declined, p.Referred, p.HardDeclines, percent(p.MatchRate))
		}
	}

	if len(s.Rules) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "PROFILE\tRULE\tEVALUATED\tFIRED\tFAULTS\tFIRE RATE")
		for _, r := range s.Rules {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
				r.ProfileID, r.RuleID, r.Evaluated, r.Fired, r.Faults, percent(r.FireRate))
		}
	}

	if len(s.DeclineReasons) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "DECLINE REASON\tAPPLICATIONS")
		for _, c := range s.DeclineReasons {
			fmt.Fprintf(tw, "%s\t%d\n", c.Code, c.Count)
		}
	}

	return tw.Flush()
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}
