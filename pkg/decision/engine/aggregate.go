package engine

import "mercator-hq/underwriter/pkg/credit"

// Aggregate combines the profile results of one application into the
// system decision.
//
// Any decline wins; otherwise the application is approved only when every
// profile approved, and referred in all other cases, including when there
// are no profile results at all. Manual review is needed when the system
// refers, when profiles disagree between approve and decline, or when a
// recorded manual decision differs from the system decision.
func Aggregate(app *credit.Application, results []ProfileDecisionResult) ApplicationDecisionResult {
	out := ApplicationDecisionResult{
		ApplicationID:        app.ID,
		ManualDecisionSource: app.DecisionSource,
		ManualFinalDecision:  app.FinalDecision,
		ManualDeclineReasons: append([]credit.DeclineReason{}, app.ManualDeclineReasons...),
		ProfileResults:       results,
	}
	if out.ProfileResults == nil {
		out.ProfileResults = []ProfileDecisionResult{}
	}

	var (
		anyApprove, anyDecline, allApprove = false, false, len(results) > 0
		codes                              []string
	)
	for _, r := range results {
		switch r.Decision {
		case credit.DecisionApprove:
			anyApprove = true
		case credit.DecisionDecline:
			anyDecline = true
			allApprove = false
		default:
			allApprove = false
		}
		codes = append(codes, r.DeclineReasonCodes...)
	}

	switch {
	case anyDecline:
		out.FinalSystemDecision = credit.DecisionDecline
	case allApprove:
		out.FinalSystemDecision = credit.DecisionApprove
	default:
		out.FinalSystemDecision = credit.DecisionRefer
	}
	out.AggregatedDeclineReasonCodes = sortedUnique(codes)

	manualDiffers := app.FinalDecision != nil && *app.FinalDecision != out.FinalSystemDecision
	out.NeedsManualReview = out.FinalSystemDecision == credit.DecisionRefer ||
		(anyApprove && anyDecline) ||
		manualDiffers

	return out
}
