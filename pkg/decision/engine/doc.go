// Package engine evaluates loan applications against decision profiles and
// produces reproducible approve, decline or refer outcomes.
//
// # Architecture
//
// The engine is layered bottom-up:
//
//  1. Matcher - evaluates a parsed rule condition against application attributes
//  2. Rule Evaluation - turns a condition outcome into a scored RuleEvaluation
//  3. Profile Scoring - sums fired rules, applies hard declines and the approval threshold
//  4. Aggregation - combines profile results into the system decision and the review flag
//  5. Batch Runner - admits inputs, compiles conditions once and evaluates on a bounded pool
//
// # Evaluation Flow
//
//	[]Application, []DecisionProfile
//	       ↓
//	Admission (structural validation, duplicates, batch cap)
//	       ↓
//	Compile active rule conditions into a shared read-only table
//	       ↓
//	For each application (worker pool):
//	  For each profile:
//	    For each active rule:
//	      Match condition → fired / not fired / fault
//	    Hard decline? → decline
//	    total_score >= threshold? → approve, else refer
//	  Aggregate profile results
//	       ↓
//	BatchResult (results in input order, rejections)
//
// # Basic Usage
//
//	eng, err := engine.New(engine.DefaultEngineConfig().WithWorkers(8),
//	    engine.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := eng.Decide(ctx, applications, profiles)
//	if err != nil {
//	    return err
//	}
//	for _, r := range result.Results {
//	    fmt.Println(r.ApplicationID, r.FinalSystemDecision, r.NeedsManualReview)
//	}
//
// # Faults
//
// A rule whose condition cannot be evaluated (unknown attribute, null or
// malformed value, type mismatch, parse error) does not fire and contributes
// nothing; the fault is recorded on its RuleEvaluation. A fault therefore
// can never cause an approval. Structurally invalid profiles and
// applications are rejected before evaluation and listed in
// BatchResult.Rejected.
//
// # Determinism
//
// Evaluation reads immutable inputs only and every worker writes its own
// result slot, so results are identical for any worker count. Run-level
// data such as the run ID and duration is kept in BatchResult.Summary,
// which is not encoded.
package engine
