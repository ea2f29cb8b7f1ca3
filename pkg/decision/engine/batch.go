package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/rulexpr/parser"
	"mercator-hq/underwriter/pkg/telemetry/logging"
)

// Decide evaluates every application against every profile.
//
// Structurally invalid profiles and applications are reported in
// BatchResult.Rejected and skipped, or fail the whole call with a
// *BatchValidationError when RejectMode is RejectFail. Rule faults never
// fail the call.
//
// When ctx is cancelled no further applications are started. The
// applications already completed are returned in input order with Partial
// set, together with the context error.
func (e *Engine) Decide(ctx context.Context, apps []*credit.Application, profiles []*credit.DecisionProfile) (*BatchResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	ctx, span := e.tracer.Start(ctx, "engine.Decide", trace.WithAttributes(
		attribute.String("underwriter.run_id", runID),
		attribute.Int("underwriter.applications", len(apps)),
		attribute.Int("underwriter.profiles", len(profiles)),
	))
	defer span.End()

	acceptedProfiles, profileErrs := admitProfiles(profiles)
	acceptedApps, appErrs := admitApplications(apps, e.config.MaxBatchSize)
	structural := append(profileErrs, appErrs...)

	result := &BatchResult{
		Results:  []ApplicationDecisionResult{},
		Rejected: make([]Rejection, 0, len(structural)),
	}
	for _, serr := range structural {
		e.recorder.RecordRejection(serr.Kind)
		e.logger.WarnContext(ctx, "input rejected",
			"kind", serr.Kind,
			"index", serr.Index,
			"id", serr.ID,
			"problems", serr.Problems,
		)
		result.Rejected = append(result.Rejected, Rejection{
			Kind:   serr.Kind,
			Index:  serr.Index,
			ID:     serr.ID,
			Reason: strings.Join(serr.Problems, "; "),
		})
	}

	if e.config.RejectMode == RejectFail && len(structural) > 0 {
		err := &BatchValidationError{Errors: structural}
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch validation failed")
		return nil, err
	}

	e.logger.InfoContext(ctx, "batch started",
		"applications", len(acceptedApps),
		"profiles", len(acceptedProfiles),
		"rejected", len(result.Rejected),
		"workers", e.config.effectiveWorkers(),
	)

	p := e.config.newParser()
	r := &batchRun{
		engine:   e,
		parser:   p,
		profiles: acceptedProfiles,
		table:    compileProfiles(ctx, p, acceptedProfiles, e.logger),
		total:    len(acceptedApps),
	}
	results, err := r.run(ctx, acceptedApps)
	result.Results = results

	duration := time.Since(start)
	result.Summary = RunSummary{
		RunID:        runID,
		StartedAt:    start,
		Duration:     duration,
		Applications: len(acceptedApps),
		Profiles:     len(acceptedProfiles),
		Completed:    len(results),
	}
	e.recorder.RecordBatch(duration)

	if err != nil {
		result.Partial = true
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch cancelled")
		e.logger.WarnContext(ctx, "batch cancelled",
			"completed", len(results),
			"applications", len(acceptedApps),
			"error", err,
		)
		return result, err
	}

	e.logger.InfoContext(ctx, "batch finished",
		"completed", len(results),
		"duration", duration,
	)
	return result, nil
}

// batchRun is the state of one Decide call.
type batchRun struct {
	engine   *Engine
	parser   *parser.Parser
	profiles []*credit.DecisionProfile
	table    conditionTable
	total    int

	mu   sync.Mutex
	done int
}

// run evaluates applications on a bounded pool. Every worker writes only
// its own result slot.
func (r *batchRun) run(ctx context.Context, apps []*credit.Application) ([]ApplicationDecisionResult, error) {
	slots := make([]ApplicationDecisionResult, len(apps))
	completed := make([]bool, len(apps))

	var g errgroup.Group
	g.SetLimit(r.engine.config.effectiveWorkers())

	for i, app := range apps {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			slots[i] = r.evaluateApplication(ctx, app)
			completed[i] = true
			r.reportProgress()
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	results := make([]ApplicationDecisionResult, 0, len(apps))
	for i, ok := range completed {
		if ok {
			results = append(results, slots[i])
		}
	}
	if len(results) < len(apps) {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		return results, errors.New("batch stopped before completion")
	}
	return results, nil
}

func (r *batchRun) evaluateApplication(ctx context.Context, app *credit.Application) ApplicationDecisionResult {
	ctx = logging.WithApplicationID(ctx, app.ID)
	ctx, span := r.engine.tracer.Start(ctx, "engine.evaluateApplication", trace.WithAttributes(
		attribute.String("underwriter.application_id", app.ID),
	))
	defer span.End()

	results := make([]ProfileDecisionResult, len(r.profiles))
	if r.engine.config.ProfileParallelism && len(r.profiles) > 1 {
		var g errgroup.Group
		for j, profile := range r.profiles {
			g.Go(func() error {
				results[j] = r.scoreProfile(ctx, profile, app)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for j, profile := range r.profiles {
			results[j] = r.scoreProfile(ctx, profile, app)
		}
	}

	out := Aggregate(app, results)
	r.engine.recorder.RecordApplication(out.FinalSystemDecision, out.NeedsManualReview)
	span.SetAttributes(
		attribute.String("underwriter.decision", out.FinalSystemDecision.String()),
		attribute.Bool("underwriter.needs_manual_review", out.NeedsManualReview),
	)
	return out
}

func (r *batchRun) scoreProfile(ctx context.Context, profile *credit.DecisionProfile, app *credit.Application) ProfileDecisionResult {
	result, faults := scoreProfile(profile, func(rule *credit.RuleCandidate) *compiledCondition {
		return r.table.lookup(r.parser, rule)
	}, app)

	rec := r.engine.recorder
	for i := range result.RuleEvaluations {
		rec.RecordRuleEvaluation(result.RuleEvaluations[i].Outcome())
	}
	rec.RecordProfileDecision(result.ProfileID, result.Decision, result.HardDeclineTriggered)

	if len(faults) > 0 {
		ctx = logging.WithProfileID(ctx, result.ProfileID)
		for _, fault := range faults {
			r.engine.logger.DebugContext(ctx, "rule evaluation fault", "error", fault)
		}
	}
	return result
}

func (r *batchRun) reportProgress() {
	if r.engine.progress == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	r.engine.progress(r.done, r.total)
}

// admitProfiles splits profiles into accepted ones and structural errors.
func admitProfiles(profiles []*credit.DecisionProfile) ([]*credit.DecisionProfile, []*StructuralError) {
	accepted := make([]*credit.DecisionProfile, 0, len(profiles))
	var errs []*StructuralError
	seen := make(map[string]int, len(profiles))

	for i, profile := range profiles {
		if profile == nil {
			errs = append(errs, &StructuralError{Kind: credit.EntityProfile, Index: i, Problems: []string{"profile is nil"}})
			continue
		}

		var problems []string
		var cause error
		if err := profile.Validate(); err != nil {
			cause = err
			var verr *credit.ValidationError
			if errors.As(err, &verr) {
				problems = append(problems, verr.Problems...)
			} else {
				problems = append(problems, err.Error())
			}
		}

		key := profile.Key()
		if key != "" {
			if first, dup := seen[key]; dup {
				problems = append(problems, fmt.Sprintf("duplicate profile id %q (first at index %d)", key, first))
			} else {
				seen[key] = i
			}
		}

		if len(problems) > 0 {
			errs = append(errs, &StructuralError{Kind: credit.EntityProfile, Index: i, ID: key, Problems: problems, Cause: cause})
			continue
		}
		accepted = append(accepted, profile)
	}
	return accepted, errs
}

// admitApplications splits applications into accepted ones and structural
// errors. Applications at or past maxBatch (when positive) are rejected.
func admitApplications(apps []*credit.Application, maxBatch int) ([]*credit.Application, []*StructuralError) {
	accepted := make([]*credit.Application, 0, len(apps))
	var errs []*StructuralError
	seen := make(map[string]int, len(apps))

	for i, app := range apps {
		if app == nil {
			errs = append(errs, &StructuralError{Kind: credit.EntityApplication, Index: i, Problems: []string{"application is nil"}})
			continue
		}

		if maxBatch > 0 && i >= maxBatch {
			errs = append(errs, &StructuralError{
				Kind:     credit.EntityApplication,
				Index:    i,
				ID:       app.ID,
				Problems: []string{fmt.Sprintf("%s (max %d)", ErrBatchLimit, maxBatch)},
				Cause:    ErrBatchLimit,
			})
			continue
		}

		var problems []string
		var cause error
		if err := app.Validate(); err != nil {
			cause = err
			var verr *credit.ValidationError
			if errors.As(err, &verr) {
				problems = append(problems, verr.Problems...)
			} else {
				problems = append(problems, err.Error())
			}
		}

		if app.ID != "" {
			if first, dup := seen[app.ID]; dup {
				problems = append(problems, fmt.Sprintf("duplicate application_id %q (first at index %d)", app.ID, first))
			} else {
				seen[app.ID] = i
			}
		}

		if len(problems) > 0 {
			errs = append(errs, &StructuralError{Kind: credit.EntityApplication, Index: i, ID: app.ID, Problems: problems, Cause: cause})
			continue
		}
		accepted = append(accepted, app)
	}
	return accepted, errs
}
