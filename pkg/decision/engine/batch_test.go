package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/telemetry/logging"
)

// countingRecorder is a Recorder that counts calls.
type countingRecorder struct {
	mu           sync.Mutex
	applications map[credit.Decision]int
	profiles     int
	hardDeclines int
	rules        map[RuleOutcome]int
	rejections   map[string]int
	batches      int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		applications: make(map[credit.Decision]int),
		rules:        make(map[RuleOutcome]int),
		rejections:   make(map[string]int),
	}
}

func (r *countingRecorder) RecordApplication(d credit.Decision, _ bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applications[d]++
}

func (r *countingRecorder) RecordProfileDecision(_ string, _ credit.Decision, hard bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles++
	if hard {
		r.hardDeclines++
	}
}

func (r *countingRecorder) RecordRuleEvaluation(outcome RuleOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[outcome]++
}

func (r *countingRecorder) RecordRejection(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections[kind]++
}

func (r *countingRecorder) RecordBatch(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches++
}

func newTestEngine(t *testing.T, config *EngineConfig, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	eng, err := New(config, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return eng
}

// testPortfolio builds n applications with varied risk.
func testPortfolio(n int) []*credit.Application {
	apps := make([]*credit.Application, n)
	for i := range apps {
		attrs := withAttrs(map[string]any{
			"credit_score":          560 + (i*37)%300,
			"dti_ratio":             float64((i*13)%60) / 100,
			"num_90d_late_last_24m": i % 5 / 4,
		})
		if i%7 == 0 {
			attrs["revolving_utilization_pct"] = nil
		}
		apps[i] = newTestApp(fmt.Sprintf("APP-%04d", i), attrs)
		if i%3 == 0 {
			apps[i].FinalDecision = decisionPtr(credit.DecisionApprove)
		}
	}
	return apps
}

func testProfiles() []*credit.DecisionProfile {
	return []*credit.DecisionProfile{
		newProfile("conservative", 60,
			newRule("prime", "credit_score >= 760 and dti_ratio <= 0.35", 50),
			newRule("low_util", "revolving_utilization_pct < 30", 15),
			hardDeclineRule("late", "num_90d_late_last_24m >= 1", "DELINQ_90"),
		),
		newProfile("growth", 40,
			newRule("near_prime", "credit_score >= 680", 30),
			newRule("dti", "dti_ratio < 0.45", 20),
			hardDeclineRule("deep_sub", "credit_score < 580", "SCORE_LOW"),
		),
		newProfile("empty", 0),
	}
}

func TestEngine_New(t *testing.T) {
	if _, err := New(nil); err != nil {
		t.Errorf("New(nil) error = %v", err)
	}

	_, err := New(DefaultEngineConfig().WithRejectMode("explode"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}

	_, err = New(DefaultEngineConfig().WithWorkers(-1))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New() error = %v, want ErrInvalidConfig", err)
	}
}

func TestEngine_DecideScenarios(t *testing.T) {
	eng := newTestEngine(t, nil)

	prime := newRule("prime", "credit_score >= 800 and dti_ratio <= 0.35", 50)
	late := hardDeclineRule("late", "num_90d_late_last_24m >= 1", "DELINQ_90")

	apps := []*credit.Application{
		newTestApp("clean", primeAttrs()),
		newTestApp("late", withAttrs(map[string]any{"num_90d_late_last_24m": 1})),
	}
	profiles := []*credit.DecisionProfile{newProfile("P1", 50, prime, late)}

	result, err := eng.Decide(context.Background(), apps, profiles)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(result.Results))
	}

	clean := result.Results[0]
	if clean.ApplicationID != "clean" || clean.FinalSystemDecision != credit.DecisionApprove {
		t.Errorf("clean = %s %v, want approve", clean.ApplicationID, clean.FinalSystemDecision)
	}
	if clean.ProfileResults[0].TotalScore != 50 {
		t.Errorf("clean TotalScore = %v, want 50", clean.ProfileResults[0].TotalScore)
	}
	if clean.NeedsManualReview {
		t.Error("clean NeedsManualReview = true, want false")
	}

	declined := result.Results[1]
	if declined.FinalSystemDecision != credit.DecisionDecline || !declined.ProfileResults[0].HardDeclineTriggered {
		t.Errorf("late = %v hard=%v, want hard decline", declined.FinalSystemDecision, declined.ProfileResults[0].HardDeclineTriggered)
	}
	if len(declined.AggregatedDeclineReasonCodes) != 1 || declined.AggregatedDeclineReasonCodes[0] != "DELINQ_90" {
		t.Errorf("late codes = %v, want [DELINQ_90]", declined.AggregatedDeclineReasonCodes)
	}

	if result.Partial || len(result.Rejected) != 0 {
		t.Errorf("Partial = %v, Rejected = %v", result.Partial, result.Rejected)
	}
	if result.Summary.RunID == "" || result.Summary.Completed != 2 {
		t.Errorf("Summary = %+v", result.Summary)
	}
}

func TestEngine_DeterministicAcrossWorkers(t *testing.T) {
	apps := testPortfolio(200)
	profiles := testProfiles()

	encode := func(config *EngineConfig) []byte {
		t.Helper()
		result, err := newTestEngine(t, config).Decide(context.Background(), apps, profiles)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("json.Marshal() error = %v", err)
		}
		return data
	}

	serial := encode(DefaultEngineConfig().WithWorkers(1))
	configs := map[string]*EngineConfig{
		"8 workers":           DefaultEngineConfig().WithWorkers(8),
		"gomaxprocs":          DefaultEngineConfig(),
		"profile parallelism": DefaultEngineConfig().WithWorkers(4).WithProfileParallelism(true),
		"serial again":        DefaultEngineConfig().WithWorkers(1),
	}
	for name, config := range configs {
		if got := encode(config); !bytes.Equal(got, serial) {
			t.Errorf("%s: results differ from serial run", name)
		}
	}
}

func TestEngine_ResultOrder(t *testing.T) {
	apps := testPortfolio(50)
	result, err := newTestEngine(t, DefaultEngineConfig().WithWorkers(16)).Decide(context.Background(), apps, testProfiles())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	for i, r := range result.Results {
		if r.ApplicationID != apps[i].ID {
			t.Fatalf("Results[%d] = %s, want %s", i, r.ApplicationID, apps[i].ID)
		}
		if len(r.ProfileResults) != 3 || r.ProfileResults[2].ProfileID != "empty" {
			t.Fatalf("Results[%d] profile order wrong: %+v", i, r.ProfileResults)
		}
		if r.ProfileResults[2].Decision != credit.DecisionRefer {
			t.Errorf("empty profile decision = %v, want refer", r.ProfileResults[2].Decision)
		}
	}
}

func TestEngine_ContextCancellation(t *testing.T) {
	t.Run("cancelled mid batch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		eng := newTestEngine(t, DefaultEngineConfig().WithWorkers(1), WithProgress(func(done, total int) {
			if done == 3 {
				cancel()
			}
		}))

		apps := testPortfolio(10)
		result, err := eng.Decide(ctx, apps, testProfiles())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Decide() error = %v, want context.Canceled", err)
		}
		if result == nil || !result.Partial {
			t.Fatalf("Decide() result = %+v, want partial", result)
		}
		if len(result.Results) != 3 {
			t.Fatalf("len(Results) = %d, want 3", len(result.Results))
		}
		for i, r := range result.Results {
			if r.ApplicationID != apps[i].ID {
				t.Errorf("Results[%d] = %s, want %s", i, r.ApplicationID, apps[i].ID)
			}
		}
	})

	t.Run("cancelled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := newTestEngine(t, nil).Decide(ctx, testPortfolio(5), testProfiles())
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Decide() error = %v, want context.Canceled", err)
		}
		if !result.Partial || len(result.Results) != 0 {
			t.Errorf("Decide() = %d results partial=%v, want 0 partial", len(result.Results), result.Partial)
		}
	})
}

func TestEngine_RejectModes(t *testing.T) {
	apps := []*credit.Application{
		newTestApp("ok", primeAttrs()),
		newTestApp("", primeAttrs()),
		newTestApp("no-score", map[string]any{"dti_ratio": 0.2}),
		newTestApp("ok", primeAttrs()),
		newTestApp("bad-score", withAttrs(map[string]any{"credit_score": "excellent"})),
		nil,
	}
	profiles := []*credit.DecisionProfile{
		newProfile("P1", 10, newRule("r", "credit_score > 0", 10)),
		{ID: "nameless", ApprovalThreshold: 1},
		newProfile("P1", 10),
	}

	t.Run("skip", func(t *testing.T) {
		rec := newCountingRecorder()
		result, err := newTestEngine(t, nil, WithRecorder(rec)).Decide(context.Background(), apps, profiles)
		if err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if len(result.Results) != 1 || result.Results[0].ApplicationID != "ok" {
			t.Fatalf("Results = %+v, want only the first ok application", result.Results)
		}
		if len(result.Results[0].ProfileResults) != 1 {
			t.Errorf("ProfileResults = %d, want 1 accepted profile", len(result.Results[0].ProfileResults))
		}

		wantRejected := []struct {
			kind  string
			index int
		}{
			{credit.EntityProfile, 1},
			{credit.EntityProfile, 2},
			{credit.EntityApplication, 1},
			{credit.EntityApplication, 2},
			{credit.EntityApplication, 3},
			{credit.EntityApplication, 4},
			{credit.EntityApplication, 5},
		}
		if len(result.Rejected) != len(wantRejected) {
			t.Fatalf("Rejected = %+v, want %d entries", result.Rejected, len(wantRejected))
		}
		for i, want := range wantRejected {
			got := result.Rejected[i]
			if got.Kind != want.kind || got.Index != want.index || got.Reason == "" {
				t.Errorf("Rejected[%d] = %+v, want %s at %d", i, got, want.kind, want.index)
			}
		}

		if rec.rejections[credit.EntityProfile] != 2 || rec.rejections[credit.EntityApplication] != 5 {
			t.Errorf("recorded rejections = %v", rec.rejections)
		}
	})

	t.Run("fail", func(t *testing.T) {
		result, err := newTestEngine(t, DefaultEngineConfig().WithRejectMode(RejectFail)).Decide(context.Background(), apps, profiles)
		if result != nil {
			t.Errorf("Decide() result = %+v, want nil", result)
		}

		var batchErr *BatchValidationError
		if !errors.As(err, &batchErr) {
			t.Fatalf("Decide() error = %T, want *BatchValidationError", err)
		}
		if len(batchErr.Errors) != 7 {
			t.Errorf("len(Errors) = %d, want 7", len(batchErr.Errors))
		}

		var structural *StructuralError
		if !errors.As(err, &structural) || structural.Kind != credit.EntityProfile {
			t.Errorf("errors.As(StructuralError) = %+v", structural)
		}
	})

	t.Run("fail with valid input", func(t *testing.T) {
		eng := newTestEngine(t, DefaultEngineConfig().WithRejectMode(RejectFail))
		result, err := eng.Decide(context.Background(), apps[:1], profiles[:1])
		if err != nil || len(result.Results) != 1 {
			t.Errorf("Decide() = %v, %v", result, err)
		}
	})
}

func TestEngine_BatchLimit(t *testing.T) {
	apps := testPortfolio(5)

	result, err := newTestEngine(t, DefaultEngineConfig().WithMaxBatchSize(3)).Decide(context.Background(), apps, testProfiles())
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if len(result.Results) != 3 || len(result.Rejected) != 2 {
		t.Errorf("Results = %d, Rejected = %d, want 3 and 2", len(result.Results), len(result.Rejected))
	}
	if result.Rejected[0].Index != 3 || result.Rejected[0].ID != apps[3].ID {
		t.Errorf("Rejected[0] = %+v", result.Rejected[0])
	}

	_, err = newTestEngine(t, DefaultEngineConfig().WithMaxBatchSize(3).WithRejectMode(RejectFail)).
		Decide(context.Background(), apps, testProfiles())
	if !errors.Is(err, ErrBatchLimit) {
		t.Errorf("Decide() error = %v, want ErrBatchLimit", err)
	}
}

func TestEngine_Recorder(t *testing.T) {
	rec := newCountingRecorder()
	eng := newTestEngine(t, DefaultEngineConfig().WithWorkers(4), WithRecorder(rec))

	apps := testPortfolio(20)
	profiles := testProfiles()
	result, err := eng.Decide(context.Background(), apps, profiles)
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	total := 0
	for _, n := range rec.applications {
		total += n
	}
	if total != len(apps) {
		t.Errorf("recorded applications = %d, want %d", total, len(apps))
	}
	if rec.profiles != len(apps)*len(profiles) {
		t.Errorf("recorded profile decisions = %d, want %d", rec.profiles, len(apps)*len(profiles))
	}
	if rec.batches != 1 {
		t.Errorf("recorded batches = %d, want 1", rec.batches)
	}

	wantRules := 0
	hard := 0
	for _, r := range result.Results {
		for _, pr := range r.ProfileResults {
			wantRules += len(pr.RuleEvaluations)
			if pr.HardDeclineTriggered {
				hard++
			}
		}
	}
	gotRules := rec.rules[OutcomeFired] + rec.rules[OutcomeNotFired] + rec.rules[OutcomeFault]
	if gotRules != wantRules {
		t.Errorf("recorded rule evaluations = %d, want %d", gotRules, wantRules)
	}
	if rec.hardDeclines != hard {
		t.Errorf("recorded hard declines = %d, want %d", rec.hardDeclines, hard)
	}
	if rec.rules[OutcomeFault] == 0 {
		t.Error("expected faults for applications with null revolving_utilization_pct")
	}
}

func TestEngine_Progress(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []int
	)
	eng := newTestEngine(t, DefaultEngineConfig().WithWorkers(8), WithProgress(func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if total != 30 {
			t.Errorf("progress total = %d, want 30", total)
		}
		calls = append(calls, done)
	}))

	if _, err := eng.Decide(context.Background(), testPortfolio(30), testProfiles()); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if len(calls) != 30 {
		t.Fatalf("progress calls = %d, want 30", len(calls))
	}
	for i, done := range calls {
		if done != i+1 {
			t.Errorf("calls[%d] = %d, want %d", i, done, i+1)
		}
	}
}

func TestEngine_SharedConditionCompiledOnce(t *testing.T) {
	shared := "credit_score >= 700"
	profiles := []*credit.DecisionProfile{
		newProfile("a", 1, newRule("r1", shared, 1)),
		newProfile("b", 1, newRule("r2", shared, 1), newRule("r3", "credit_score >= (", 1)),
	}

	table := compileProfiles(context.Background(), DefaultEngineConfig().newParser(), profiles, logging.Discard())
	if len(table) != 2 {
		t.Errorf("len(table) = %d, want 2", len(table))
	}
	if compiled := table[conditionKey(&profiles[1].Rules[1].Rule)]; compiled == nil || compiled.err == nil {
		t.Error("invalid condition should be kept with its compile error")
	}
}

func TestEngine_RejectsProfileWithoutThreshold(t *testing.T) {
	var profile credit.DecisionProfile
	data := `{"id":"p","name":"p","rules":[{"rule":{"rule_instance_id":"r","expression":"credit_score >= 900"}}]}`
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	eng := newTestEngine(t, nil)
	apps := []*credit.Application{newTestApp("A1", withAttrs(map[string]any{"credit_score": 500}))}
	result, err := eng.Decide(context.Background(), apps, []*credit.DecisionProfile{&profile})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if len(result.Rejected) != 1 || result.Rejected[0].Kind != credit.EntityProfile {
		t.Fatalf("Rejected = %+v, want one profile rejection", result.Rejected)
	}
	if !strings.Contains(result.Rejected[0].Reason, "approval_threshold is required") {
		t.Errorf("Rejected[0].Reason = %q, want missing threshold", result.Rejected[0].Reason)
	}
	if len(result.Results) != 1 || len(result.Results[0].ProfileResults) != 0 {
		t.Errorf("Results = %+v, want one application with no profile results", result.Results)
	}
}

func TestEngine_ConditionsDoNotLeakAcrossProfiles(t *testing.T) {
	condRule := func(id string, value any) credit.ProfileRuleConfig {
		return credit.ProfileRuleConfig{
			Rule: credit.RuleCandidate{
				RuleInstanceID: id,
				Condition:      &credit.RuleCondition{Field: "employment_status", Operator: credit.OpIn, Value: value},
			},
			WeightOverride: 10,
			Active:         true,
		}
	}

	app := newTestApp("A1", withAttrs(map[string]any{"employment_status": "1"}))
	numeric := newProfile("numeric", 10, condRule("num", []any{1, 2}))
	alone := ScoreProfile(numeric, app)

	// Scoring the numeric rule after a string-valued one must not change it
	stringy := newProfile("string", 10, condRule("str", []any{"1", "2"}))
	eng := newTestEngine(t, nil)
	result, err := eng.Decide(context.Background(), []*credit.Application{app}, []*credit.DecisionProfile{stringy, numeric})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	got := result.Results[0].ProfileResults[1].RuleEvaluations[0]
	want := alone.RuleEvaluations[0]
	if got.Fired != want.Fired || got.Fault != want.Fault {
		t.Errorf("numeric rule in batch = fired %v fault %q, alone = fired %v fault %q", got.Fired, got.Fault, want.Fired, want.Fault)
	}
	if want.Fault == "" {
		t.Errorf("numeric rule on string attribute fault = %q, want type fault", want.Fault)
	}
	if str := result.Results[0].ProfileResults[0].RuleEvaluations[0]; !str.Fired {
		t.Errorf("string rule fired = false, fault %q", str.Fault)
	}
}

func TestEngine_ExpressionLimits(t *testing.T) {
	eng := newTestEngine(t, DefaultEngineConfig().WithExpressionLimits(2, 4096))
	profile := newProfile("P1", 1, newRule("deep", "((credit_score > 1))", 1))

	result, err := eng.Decide(context.Background(), []*credit.Application{newTestApp("A1", primeAttrs())}, []*credit.DecisionProfile{profile})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	eval := result.Results[0].ProfileResults[0].RuleEvaluations[0]
	if eval.Fault == "" || eval.Fired {
		t.Errorf("RuleEvaluation = %+v, want depth fault", eval)
	}
}
