package main

import (
	"encoding/json"
	"strings"
	"testing"

	"mercator-hq/underwriter/pkg/cli"
	"mercator-hq/underwriter/pkg/credit"
)

func TestLintProfilesValid(t *testing.T) {
	resetFlags(t)
	lintFlags.profiles = "testdata/profiles"

	cmd, out, _ := testCommand()
	if err := lintProfiles(cmd, []string{}); err != nil {
		t.Fatalf("lintProfiles() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "✓ conservative") {
		t.Errorf("output missing valid marker:\n%s", got)
	}
	if !strings.Contains(got, "Summary: 1 profiles, 1 valid, 0 invalid") {
		t.Errorf("output missing summary:\n%s", got)
	}
}

func TestLintProfilesInvalid(t *testing.T) {
	resetFlags(t)
	lintFlags.profiles = "testdata/invalid"

	cmd, out, _ := testCommand()
	err := lintProfiles(cmd, []string{})
	if err == nil {
		t.Fatal("lintProfiles() with invalid profile should return error")
	}
	if code := cli.ExitCode(err); code != cli.ExitRejected {
		t.Errorf("ExitCode() = %d, want %d", code, cli.ExitRejected)
	}

	got := out.String()
	for _, want := range []string{"✗ broken", "name is required", "rule bad_syntax:"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestLintProfilesJSONFormat(t *testing.T) {
	resetFlags(t)
	lintFlags.profiles = "testdata/invalid/broken.yaml"
	lintFlags.format = "json"

	cmd, out, _ := testCommand()
	if err := lintProfiles(cmd, []string{}); err == nil {
		t.Error("lintProfiles() with invalid profile should return error")
	}

	var results []LintResult
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].Valid {
		t.Error("results[0].Valid = true, want false")
	}
	if len(results[0].Findings) == 0 || results[0].Findings[0].RuleID != "bad_syntax" {
		t.Errorf("results[0].Findings = %+v, want a bad_syntax finding", results[0].Findings)
	}
}

func TestLintProfilesErrors(t *testing.T) {
	tests := []struct {
		name     string
		profiles string
		format   string
		wantCode int
	}{
		{name: "no profiles", format: "text", wantCode: cli.ExitUsage},
		{name: "bad format", profiles: "testdata/profiles", format: "yaml", wantCode: cli.ExitUsage},
		{name: "nonexistent path", profiles: "testdata/nonexistent", format: "text", wantCode: cli.ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			lintFlags.profiles = tt.profiles
			lintFlags.format = tt.format

			cmd, _, _ := testCommand()
			err := lintProfiles(cmd, []string{})
			if err == nil {
				t.Fatal("lintProfiles() error = nil, want error")
			}
			if code := cli.ExitCode(err); code != tt.wantCode {
				t.Errorf("ExitCode(%v) = %d, want %d", err, code, tt.wantCode)
			}
		})
	}
}

func TestLintProfile(t *testing.T) {
	tests := []struct {
		name      string
		profile   *credit.DecisionProfile
		wantValid bool
	}{
		{
			name: "valid",
			profile: &credit.DecisionProfile{
				Name:              "ok",
				ApprovalThreshold: 10,
				Rules: []credit.ProfileRuleConfig{
					{Rule: credit.RuleCandidate{RuleInstanceID: "r1", Expression: "credit_score >= 700"}, WeightOverride: 10, Active: true},
				},
			},
			wantValid: true,
		},
		{
			name: "missing rule id",
			profile: &credit.DecisionProfile{
				Name: "no-id",
				Rules: []credit.ProfileRuleConfig{
					{Rule: credit.RuleCandidate{Expression: "credit_score >= 700"}, Active: true},
				},
			},
		},
		{
			name: "bad expression in inactive rule",
			profile: &credit.DecisionProfile{
				Name: "inactive",
				Rules: []credit.ProfileRuleConfig{
					{Rule: credit.RuleCandidate{RuleInstanceID: "r1", Expression: "credit_score >="}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lintProfile(tt.profile)
			if got.Valid != tt.wantValid {
				t.Errorf("lintProfile().Valid = %v, want %v (problems %v, findings %+v)", got.Valid, tt.wantValid, got.Problems, got.Findings)
			}
			if got.Profile != tt.profile.Key() {
				t.Errorf("lintProfile().Profile = %q, want %q", got.Profile, tt.profile.Key())
			}
		})
	}
}
