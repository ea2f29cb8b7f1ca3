package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestChecker_CheckReadiness(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		want   string
	}{
		{name: "no checks", checks: nil, want: "ready"},
		{
			name:   "all healthy",
			checks: map[string]CheckFunc{"a": func(context.Context) error { return nil }},
			want:   "ready",
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("down") },
			},
			want: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("CheckReadiness().Status = %q, want %q", status.Status, tt.want)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("len(Checks) = %d, want %d", len(status.Checks), len(tt.checks))
			}
		})
	}
}

func TestChecker_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != "unhealthy" || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("Checks[slow] = %+v, want timeout", result)
	}
}

func TestChecker_ListChecks(t *testing.T) {
	checker := New(0)
	checker.RegisterCheck("b", func(context.Context) error { return nil })
	checker.RegisterCheck("a", func(context.Context) error { return nil })
	checker.RegisterCheck("a", func(context.Context) error { return nil })

	if got := strings.Join(checker.ListChecks(), ","); got != "a,b" {
		t.Errorf("ListChecks() = %s, want a,b", got)
	}
	if checker.checkTimeout != 5*time.Second {
		t.Errorf("default timeout = %v, want 5s", checker.checkTimeout)
	}
}

func TestRunTracker(t *testing.T) {
	tracker := NewRunTracker()
	ctx := context.Background()

	if err := tracker.Check(ctx); err == nil {
		t.Error("Check() before any run = nil, want error")
	}

	tracker.Record(nil)
	if err := tracker.Check(ctx); err != nil {
		t.Errorf("Check() after successful run = %v, want nil", err)
	}

	tracker.Record(errors.New("profiles: decode failed"))
	err := tracker.Check(ctx)
	if err == nil || !strings.Contains(err.Error(), "profiles: decode failed") {
		t.Errorf("Check() after failed run = %v, want last error", err)
	}

	tracker.Record(nil)
	if err := tracker.Check(ctx); err != nil {
		t.Errorf("Check() after recovery = %v, want nil", err)
	}
	if tracker.Runs() != 3 {
		t.Errorf("Runs() = %d, want 3", tracker.Runs())
	}
}

func TestNewMux(t *testing.T) {
	tracker := NewRunTracker()
	checker := New(time.Second)
	checker.RegisterCheck("decisions", tracker.Check)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("underwriter_batches_total 1\n"))
	})
	server := httptest.NewServer(NewMux(checker, metrics))
	defer server.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("GET %s error = %v", path, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("GET %s read error = %v", path, err)
		}
		return resp.StatusCode, string(body)
	}

	if code, _ := get("/healthz"); code != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", code)
	}

	code, body := get("/readyz")
	if code != http.StatusServiceUnavailable {
		t.Errorf("/readyz before run status = %d, want 503", code)
	}
	var status HealthStatus
	if err := json.Unmarshal([]byte(body), &status); err != nil {
		t.Fatalf("/readyz body is not JSON: %v", err)
	}
	if status.Checks["decisions"].Status != "unhealthy" {
		t.Errorf("decisions check = %+v, want unhealthy", status.Checks["decisions"])
	}

	tracker.Record(nil)
	if code, _ := get("/readyz"); code != http.StatusOK {
		t.Errorf("/readyz after run status = %d, want 200", code)
	}

	if code, body := get("/metrics"); code != http.StatusOK || !strings.Contains(body, "underwriter_batches_total") {
		t.Errorf("/metrics = %d %q", code, body)
	}
}

func TestHandlers_MethodNotAllowed(t *testing.T) {
	checker := New(0)
	for name, h := range map[string]http.HandlerFunc{
		"liveness":  checker.LivenessHandler(),
		"readiness": checker.ReadinessHandler(),
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status = %d, want 405", rec.Code)
			}
		})
	}
}

func TestHandlers_Head(t *testing.T) {
	rec := httptest.NewRecorder()
	New(0).LivenessHandler()(rec, httptest.NewRequest(http.MethodHead, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD /healthz = %d with %d body bytes, want 200 and empty body", rec.Code, rec.Body.Len())
	}
}
