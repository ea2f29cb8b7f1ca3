package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for batch run IDs.
	RunIDKey contextKey = "run_id"

	// ApplicationIDKey is the context key for the application being evaluated.
	ApplicationIDKey contextKey = "application_id"

	// ProfileIDKey is the context key for the profile being scored.
	ProfileIDKey contextKey = "profile_id"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithApplicationID adds an application ID to the context.
func WithApplicationID(ctx context.Context, applicationID string) context.Context {
	return context.WithValue(ctx, ApplicationIDKey, applicationID)
}

// GetApplicationID retrieves the application ID from the context.
func GetApplicationID(ctx context.Context) string {
	if applicationID, ok := ctx.Value(ApplicationIDKey).(string); ok {
		return applicationID
	}
	return ""
}

// WithProfileID adds a profile ID to the context.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, ProfileIDKey, profileID)
}

// GetProfileID retrieves the profile ID from the context.
func GetProfileID(ctx context.Context) string {
	if profileID, ok := ctx.Value(ProfileIDKey).(string); ok {
		return profileID
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, string(RunIDKey), runID)
	}
	if applicationID := GetApplicationID(ctx); applicationID != "" {
		fields = append(fields, string(ApplicationIDKey), applicationID)
	}
	if profileID := GetProfileID(ctx); profileID != "" {
		fields = append(fields, string(ProfileIDKey), profileID)
	}

	return fields
}
