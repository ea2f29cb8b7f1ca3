package source

import (
	"context"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/decision/engine"
)

// ProfileSource loads decision profiles.
type ProfileSource interface {
	LoadProfiles(ctx context.Context) (*ProfileSet, error)
}

// ApplicationSource loads loan applications.
type ApplicationSource interface {
	LoadApplications(ctx context.Context) (*ApplicationSet, error)
}

// ProfileSet is the result of loading profiles. Entities that could not be
// decoded are listed in Rejected and are absent from Profiles.
type ProfileSet struct {
	Profiles []*credit.DecisionProfile
	Rejected []engine.Rejection
}

// ApplicationSet is the result of loading applications. Entities that could
// not be decoded are listed in Rejected and are absent from Applications.
type ApplicationSet struct {
	Applications []*credit.Application
	Rejected     []engine.Rejection
}

var (
	_ ProfileSource     = (*FileSource)(nil)
	_ ApplicationSource = (*FileSource)(nil)
	_ ProfileSource     = (*MemorySource)(nil)
	_ ApplicationSource = (*MemorySource)(nil)
)
