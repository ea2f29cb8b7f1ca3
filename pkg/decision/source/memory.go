package source

import (
	"context"
	"sync"

	"mercator-hq/underwriter/pkg/credit"
	"mercator-hq/underwriter/pkg/decision/engine"
)

// MemorySource is an in-memory source of profiles and applications.
type MemorySource struct {
	mu           sync.RWMutex
	profiles     []*credit.DecisionProfile
	applications []*credit.Application
}

// NewMemorySource creates a new in-memory source holding profiles.
func NewMemorySource(profiles ...*credit.DecisionProfile) *MemorySource {
	return &MemorySource{profiles: profiles}
}

// LoadProfiles returns the profiles stored in memory.
func (s *MemorySource) LoadProfiles(ctx context.Context) (*ProfileSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Return a copy to prevent external modification of the slice
	profiles := make([]*credit.DecisionProfile, len(s.profiles))
	copy(profiles, s.profiles)
	return &ProfileSet{Profiles: profiles, Rejected: []engine.Rejection{}}, nil
}

// LoadApplications returns the applications stored in memory.
func (s *MemorySource) LoadApplications(ctx context.Context) (*ApplicationSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]*credit.Application, len(s.applications))
	copy(apps, s.applications)
	return &ApplicationSet{Applications: apps, Rejected: []engine.Rejection{}}, nil
}

// SetProfiles replaces the profiles in memory.
func (s *MemorySource) SetProfiles(profiles []*credit.DecisionProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = profiles
}

// SetApplications replaces the applications in memory.
func (s *MemorySource) SetApplications(apps []*credit.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = apps
}
