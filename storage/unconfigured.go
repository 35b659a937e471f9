package storage

import (
	"context"
	"time"
)

// Unconfigured is the explicit stand-in used when no DATABASE_URL is set.
//
// Every operation fails with ErrUnconfigured, which handlers surface as a
// generic service-unavailable response. This replaces the tempting
// alternative of a mock store returning empty results, which would turn a
// deployment mistake into silently dropped registrations.
type Unconfigured struct{}

var _ Store = Unconfigured{}

func (Unconfigured) FindRegistrationByEmail(context.Context, string) (*Registration, error) {
	return nil, ErrUnconfigured
}

func (Unconfigured) InsertRegistration(context.Context, *Registration) (int64, error) {
	return 0, ErrUnconfigured
}

func (Unconfigured) ListRecentRegistrations(context.Context, int) ([]Registration, error) {
	return nil, ErrUnconfigured
}

func (Unconfigured) CountRegistrationsByInterest(context.Context) ([]InterestCount, error) {
	return nil, ErrUnconfigured
}

func (Unconfigured) ListProjects(context.Context) ([]Project, error) {
	return nil, ErrUnconfigured
}

func (Unconfigured) CountProjects(context.Context) (ProjectStats, error) {
	return ProjectStats{}, ErrUnconfigured
}

func (Unconfigured) FindAdminByUsername(context.Context, string) (*AdminUser, error) {
	return nil, ErrUnconfigured
}

func (Unconfigured) TouchAdminLogin(context.Context, int64, time.Time) error {
	return ErrUnconfigured
}

func (Unconfigured) Healthcheck(context.Context) error {
	return ErrUnconfigured
}
