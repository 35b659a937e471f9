// Package storage defines the row-store abstraction the request pipeline
// persists through.
//
// The core never issues raw query strings; it calls typed repository methods
// and the backend translates them. Three backends exist: Postgres for
// production, Memory for tests and local development, and Unconfigured,
// an explicit stand-in reported at startup when no database is configured —
// request handling must never silently succeed against a missing store.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when inserting a registration whose email
	// already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnconfigured is returned by the Unconfigured backend for every
	// operation.
	ErrUnconfigured = errors.New("database not configured")
)

// Registration is a public registration row.
// Phone holds an encrypted envelope, never plaintext.
type Registration struct {
	ID        int64
	FullName  string
	Email     string
	Phone     *string
	Country   *string
	City      *string
	Gender    *string
	AgeGroup  *string
	Interest  string
	Message   *string
	CreatedAt time.Time
}

// AdminUser is an admin credential row.
type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	LastLogin    *time.Time
	CreatedAt    time.Time
}

// InterestCount aggregates registrations per interest for the dashboard.
type InterestCount struct {
	Interest string `json:"interest"`
	Count    int64  `json:"count"`
}

// Project statuses.
const (
	ProjectActive    = "Active"
	ProjectCompleted = "Completed"
)

// Project is an impact project row shown on the site and the admin pages.
type Project struct {
	ID            int64
	Title         string
	Description   string
	Location      string
	Beneficiaries int64
	StartDate     *time.Time
	EndDate       *time.Time
	Status        string
	ImageURL      *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProjectStats aggregates impact projects for the dashboard.
type ProjectStats struct {
	TotalProjects      int64 `json:"total_projects"`
	ActiveProjects     int64 `json:"active_projects"`
	CompletedProjects  int64 `json:"completed_projects"`
	TotalBeneficiaries int64 `json:"total_beneficiaries"`
}

// Store is the persistence contract consumed by the request pipeline.
type Store interface {
	// FindRegistrationByEmail looks up a registration by normalized email.
	FindRegistrationByEmail(ctx context.Context, email string) (*Registration, error)
	// InsertRegistration persists a new registration and returns its ID.
	// Returns ErrDuplicateEmail when the email already exists.
	InsertRegistration(ctx context.Context, reg *Registration) (int64, error)
	// ListRecentRegistrations returns the newest registrations first.
	ListRecentRegistrations(ctx context.Context, limit int) ([]Registration, error)
	// CountRegistrationsByInterest aggregates totals for the dashboard.
	CountRegistrationsByInterest(ctx context.Context) ([]InterestCount, error)

	// ListProjects returns impact projects, newest first.
	ListProjects(ctx context.Context) ([]Project, error)
	// CountProjects aggregates project totals for the dashboard.
	CountProjects(ctx context.Context) (ProjectStats, error)

	// FindAdminByUsername looks up an admin credential by normalized username.
	FindAdminByUsername(ctx context.Context, username string) (*AdminUser, error)
	// TouchAdminLogin records a successful login time.
	TouchAdminLogin(ctx context.Context, id int64, at time.Time) error

	// Healthcheck verifies the backend is reachable.
	Healthcheck(ctx context.Context) error
}
