package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store used by tests and keyless local development.
type Memory struct {
	mu            sync.RWMutex
	registrations []Registration
	projects      []Project
	admins        map[string]AdminUser
	nextID        int64
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		admins: make(map[string]AdminUser),
		nextID: 1,
	}
}

// SeedAdmin inserts an admin credential, used by tests and dev bootstrap.
func (m *Memory) SeedAdmin(user AdminUser) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.admins[strings.ToLower(user.Username)] = user
}

func (m *Memory) FindRegistrationByEmail(ctx context.Context, email string) (*Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.registrations {
		if m.registrations[i].Email == email {
			reg := m.registrations[i]
			return &reg, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertRegistration(ctx context.Context, reg *Registration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.registrations {
		if m.registrations[i].Email == reg.Email {
			return 0, ErrDuplicateEmail
		}
	}

	stored := *reg
	stored.ID = m.nextID
	m.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.registrations = append(m.registrations, stored)
	return stored.ID, nil
}

func (m *Memory) ListRecentRegistrations(ctx context.Context, limit int) ([]Registration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Registration, len(m.registrations))
	copy(out, m.registrations)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CountRegistrationsByInterest(ctx context.Context) ([]InterestCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for i := range m.registrations {
		counts[m.registrations[i].Interest]++
	}

	out := make([]InterestCount, 0, len(counts))
	for interest, count := range counts {
		out = append(out, InterestCount{Interest: interest, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Interest < out[j].Interest
	})
	return out, nil
}

// SeedProject inserts an impact project, used by tests and dev bootstrap.
func (m *Memory) SeedProject(proj Project) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if proj.ID == 0 {
		proj.ID = m.nextID
		m.nextID++
	}
	if proj.Status == "" {
		proj.Status = ProjectActive
	}
	if proj.CreatedAt.IsZero() {
		proj.CreatedAt = time.Now()
	}
	if proj.UpdatedAt.IsZero() {
		proj.UpdatedAt = proj.CreatedAt
	}
	m.projects = append(m.projects, proj)
}

func (m *Memory) ListProjects(ctx context.Context) ([]Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Project, len(m.projects))
	copy(out, m.projects)
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) CountProjects(ctx context.Context) (ProjectStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats ProjectStats
	for i := range m.projects {
		stats.TotalProjects++
		switch m.projects[i].Status {
		case ProjectActive:
			stats.ActiveProjects++
		case ProjectCompleted:
			stats.CompletedProjects++
		}
		stats.TotalBeneficiaries += m.projects[i].Beneficiaries
	}
	return stats, nil
}

func (m *Memory) FindAdminByUsername(ctx context.Context, username string) (*AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.admins[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *Memory) TouchAdminLogin(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for username, user := range m.admins {
		if user.ID == id {
			user.LastLogin = &at
			m.admins[username] = user
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) Healthcheck(ctx context.Context) error {
	return nil
}
