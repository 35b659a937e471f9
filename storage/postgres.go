package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects to the database and verifies reachability, so a bad
// DATABASE_URL fails at startup rather than on the first form submission.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) FindRegistrationByEmail(ctx context.Context, email string) (*Registration, error) {
	const query = `
		SELECT id, full_name, email, phone, country, city, gender, age_group, interest, message, created_at
		FROM users
		WHERE email = $1`

	var reg Registration
	err := p.pool.QueryRow(ctx, query, email).Scan(
		&reg.ID, &reg.FullName, &reg.Email, &reg.Phone, &reg.Country, &reg.City,
		&reg.Gender, &reg.AgeGroup, &reg.Interest, &reg.Message, &reg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

func (p *Postgres) InsertRegistration(ctx context.Context, reg *Registration) (int64, error) {
	const query = `
		INSERT INTO users (full_name, email, phone, country, city, gender, age_group, interest, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id int64
	err := p.pool.QueryRow(ctx, query,
		reg.FullName, reg.Email, reg.Phone, reg.Country, reg.City,
		reg.Gender, reg.AgeGroup, reg.Interest, reg.Message,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

func (p *Postgres) ListRecentRegistrations(ctx context.Context, limit int) ([]Registration, error) {
	const query = `
		SELECT id, full_name, email, phone, country, city, gender, age_group, interest, message, created_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Registration
	for rows.Next() {
		var reg Registration
		if err := rows.Scan(
			&reg.ID, &reg.FullName, &reg.Email, &reg.Phone, &reg.Country, &reg.City,
			&reg.Gender, &reg.AgeGroup, &reg.Interest, &reg.Message, &reg.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

func (p *Postgres) CountRegistrationsByInterest(ctx context.Context) ([]InterestCount, error) {
	const query = `
		SELECT interest, COUNT(*)
		FROM users
		GROUP BY interest
		ORDER BY interest`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InterestCount
	for rows.Next() {
		var ic InterestCount
		if err := rows.Scan(&ic.Interest, &ic.Count); err != nil {
			return nil, err
		}
		out = append(out, ic)
	}
	return out, rows.Err()
}

func (p *Postgres) ListProjects(ctx context.Context) ([]Project, error) {
	const query = `
		SELECT id, title, description, location, beneficiaries, start_date, end_date, status, image_url, created_at, updated_at
		FROM impact_projects
		ORDER BY created_at DESC`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		var proj Project
		if err := rows.Scan(
			&proj.ID, &proj.Title, &proj.Description, &proj.Location, &proj.Beneficiaries,
			&proj.StartDate, &proj.EndDate, &proj.Status, &proj.ImageURL, &proj.CreatedAt, &proj.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, proj)
	}
	return out, rows.Err()
}

func (p *Postgres) CountProjects(ctx context.Context) (ProjectStats, error) {
	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Active'),
			COUNT(*) FILTER (WHERE status = 'Completed'),
			COALESCE(SUM(beneficiaries), 0)
		FROM impact_projects`

	var stats ProjectStats
	err := p.pool.QueryRow(ctx, query).Scan(
		&stats.TotalProjects, &stats.ActiveProjects, &stats.CompletedProjects, &stats.TotalBeneficiaries,
	)
	if err != nil {
		return ProjectStats{}, err
	}
	return stats, nil
}

func (p *Postgres) FindAdminByUsername(ctx context.Context, username string) (*AdminUser, error) {
	const query = `
		SELECT id, username, password_hash, role, last_login, created_at
		FROM admin_users
		WHERE LOWER(username) = LOWER($1)`

	var user AdminUser
	err := p.pool.QueryRow(ctx, query, username).Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.LastLogin, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) TouchAdminLogin(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE admin_users SET last_login = $2 WHERE id = $1`

	tag, err := p.pool.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Healthcheck(ctx context.Context) error {
	return p.pool.Ping(ctx)
}
