package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/db"
)

// Postgres implements Store on top of the shared database handle.
type Postgres struct {
	db *db.DB
}

func NewPostgres(db *db.DB) *Postgres {
	return &Postgres{db: db}
}

const userColumns = `
	id, email, phone, google_id, name, role, auth_provider,
	email_verified, phone_verified, profile_complete,
	avatar_url, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (*User, error) {
	var (
		u                      User
		email, phone, googleID sql.NullString
	)
	err := row.Scan(
		&u.ID, &email, &phone, &googleID, &u.Name, &u.Role, &u.AuthProvider,
		&u.EmailVerified, &u.PhoneVerified, &u.ProfileComplete,
		&u.AvatarURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.Phone = phone.String
	u.GoogleID = googleID.String
	return &u, nil
}

// newID mints record ids application-side so inserts and their
// compensating deletes always agree on the key.
func newID() string {
	return uuid.NewString()
}

// nullable maps "" to NULL so partial unique indexes ignore absent values.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

func (p *Postgres) FindUserByField(ctx context.Context, field Field, value string) (*User, error) {
	var where string
	switch field {
	case FieldEmail:
		where = "LOWER(email) = LOWER($1)"
	case FieldPhone:
		where = "phone = $1"
	case FieldGoogleID:
		where = "google_id = $1"
	default:
		return nil, fmt.Errorf("store: unknown lookup field %q", field)
	}

	row := p.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+where, value)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Postgres) GetUser(ctx context.Context, id string) (*User, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	switch u.Role {
	case RoleCustomer:
		var c Customer
		err = p.db.QueryRowContext(ctx, `
			SELECT id, user_id FROM customers WHERE user_id = $1`, id,
		).Scan(&c.ID, &c.UserID)
		if err == nil {
			u.Customer = &c
		} else if err != sql.ErrNoRows {
			return nil, err
		}
	case RoleArtisan:
		var a Artisan
		err = p.db.QueryRowContext(ctx, `
			SELECT id, user_id, skills, years_experience, portfolio,
			       is_online, location_tracking, is_profile_complete
			FROM artisans WHERE user_id = $1`, id,
		).Scan(
			&a.ID, &a.UserID, pq.Array(&a.Skills), &a.YearsExperience,
			pq.Array(&a.Portfolio), &a.IsOnline, &a.LocationTracking,
			&a.IsProfileComplete,
		)
		if err == nil {
			u.Artisan = &a
		} else if err != sql.ErrNoRows {
			return nil, err
		}
	}

	return u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, nu NewUser) (*User, error) {
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO users (
			id, email, phone, google_id, name, role, auth_provider,
			email_verified, avatar_url, password_hash
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+userColumns,
		newID(),
		nullable(nu.Email),
		nullable(nu.Phone),
		nullable(nu.GoogleID),
		nu.Name,
		nu.Role,
		nu.AuthProvider,
		nu.EmailVerified,
		nu.AvatarURL,
		nu.PasswordHash,
	)

	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.GoogleID != nil {
		add("google_id", nullable(*patch.GoogleID))
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.AvatarURL != nil {
		add("avatar_url", *patch.AvatarURL)
	}
	if patch.AuthProvider != nil {
		add("auth_provider", *patch.AuthProvider)
	}
	if patch.EmailVerified != nil {
		add("email_verified", *patch.EmailVerified)
	}
	if patch.PhoneVerified != nil {
		add("phone_verified", *patch.PhoneVerified)
	}
	if patch.ProfileComplete != nil {
		add("profile_complete", *patch.ProfileComplete)
	}

	row := p.db.QueryRowContext(ctx, `
		UPDATE users SET `+strings.Join(set, ", ")+`
		WHERE id = $1
		RETURNING `+userColumns, args...)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (p *Postgres) DeleteUser(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CreateCustomer(ctx context.Context, userID string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO customers (id, user_id) VALUES ($1, $2)`, newID(), userID)
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (p *Postgres) CreateArtisan(ctx context.Context, userID string, d ArtisanDefaults) error {
	skills := d.Skills
	if skills == nil {
		skills = []string{}
	}
	portfolio := d.Portfolio
	if portfolio == nil {
		portfolio = []string{}
	}

	_, err := p.db.ExecContext(ctx, `
		INSERT INTO artisans (
			id, user_id, skills, years_experience, portfolio, is_profile_complete
		)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		newID(),
		userID,
		pq.Array(skills),
		d.YearsExperience,
		pq.Array(portfolio),
		d.IsProfileComplete,
	)
	if err != nil && isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}
