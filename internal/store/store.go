package store

import (
	"context"
	"errors"
	"time"
)

type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleArtisan  Role = "ARTISAN"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleArtisan, RoleAdmin:
		return true
	}
	return false
}

type AuthProvider string

const (
	ProviderEmail       AuthProvider = "EMAIL"
	ProviderPhone       AuthProvider = "PHONE"
	ProviderOAuthGoogle AuthProvider = "OAUTH_GOOGLE"
)

// Field names a unique user column usable in lookups. Keeping this a
// closed enum means column names are never caller-controlled.
type Field string

const (
	FieldEmail    Field = "email"
	FieldPhone    Field = "phone"
	FieldGoogleID Field = "google_id"
)

// User is the durable identity. Optional columns are empty strings when
// absent; uniqueness is enforced per column at the database.
type User struct {
	ID              string
	Email           string
	Phone           string
	GoogleID        string
	Name            string
	Role            Role
	AuthProvider    AuthProvider
	EmailVerified   bool
	PhoneVerified   bool
	ProfileComplete bool
	AvatarURL       string
	PasswordHash    string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Customer *Customer
	Artisan  *Artisan
}

type Customer struct {
	ID     string
	UserID string
}

type Artisan struct {
	ID                string
	UserID            string
	Skills            []string
	YearsExperience   int
	Portfolio         []string
	IsOnline          bool
	LocationTracking  bool
	IsProfileComplete bool
}

// ArtisanDefaults are the safe empty values a freshly provisioned
// artisan profile starts with.
type ArtisanDefaults struct {
	Skills            []string
	YearsExperience   int
	Portfolio         []string
	IsProfileComplete bool
}

type NewUser struct {
	Email         string
	Phone         string
	GoogleID      string
	Name          string
	Role          Role
	AuthProvider  AuthProvider
	EmailVerified bool
	AvatarURL     string
	PasswordHash  string
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	GoogleID        *string
	Name            *string
	AvatarURL       *string
	AuthProvider    *AuthProvider
	EmailVerified   *bool
	PhoneVerified   *bool
	ProfileComplete *bool
}

var (
	// ErrNotFound is returned by Get/Update/Delete when no row matches.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when an insert violates a uniqueness
	// constraint (email, phone or provider id already taken).
	ErrConflict = errors.New("store: unique constraint violated")
)

// Store is the keyed record persistence consumed by the identity core.
// All operations are atomic at the single-record level.
type Store interface {
	// FindUserByField returns (nil, nil) when no user matches.
	FindUserByField(ctx context.Context, field Field, value string) (*User, error)
	// GetUser returns the user together with its sub-profile relation.
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, u NewUser) (*User, error)
	UpdateUser(ctx context.Context, id string, p UserPatch) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	CreateCustomer(ctx context.Context, userID string) error
	CreateArtisan(ctx context.Context, userID string, d ArtisanDefaults) error
}
