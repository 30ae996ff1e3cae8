package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth/resolver"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
)

var (
	// ErrInvalidCredentials hides whether the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("account already exists")
	// ErrInvalidInput marks caller mistakes (missing identifier, bad
	// role, weak password) so handlers can keep store failures apart.
	ErrInvalidInput = errors.New("invalid registration input")
)

// RegisterInput is a password registration request. Exactly one of
// Email or Phone must be present; it becomes the login identifier.
type RegisterInput struct {
	Email    string
	Phone    string
	Name     string
	Password string
	Role     store.Role
}

// Service handles password-based registration and login.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Register creates the user and its role sub-profile as one logical
// unit, mirroring the resolver's first-login path.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*store.User, error) {
	if in.Email == "" && in.Phone == "" {
		return nil, fmt.Errorf("%w: email or phone is required", ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}

	// Input is checked in full before any store round-trip.
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if in.Email != "" {
		existing, err := s.store.FindUserByField(ctx, store.FieldEmail, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAlreadyRegistered
		}
	}
	if in.Phone != "" {
		existing, err := s.store.FindUserByField(ctx, store.FieldPhone, in.Phone)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAlreadyRegistered
		}
	}

	authProvider := store.ProviderEmail
	if in.Email == "" {
		authProvider = store.ProviderPhone
	}

	created, err := s.store.CreateUser(ctx, store.NewUser{
		Email:        in.Email,
		Phone:        in.Phone,
		Name:         in.Name,
		Role:         in.Role,
		AuthProvider: authProvider,
		PasswordHash: hash,
	})
	if errors.Is(err, store.ErrConflict) {
		return nil, ErrAlreadyRegistered
	}
	if err != nil {
		return nil, err
	}

	if err := resolver.ProvisionSubProfile(ctx, s.store, created.ID, in.Role); err != nil {
		if delErr := s.store.DeleteUser(ctx, created.ID); delErr != nil {
			return nil, fmt.Errorf("provision sub-profile: %v (cleanup failed: %w)", err, delErr)
		}
		return nil, fmt.Errorf("provision sub-profile: %w", err)
	}

	return s.store.GetUser(ctx, created.ID)
}

// Authenticate verifies a password login by email or phone identifier.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*store.User, error) {
	u, err := s.store.FindUserByField(ctx, store.FieldEmail, identifier)
	if err != nil {
		return nil, err
	}
	if u == nil {
		u, err = s.store.FindUserByField(ctx, store.FieldPhone, identifier)
		if err != nil {
			return nil, err
		}
	}

	if u == nil || u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.store.GetUser(ctx, u.ID)
}
