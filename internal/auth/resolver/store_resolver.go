package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/logger"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
)

// providerFields maps a provider name to the unique user column holding
// its external account id. Each provider is checked independently; two
// external accounts that never shared an email are never merged.
var providerFields = map[string]store.Field{
	"google": store.FieldGoogleID,
}

var providerKinds = map[string]store.AuthProvider{
	"google": store.ProviderOAuthGoogle,
}

// StoreResolver resolves identities against the record store.
type StoreResolver struct {
	store store.Store
}

func NewStoreResolver(s store.Store) *StoreResolver {
	return &StoreResolver{store: s}
}

// Resolve returns exactly one durable user for the given external
// profile, creating or linking records as needed. Precedence:
//
//  1. provider-id match is authoritative and short-circuits everything,
//     even when the email differs;
//  2. email match links the provider to the existing user and forces
//     email_verified true; the existing role is immutable;
//  3. otherwise a new user plus its role sub-profile are created as one
//     logical unit.
//
// The final user is re-fetched with its sub-profile relation so callers
// always observe a complete, linked identity.
func (r *StoreResolver) Resolve(
	ctx context.Context,
	profile *auth.ExternalProfile,
	requestedRole store.Role,
) (*store.User, error) {
	return r.resolve(ctx, profile, requestedRole, true)
}

func (r *StoreResolver) resolve(
	ctx context.Context,
	profile *auth.ExternalProfile,
	requestedRole store.Role,
	retryOnConflict bool,
) (*store.User, error) {

	if profile == nil || profile.ID == "" {
		return nil, fmt.Errorf("%w: empty external profile", ErrResolution)
	}

	providerField, ok := providerFields[profile.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrResolution, profile.Provider)
	}

	// 1. Provider-id lookup.
	existing, err := r.store.FindUserByField(ctx, providerField, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	if existing != nil {
		return r.fetch(ctx, existing.ID)
	}

	// 2. Email-based linking (existing user, new provider).
	if profile.Email != "" {
		existing, err = r.store.FindUserByField(ctx, store.FieldEmail, profile.Email)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResolution, err)
		}
		if existing != nil {
			providerKind := providerKinds[profile.Provider]
			verified := true
			_, err = r.store.UpdateUser(ctx, existing.ID, store.UserPatch{
				GoogleID:      &profile.ID,
				AvatarURL:     &profile.Picture,
				AuthProvider:  &providerKind,
				EmailVerified: &verified,
			})
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrResolution, err)
			}

			logger.Info("external account linked", map[string]any{
				"provider": profile.Provider,
				"user_id":  existing.ID,
			})

			return r.fetch(ctx, existing.ID)
		}
	}

	// 3. Create new user + sub-profile.
	created, err := r.store.CreateUser(ctx, store.NewUser{
		Email:         profile.Email,
		GoogleID:      profile.ID,
		Name:          profile.Name,
		Role:          requestedRole,
		AuthProvider:  providerKinds[profile.Provider],
		EmailVerified: true,
		AvatarURL:     profile.Picture,
	})
	if errors.Is(err, store.ErrConflict) {
		// Lost a first-login race: someone else just created this
		// identity. Re-resolve from the top once.
		if retryOnConflict {
			return r.resolve(ctx, profile, requestedRole, false)
		}
		return nil, fmt.Errorf("%w: %v", ErrResolution, ErrLinkConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}

	if err := ProvisionSubProfile(ctx, r.store, created.ID, requestedRole); err != nil {
		// A user without its sub-profile is partial state; undo.
		if delErr := r.store.DeleteUser(ctx, created.ID); delErr != nil {
			logger.Error("compensating delete failed", map[string]any{
				"user_id": created.ID,
				"error":   delErr.Error(),
			})
		}
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}

	// 4. Re-fetch including the sub-profile relation.
	return r.fetch(ctx, created.ID)
}

func (r *StoreResolver) fetch(ctx context.Context, id string) (*store.User, error) {
	u, err := r.store.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	return u, nil
}

// ProvisionSubProfile creates the role sub-record with safe empty
// defaults. Shared by OAuth resolution and password registration so
// both entry points follow one rule.
func ProvisionSubProfile(
	ctx context.Context,
	s store.Store,
	userID string,
	role store.Role,
) error {
	switch role {
	case store.RoleCustomer:
		return s.CreateCustomer(ctx, userID)
	case store.RoleArtisan:
		return s.CreateArtisan(ctx, userID, store.ArtisanDefaults{
			Skills:            []string{},
			YearsExperience:   0,
			Portfolio:         []string{},
			IsProfileComplete: false,
		})
	case store.RoleAdmin:
		// Admins carry no sub-profile.
		return nil
	}
	return fmt.Errorf("unknown role %q", role)
}
