package resolver

import (
	"context"
	"errors"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
)

var (
	// ErrResolution signals a store failure while resolving an external
	// identity. It is propagated, never swallowed.
	ErrResolution = errors.New("resolver: identity resolution failed")

	// ErrLinkConflict signals that a concurrent first-login created the
	// same identity while this call was resolving. Resolve retries once
	// before surfacing it wrapped in ErrResolution.
	ErrLinkConflict = errors.New("resolver: concurrent identity creation")
)

// Resolver maps an external identity to exactly one durable user.
// It is the ONLY place where identity-to-user mapping logic lives.
type Resolver interface {
	Resolve(
		ctx context.Context,
		profile *auth.ExternalProfile,
		requestedRole store.Role,
	) (*store.User, error)
}
