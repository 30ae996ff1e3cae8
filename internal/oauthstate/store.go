package oauthstate

import (
	"context"
	"time"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
)

// FlowTTL bounds how long an authorization round-trip may take.
const FlowTTL = 5 * time.Minute

// Flow captures one in-flight OAuth authorization round-trip. The
// requested role rides here so it survives the provider redirect.
type Flow struct {
	State         string     `json:"state"`
	CodeVerifier  string     `json:"code_verifier"`
	Provider      string     `json:"provider"`
	RequestedRole store.Role `json:"requested_role"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// Store defines how in-flight flows are stored and retrieved.
// Implementations must remain stateless and opaque.
type Store interface {
	Save(ctx context.Context, f Flow) error
	// Consume returns the flow for the given state and removes it, so a
	// state value can never be replayed. Returns (nil, nil) when the
	// state is unknown or expired.
	Consume(ctx context.Context, state string) (*Flow, error)
}
