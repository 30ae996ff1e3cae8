package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Onuiteshi/handyman-backend-sub001/internal/auth"
	"github.com/Onuiteshi/handyman-backend-sub001/internal/store"
)

// fakeStore is an in-memory record store with per-call failure hooks.
type fakeStore struct {
	users     map[string]*store.User
	customers map[string]bool
	artisans  map[string]bool
	nextID    int

	findErr        error
	createUserErr  error
	updateErr      error
	subProfileErr  error
	createUserHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*store.User),
		customers: make(map[string]bool),
		artisans:  make(map[string]bool),
	}
}

func (f *fakeStore) FindUserByField(ctx context.Context, field store.Field, value string) (*store.User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		switch field {
		case store.FieldEmail:
			if u.Email != "" && strings.EqualFold(u.Email, value) {
				cp := *u
				return &cp, nil
			}
		case store.FieldPhone:
			if u.Phone == value && value != "" {
				cp := *u
				return &cp, nil
			}
		case store.FieldGoogleID:
			if u.GoogleID == value && value != "" {
				cp := *u
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*store.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	if f.customers[id] {
		cp.Customer = &store.Customer{ID: "c-" + id, UserID: id}
	}
	if f.artisans[id] {
		cp.Artisan = &store.Artisan{ID: "a-" + id, UserID: id, Skills: []string{}, Portfolio: []string{}}
	}
	return &cp, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, nu store.NewUser) (*store.User, error) {
	if f.createUserHook != nil {
		f.createUserHook()
	}
	if f.createUserErr != nil {
		err := f.createUserErr
		f.createUserErr = nil
		return nil, err
	}
	for _, u := range f.users {
		if (nu.Email != "" && strings.EqualFold(u.Email, nu.Email)) ||
			(nu.Phone != "" && u.Phone == nu.Phone) ||
			(nu.GoogleID != "" && u.GoogleID == nu.GoogleID) {
			return nil, store.ErrConflict
		}
	}
	f.nextID++
	u := &store.User{
		ID:            fmt.Sprintf("user-%d", f.nextID),
		Email:         nu.Email,
		Phone:         nu.Phone,
		GoogleID:      nu.GoogleID,
		Name:          nu.Name,
		Role:          nu.Role,
		AuthProvider:  nu.AuthProvider,
		EmailVerified: nu.EmailVerified,
		AvatarURL:     nu.AvatarURL,
		PasswordHash:  nu.PasswordHash,
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateUser(ctx context.Context, id string, p store.UserPatch) (*store.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.GoogleID != nil {
		u.GoogleID = *p.GoogleID
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.AuthProvider != nil {
		u.AuthProvider = *p.AuthProvider
	}
	if p.EmailVerified != nil {
		u.EmailVerified = *p.EmailVerified
	}
	if p.PhoneVerified != nil {
		u.PhoneVerified = *p.PhoneVerified
	}
	if p.ProfileComplete != nil {
		u.ProfileComplete = *p.ProfileComplete
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.users, id)
	delete(f.customers, id)
	delete(f.artisans, id)
	return nil
}

func (f *fakeStore) CreateCustomer(ctx context.Context, userID string) error {
	if f.subProfileErr != nil {
		return f.subProfileErr
	}
	if f.customers[userID] {
		return store.ErrConflict
	}
	f.customers[userID] = true
	return nil
}

func (f *fakeStore) CreateArtisan(ctx context.Context, userID string, d store.ArtisanDefaults) error {
	if f.subProfileErr != nil {
		return f.subProfileErr
	}
	if f.artisans[userID] {
		return store.ErrConflict
	}
	f.artisans[userID] = true
	return nil
}

func googleProfile(id, email string) *auth.ExternalProfile {
	return &auth.ExternalProfile{
		Provider: "google",
		ID:       id,
		Email:    email,
		Name:     "Ada Lovelace",
		Picture:  "https://lh3.example/ada.png",
	}
}

func TestResolveCreatesUserAndSubProfile(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	u, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if u.Role != store.RoleCustomer {
		t.Fatalf("expected role CUSTOMER, got %s", u.Role)
	}
	if !u.EmailVerified {
		t.Fatal("expected email_verified true for provider-asserted email")
	}
	if u.ProfileComplete {
		t.Fatal("new user must start with profile_complete false")
	}
	if u.AuthProvider != store.ProviderOAuthGoogle {
		t.Fatalf("expected auth provider OAUTH_GOOGLE, got %s", u.AuthProvider)
	}
	if u.Customer == nil {
		t.Fatal("expected customer sub-profile to be created")
	}
	if u.Artisan != nil {
		t.Fatal("customer must not get an artisan sub-profile")
	}
}

func TestResolveIsIdempotentForSameProfile(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	first, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same user id, got %s and %s", first.ID, second.ID)
	}
	if len(fs.users) != 1 {
		t.Fatalf("expected exactly one user, got %d", len(fs.users))
	}
}

func TestResolveProviderMatchIgnoresRequestedRole(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	first, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	for _, role := range []store.Role{store.RoleArtisan, store.RoleAdmin, store.RoleCustomer} {
		u, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), role)
		if err != nil {
			t.Fatalf("resolve with role %s: %v", role, err)
		}
		if u.ID != first.ID {
			t.Fatalf("role %s: expected user %s, got %s", role, first.ID, u.ID)
		}
		if u.Role != store.RoleCustomer {
			t.Fatalf("role %s: stored role must stay CUSTOMER, got %s", role, u.Role)
		}
	}
}

func TestResolveProviderMatchWinsOverEmail(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	first, err := r.Resolve(context.Background(), googleProfile("g1", "old@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	// Same provider id, different email: provider match is authoritative.
	u, err := r.Resolve(context.Background(), googleProfile("g1", "new@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.ID != first.ID {
		t.Fatalf("expected user %s, got %s", first.ID, u.ID)
	}
	if u.Email != "old@x.com" {
		t.Fatalf("provider match must leave the user unchanged, email became %q", u.Email)
	}
}

func TestResolveLinksExistingUserByEmail(t *testing.T) {
	fs := newFakeStore()
	existing, err := fs.CreateUser(context.Background(), store.NewUser{
		Email:        "a@x.com",
		Role:         store.RoleArtisan,
		AuthProvider: store.ProviderEmail,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	_ = fs.CreateArtisan(context.Background(), existing.ID, store.ArtisanDefaults{})

	r := NewStoreResolver(fs)
	u, err := r.Resolve(context.Background(), googleProfile("g2", "a@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if u.ID != existing.ID {
		t.Fatalf("expected link to user %s, got %s", existing.ID, u.ID)
	}
	if u.GoogleID != "g2" {
		t.Fatalf("expected google id g2 attached, got %q", u.GoogleID)
	}
	if !u.EmailVerified {
		t.Fatal("linking must force email_verified true")
	}
	if u.Role != store.RoleArtisan {
		t.Fatalf("linking must never change role, got %s", u.Role)
	}
	if u.AuthProvider != store.ProviderOAuthGoogle {
		t.Fatalf("expected auth provider OAUTH_GOOGLE after link, got %s", u.AuthProvider)
	}
	if u.AvatarURL != "https://lh3.example/ada.png" {
		t.Fatalf("linking must overwrite avatar, got %q", u.AvatarURL)
	}
	if len(fs.users) != 1 {
		t.Fatalf("linking must not create a user, got %d users", len(fs.users))
	}
}

func TestResolveNoEmailAlwaysCreates(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	u1, err := r.Resolve(context.Background(), googleProfile("g1", ""), store.RoleArtisan)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u1.Artisan == nil {
		t.Fatal("expected artisan sub-profile")
	}

	u2, err := r.Resolve(context.Background(), googleProfile("g9", ""), store.RoleArtisan)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u1.ID == u2.ID {
		t.Fatal("distinct provider ids without email must create distinct users")
	}
}

func TestResolveArtisanDefaults(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	u, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleArtisan)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if u.Artisan == nil {
		t.Fatal("expected artisan sub-profile")
	}
	if len(u.Artisan.Skills) != 0 || len(u.Artisan.Portfolio) != 0 {
		t.Fatal("artisan must start with empty skills and portfolio")
	}
	if u.Artisan.IsProfileComplete {
		t.Fatal("artisan must start with is_profile_complete false")
	}
}

func TestResolveRetriesOnceOnCreateConflict(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	// Simulate a concurrent winner: the first CreateUser fails with a
	// conflict, and by the time we retry the row exists.
	fs.createUserErr = store.ErrConflict
	fs.createUserHook = func() {
		if _, ok := firstUser(fs); !ok {
			winner := &store.User{
				ID:            "user-race",
				Email:         "a@x.com",
				GoogleID:      "g1",
				Role:          store.RoleCustomer,
				AuthProvider:  store.ProviderOAuthGoogle,
				EmailVerified: true,
			}
			fs.users[winner.ID] = winner
			fs.customers[winner.ID] = true
		}
	}

	u, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if err != nil {
		t.Fatalf("resolve after conflict: %v", err)
	}
	if u.ID != "user-race" {
		t.Fatalf("expected the concurrently created user, got %s", u.ID)
	}
}

func TestResolveSurfacesRepeatedConflict(t *testing.T) {
	fs := newFakeStore()
	r := NewStoreResolver(fs)

	calls := 0
	fs.createUserHook = func() {
		calls++
		fs.createUserErr = store.ErrConflict
	}

	_, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected exactly one retry (2 create attempts), got %d", calls)
	}
}

func TestResolveCompensatesFailedSubProfile(t *testing.T) {
	fs := newFakeStore()
	fs.subProfileErr = errors.New("disk full")
	r := NewStoreResolver(fs)

	_, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
	if len(fs.users) != 0 {
		t.Fatalf("expected compensating delete to remove the user, %d left", len(fs.users))
	}
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	fs := newFakeStore()
	fs.findErr = errors.New("connection refused")
	r := NewStoreResolver(fs)

	_, err := r.Resolve(context.Background(), googleProfile("g1", "a@x.com"), store.RoleCustomer)
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func TestResolveRejectsUnknownProvider(t *testing.T) {
	r := NewStoreResolver(newFakeStore())

	_, err := r.Resolve(context.Background(), &auth.ExternalProfile{
		Provider: "myspace",
		ID:       "m1",
	}, store.RoleCustomer)
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func firstUser(fs *fakeStore) (*store.User, bool) {
	for _, u := range fs.users {
		return u, true
	}
	return nil, false
}
