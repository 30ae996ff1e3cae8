package auth

// ExternalProfile is the normalized account profile returned by an
// identity provider after token exchange. It contains facts only,
// no decisions.
type ExternalProfile struct {
	Provider string // e.g. "google"
	ID       string // provider-scoped unique user identifier (sub)
	Email    string // email asserted by the provider, may be empty
	Name     string // display name
	Picture  string // avatar URL, may be empty
}
