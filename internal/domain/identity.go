package domain

import (
	"context"
	"strings"
	"time"
)

// Identity is the authenticated user as reported by the identity provider.
// swagger:model Identity
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewIdentity returns an Identity with a trimmed name and a normalized (lower-case) email.
func NewIdentity(name, email string) Identity {
	return Identity{
		Name:  strings.TrimSpace(name),
		Email: strings.ToLower(strings.TrimSpace(email)),
	}
}

// IsHost reports whether the identity is the configured host. An empty hostEmail matches nobody.
func (i Identity) IsHost(hostEmail string) bool {
	hostEmail = strings.TrimSpace(hostEmail)
	return hostEmail != "" && strings.EqualFold(i.Email, hostEmail)
}

// IdentityProvider runs the external OAuth sign-in flow.
type IdentityProvider interface {
	// AuthCodeURL returns the provider URL the browser is sent to for sign-in.
	AuthCodeURL(state string) string
	// Exchange trades the callback code for the signed-in identity.
	Exchange(ctx context.Context, code string) (*Identity, error)
}

// TokenIssuer issues session tokens (e.g. JWT) for a signed-in identity.
type TokenIssuer interface {
	Issue(identity Identity, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

// CountryDetector resolves the ISO country of a client IP, used as the default phone region.
type CountryDetector interface {
	Detect(ctx context.Context, ip string) (string, error)
}
