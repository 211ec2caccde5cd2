// Package identity signs the learner in against an OpenID Connect provider
// and hands out access tokens for the learning platform API.
package identity

import (
	"context"
	"errors"
)

// Account is the signed-in learner as described by the ID token.
type Account struct {
	// ID is the directory object id (oid), or the subject when the
	// provider issues no oid. The platform API keys learner data by it.
	ID       string
	Name     string
	Username string
	TenantID string
}

// DisplayName prefers the human name over the login name.
func (a Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Username
}

var (
	// ErrInteractionRequired means no token can be obtained without the
	// learner signing in again.
	ErrInteractionRequired = errors.New("identity: interaction required")

	// ErrNoAccount means no account is active.
	ErrNoAccount = errors.New("identity: no signed-in account")
)

// Session is the identity contract the rest of the app depends on.
type Session interface {
	// Resolve settles any pending redirect response and picks the active
	// account. It does its work once; later calls return the first outcome.
	Resolve(ctx context.Context) (Account, error)

	ActiveAccount() (Account, bool)

	// SignIn runs the interactive authorization-code flow and blocks until
	// the browser returns to the redirect URI or ctx ends.
	SignIn(ctx context.Context) (Account, error)

	// SignOut forgets the account and its tokens and ends the provider
	// session in the browser.
	SignOut(ctx context.Context) error

	// AcquireTokenSilent returns an access token for scopes without user
	// interaction, or an error wrapping ErrInteractionRequired.
	AcquireTokenSilent(ctx context.Context, scopes []string) (string, error)
}
