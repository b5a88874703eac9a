package idfed

import (
	"context"
)

// Directory is the user-directory adapter contract: a thin, typed facade
// over user lifecycle operations. Implementations are stateless beyond held
// configuration and are safe for concurrent use.
type Directory interface {
	// SignUp registers a new user. Fails with a directory error on a
	// duplicate username, a rejected password, or a transport fault.
	SignUp(ctx context.Context, username, password string, attributes map[string]string) (*UserRecord, error)

	// ConfirmSignUp confirms a pending user with a user-entered code.
	// A reused or expired code fails with a confirmation error.
	ConfirmSignUp(ctx context.Context, username, code string) error

	// AdminConfirmSignUp confirms a pending user without a code.
	AdminConfirmSignUp(ctx context.Context, username string) error

	// Lookup fetches a user record. A missing user is reported through the
	// exists flag, not an error, so callers can branch without fault
	// handling.
	Lookup(ctx context.Context, username string) (*UserRecord, bool, error)

	// ValidateCredentials runs an authentication flow. On success the result
	// carries at least an access token. Invalid credentials, an unconfirmed
	// user, or a disabled account fail with an authentication error.
	ValidateCredentials(ctx context.Context, flow AuthFlow, params map[string]string) (*AuthResult, error)

	// Disable and Delete mutate directory state; both are no-ops when the
	// user does not exist.
	Disable(ctx context.Context, username string) error
	Delete(ctx context.Context, username string) error

	// CompensateDelete removes a partially provisioned user during rollback.
	// Best-effort: its own failures are suppressed so the outer saga can
	// continue unwinding.
	CompensateDelete(ctx context.Context, username string)

	// ForgotPassword starts the password-reset flow.
	ForgotPassword(ctx context.Context, username string) error

	// ConfirmForgotPassword completes the password-reset flow.
	ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error

	// ChangePassword rotates the password of an authenticated user.
	ChangePassword(ctx context.Context, previous, proposed, accessToken string) error

	// UpdateUserAttribute sets a single attribute on a user.
	UpdateUserAttribute(ctx context.Context, username, key, value string) error

	// GetUser fetches the user behind an access token.
	GetUser(ctx context.Context, accessToken string) (*UserRecord, error)
}

// Federation is the identity-federation adapter contract: it converts
// validated login proofs into an identity handle and then into temporary
// credentials. Implementations are safe for concurrent use.
type Federation interface {
	// BuildLoginMap maps a provider name to its namespaced login key and
	// associates the proof. Fails with unknown_provider for names outside
	// the configured set; no network call is made.
	BuildLoginMap(provider LoginProvider, proof string) (LoginMap, error)

	// AllocateIdentity exchanges a login map for an identity handle.
	AllocateIdentity(ctx context.Context, logins LoginMap) (IdentityHandle, error)

	// ExchangeCredentials exchanges an identity handle plus login proof for
	// raw temporary credential material.
	ExchangeCredentials(ctx context.Context, handle IdentityHandle, logins LoginMap) (*RawCredentials, error)

	// OpenIDToken returns an OpenID Connect token for the identity handle.
	OpenIDToken(ctx context.Context, handle IdentityHandle, logins LoginMap) (string, error)

	// RevokeIdentities deletes identity handles best-effort and returns the
	// subset that could not be revoked. Partial failure is reported through
	// the return value, never as an error.
	RevokeIdentities(ctx context.Context, handles ...IdentityHandle) []IdentityHandle
}
