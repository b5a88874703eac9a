package idfed

import (
	"time"
)

// LoginProvider identifies a federation login provider.
type LoginProvider string

const (
	// ProviderCognito is the internal user pool.
	ProviderCognito LoginProvider = "Cognito"
	// ProviderFacebook is Facebook social login.
	ProviderFacebook LoginProvider = "Facebook"
	// ProviderGoogle is Google social login.
	ProviderGoogle LoginProvider = "Google"
	// ProviderLoginWithAmazon is Login with Amazon.
	ProviderLoginWithAmazon LoginProvider = "LoginWithAmazon"
)

// LoginMap maps a federation-service login key to a proof token for one
// authentication attempt. It is built fresh per attempt and never persisted.
type LoginMap map[string]string

// IdentityHandle is the opaque principal identifier issued by the identity
// federation service. Immutable once assigned to a session.
type IdentityHandle string

// RawCredentials is the flat credential material returned by the federation
// service's credential exchange, before the session wraps it.
type RawCredentials struct {
	AccessKeyID  string
	SecretKey    string
	SessionToken string
	Expiration   time.Time
}

// SessionCredentials holds temporary access credentials scoped to one
// federated principal. SecretKey and SessionToken are sensitive and must
// never be logged.
type SessionCredentials struct {
	AccessKeyID  string
	SecretKey    string
	SessionToken string
	Expiration   time.Time
}

// Expired reports whether the credentials are past their expiration.
func (c *SessionCredentials) Expired() bool {
	return !time.Now().Before(c.Expiration)
}

// String implements fmt.Stringer with secret material redacted.
func (c *SessionCredentials) String() string {
	return "SessionCredentials{AccessKeyID: " + c.AccessKeyID +
		", SecretKey: [redacted], SessionToken: [redacted], Expiration: " +
		c.Expiration.Format(time.RFC3339) + "}"
}

// AuthResult is the outcome of a successful directory authentication call.
type AuthResult struct {
	// AccessToken authorizes user-scoped directory calls.
	AccessToken string
	// IDToken is the identity proof consumed by federation.
	IDToken string
	// RefreshToken can run the refresh flow.
	RefreshToken string
	// TokenType is the token type (e.g. "Bearer").
	TokenType string
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int32
}

// AuthFlow names a directory authentication flow.
type AuthFlow string

const (
	// FlowUserPassword authenticates with USERNAME and PASSWORD parameters.
	FlowUserPassword AuthFlow = "ADMIN_USER_PASSWORD_AUTH"
	// FlowRefreshToken re-authenticates with a REFRESH_TOKEN parameter.
	FlowRefreshToken AuthFlow = "REFRESH_TOKEN_AUTH"
)

// PasswordParams builds the parameter map for FlowUserPassword.
func PasswordParams(username, password string) map[string]string {
	return map[string]string{"USERNAME": username, "PASSWORD": password}
}

// RefreshParams builds the parameter map for FlowRefreshToken.
func RefreshParams(refreshToken string) map[string]string {
	return map[string]string{"REFRESH_TOKEN": refreshToken}
}

// UserRecord is a directory user as seen by admin lookup.
type UserRecord struct {
	Username   string
	Status     string
	Enabled    bool
	Attributes map[string]string
	Created    time.Time
	Modified   time.Time
}

// SessionState is the position of a Session in its lifecycle.
type SessionState string

const (
	// StateUnauthenticated is the initial state; no identity handle held.
	StateUnauthenticated SessionState = "unauthenticated"
	// StateAuthenticated means an identity handle has been allocated.
	StateAuthenticated SessionState = "authenticated"
	// StateActive means live session credentials are held.
	StateActive SessionState = "active"
)
