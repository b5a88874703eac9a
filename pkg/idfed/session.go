package idfed

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Session drives the authenticate -> federate -> establish-session sequence
// for one user flow. It holds the mutable per-user federation state: login
// map, identity handle, region, and active credentials.
//
// A Session is a single-user, single-flow object. It is not safe for
// concurrent use; callers running concurrent authentications must create
// one Session per in-flight flow. State moves strictly forward and is only
// rewound by re-authenticating from scratch (or by Revoke).
type Session struct {
	federation Federation
	region     string
	log        *logrus.Entry

	state    SessionState
	loginMap LoginMap
	identity IdentityHandle
	creds    *SessionCredentials
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithRegion overrides the session region.
func WithRegion(region string) SessionOption {
	return func(s *Session) {
		if region != "" {
			s.region = region
		}
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(log *logrus.Logger) SessionOption {
	return func(s *Session) {
		s.log = log.WithField("component", "session")
	}
}

// NewSession creates an unauthenticated session over the given federation
// adapter. The region falls back to DefaultRegion when not configured.
func NewSession(federation Federation, opts ...SessionOption) *Session {
	s := &Session{
		federation: federation,
		region:     DefaultRegion,
		state:      StateUnauthenticated,
		log:        logrus.StandardLogger().WithField("component", "session"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate builds the login map for the provider and allocates an
// identity handle. On any failure the session remains unauthenticated and
// no partial login map is retained. The returned error is typed;
// Authenticated is the boolean convenience check.
func (s *Session) Authenticate(ctx context.Context, provider LoginProvider, proof string) error {
	logins, err := s.federation.BuildLoginMap(provider, proof)
	if err != nil {
		return err
	}

	identity, err := s.federation.AllocateIdentity(ctx, logins)
	if err != nil {
		// Discard the constructed login map; the session stays clean.
		return err
	}

	s.loginMap = logins
	s.identity = identity
	s.creds = nil
	s.state = StateAuthenticated

	s.log.WithFields(logrus.Fields{
		"provider": provider,
		"identity": identity,
	}).Debug("authenticated")
	return nil
}

// EstablishSession exchanges the held identity handle and login proof for
// session credentials. The precondition (identity handle, login map, and
// region all present) is checked locally and fails fast without contacting
// any remote service; calling this on a never-authenticated session is a
// caller bug.
//
// If the exchange itself fails the session falls back to authenticated,
// keeping the identity handle so the caller may retry without
// re-authenticating.
func (s *Session) EstablishSession(ctx context.Context) (*SessionCredentials, error) {
	if s.identity == "" || len(s.loginMap) == 0 || s.region == "" {
		return nil, ErrFederation("session not authenticated").
			WithOperation("establish_session")
	}

	raw, err := s.federation.ExchangeCredentials(ctx, s.identity, s.loginMap)
	if err != nil {
		s.creds = nil
		s.state = StateAuthenticated
		return nil, err
	}

	s.creds = &SessionCredentials{
		AccessKeyID:  raw.AccessKeyID,
		SecretKey:    raw.SecretKey,
		SessionToken: raw.SessionToken,
		Expiration:   raw.Expiration,
	}
	s.state = StateActive

	s.log.WithFields(logrus.Fields{
		"identity":   s.identity,
		"expiration": s.creds.Expiration,
	}).Debug("session established")
	return s.creds, nil
}

// Revoke deletes the session's identity handle best-effort and rewinds the
// session to unauthenticated. Safe to call in any state.
func (s *Session) Revoke(ctx context.Context) {
	if s.identity != "" {
		if unrevoked := s.federation.RevokeIdentities(ctx, s.identity); len(unrevoked) > 0 {
			s.log.WithField("identity", s.identity).Warn("identity handle not revoked")
		}
	}
	s.loginMap = nil
	s.identity = ""
	s.creds = nil
	s.state = StateUnauthenticated
}

// State returns the session state.
func (s *Session) State() SessionState {
	return s.state
}

// Authenticated reports whether an identity handle is held.
func (s *Session) Authenticated() bool {
	return s.state == StateAuthenticated || s.state == StateActive
}

// Active reports whether unexpired session credentials are held.
func (s *Session) Active() bool {
	return s.state == StateActive && s.creds != nil && !s.creds.Expired()
}

// Identity returns the held identity handle, if any.
func (s *Session) Identity() IdentityHandle {
	return s.identity
}

// Credentials returns the held session credentials, or nil. Expired
// credentials are not refreshed; the caller re-runs the federation
// sequence.
func (s *Session) Credentials() *SessionCredentials {
	return s.creds
}

// Region returns the session region.
func (s *Session) Region() string {
	return s.region
}
