package idfed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFederation struct {
	buildErr    error
	allocErr    error
	exchangeErr error

	identity  IdentityHandle
	raw       *RawCredentials
	unrevoked []IdentityHandle

	buildCalls    int
	allocCalls    int
	exchangeCalls int
	revokeCalls   int
	lastLogins    LoginMap
}

func (f *fakeFederation) BuildLoginMap(provider LoginProvider, proof string) (LoginMap, error) {
	f.buildCalls++
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	if provider == ProviderCognito {
		return LoginMap{"cognito-idp.ap-northeast-1.amazonaws.com/pool": proof}, nil
	}
	return nil, ErrUnknownProvider(string(provider))
}

func (f *fakeFederation) AllocateIdentity(ctx context.Context, logins LoginMap) (IdentityHandle, error) {
	f.allocCalls++
	f.lastLogins = logins
	if f.allocErr != nil {
		return "", f.allocErr
	}
	return f.identity, nil
}

func (f *fakeFederation) ExchangeCredentials(ctx context.Context, handle IdentityHandle, logins LoginMap) (*RawCredentials, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.raw, nil
}

func (f *fakeFederation) OpenIDToken(ctx context.Context, handle IdentityHandle, logins LoginMap) (string, error) {
	return "oidc-token", nil
}

func (f *fakeFederation) RevokeIdentities(ctx context.Context, handles ...IdentityHandle) []IdentityHandle {
	f.revokeCalls++
	return f.unrevoked
}

func validRaw() *RawCredentials {
	return &RawCredentials{
		AccessKeyID:  "ASIAEXAMPLE",
		SecretKey:    "secret",
		SessionToken: "token",
		Expiration:   time.Now().Add(time.Hour),
	}
}

func TestSession_AuthenticateThenEstablish(t *testing.T) {
	fed := &fakeFederation{identity: "ap-northeast-1:abc-123", raw: validRaw()}
	s := NewSession(fed)

	start := time.Now()
	require.NoError(t, s.Authenticate(context.Background(), ProviderCognito, "id-token"))
	assert.Equal(t, StateAuthenticated, s.State())
	assert.True(t, s.Authenticated())
	assert.Equal(t, IdentityHandle("ap-northeast-1:abc-123"), s.Identity())

	creds, err := s.EstablishSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, StateActive, s.State())
	assert.True(t, s.Active())
	assert.NotEmpty(t, creds.AccessKeyID)
	assert.NotEmpty(t, creds.SessionToken)
	assert.True(t, creds.Expiration.After(start), "expiration must be strictly in the future")
}

func TestSession_EstablishBeforeAuthenticateFailsLocally(t *testing.T) {
	fed := &fakeFederation{identity: "id", raw: validRaw()}
	s := NewSession(fed)

	creds, err := s.EstablishSession(context.Background())
	require.Error(t, err)
	assert.Nil(t, creds)
	assert.True(t, IsKind(err, KindFederation))
	assert.Zero(t, fed.exchangeCalls, "precondition check must not contact the remote service")
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestSession_AuthenticateFailureLeavesSessionClean(t *testing.T) {
	fed := &fakeFederation{allocErr: ErrFederation("invalid login proof")}
	s := NewSession(fed)

	err := s.Authenticate(context.Background(), ProviderCognito, "bad-token")
	require.Error(t, err)
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Identity())

	// No partial login map retained: establish still fails locally.
	_, err = s.EstablishSession(context.Background())
	require.Error(t, err)
	assert.Zero(t, fed.exchangeCalls)
}

func TestSession_UnknownProviderFailsFast(t *testing.T) {
	fed := &fakeFederation{identity: "id", raw: validRaw()}
	s := NewSession(fed)

	err := s.Authenticate(context.Background(), LoginProvider("Twitter"), "proof")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnknownProvider))
	assert.Zero(t, fed.allocCalls, "no network call for an unknown provider")
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestSession_ExchangeFailureFallsBackToAuthenticated(t *testing.T) {
	fed := &fakeFederation{identity: "id-1", raw: validRaw()}
	s := NewSession(fed)
	require.NoError(t, s.Authenticate(context.Background(), ProviderCognito, "id-token"))

	fed.exchangeErr = ErrFederation("exchange rejected")
	creds, err := s.EstablishSession(context.Background())
	require.Error(t, err)
	assert.Nil(t, creds)
	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, IdentityHandle("id-1"), s.Identity(), "identity handle retained for retry")
	assert.Nil(t, s.Credentials())

	// Retry without re-authenticating succeeds.
	fed.exchangeErr = nil
	creds, err = s.EstablishSession(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, creds)
	assert.True(t, s.Active())
}

func TestSession_RevokeRewindsState(t *testing.T) {
	fed := &fakeFederation{identity: "id-1", raw: validRaw()}
	s := NewSession(fed)
	require.NoError(t, s.Authenticate(context.Background(), ProviderCognito, "id-token"))
	_, err := s.EstablishSession(context.Background())
	require.NoError(t, err)

	s.Revoke(context.Background())
	assert.Equal(t, 1, fed.revokeCalls)
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Empty(t, s.Identity())
	assert.Nil(t, s.Credentials())
}

func TestSession_RegionDefault(t *testing.T) {
	s := NewSession(&fakeFederation{})
	assert.Equal(t, DefaultRegion, s.Region())

	s = NewSession(&fakeFederation{}, WithRegion("us-west-2"))
	assert.Equal(t, "us-west-2", s.Region())

	s = NewSession(&fakeFederation{}, WithRegion(""))
	assert.Equal(t, DefaultRegion, s.Region(), "empty region keeps the fallback")
}

func TestSessionCredentials_Expired(t *testing.T) {
	live := &SessionCredentials{Expiration: time.Now().Add(time.Minute)}
	assert.False(t, live.Expired())

	dead := &SessionCredentials{Expiration: time.Now().Add(-time.Minute)}
	assert.True(t, dead.Expired())
}

func TestSessionCredentials_StringRedactsSecrets(t *testing.T) {
	c := &SessionCredentials{
		AccessKeyID:  "AKIA123",
		SecretKey:    "supersecret",
		SessionToken: "supertoken",
		Expiration:   time.Now(),
	}
	s := c.String()
	assert.Contains(t, s, "AKIA123")
	assert.NotContains(t, s, "supersecret")
	assert.NotContains(t, s, "supertoken")
}
