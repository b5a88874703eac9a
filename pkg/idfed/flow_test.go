package idfed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end flow over fakes: provision, validate credentials, federate,
// establish a session.
func TestProvisionLoginEstablishFlow(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	fed := &fakeFederation{
		identity: "ap-northeast-1:alice-identity",
		raw: &RawCredentials{
			AccessKeyID:  "ASIAFLOW",
			SecretKey:    "secret",
			SessionToken: "session-token",
			Expiration:   time.Now().Add(time.Hour),
		},
	}

	saga := NewSaga(dir)
	user, err := saga.Provision(ctx, "alice", "Str0ng!Pass", map[string]string{"email": "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	auth, err := dir.ValidateCredentials(ctx, FlowUserPassword, PasswordParams("alice", "Str0ng!Pass"))
	require.NoError(t, err)
	require.NotEmpty(t, auth.IDToken)

	session := NewSession(fed)
	require.NoError(t, session.Authenticate(ctx, ProviderCognito, auth.IDToken))
	assert.True(t, session.Authenticated())

	creds, err := session.EstablishSession(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, creds.AccessKeyID)
	assert.NotEmpty(t, creds.SessionToken)
	assert.False(t, creds.Expired())
}
