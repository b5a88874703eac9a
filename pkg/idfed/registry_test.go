package idfed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRegistry_LoginKeys(t *testing.T) {
	cfg := validConfig()
	r := NewProviderRegistry()

	cases := []struct {
		provider LoginProvider
		want     string
	}{
		{ProviderCognito, "cognito-idp.ap-northeast-1.amazonaws.com/ap-northeast-1_POOL"},
		{ProviderFacebook, "graph.facebook.com"},
		{ProviderGoogle, "accounts.google.com"},
		{ProviderLoginWithAmazon, "www.amazon.com"},
	}
	for _, tc := range cases {
		t.Run(string(tc.provider), func(t *testing.T) {
			key, err := r.LoginKey(tc.provider, cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, key)
		})
	}
}

func TestProviderRegistry_UnknownProvider(t *testing.T) {
	r := NewProviderRegistry()
	_, err := r.LoginKey("Twitter", validConfig())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnknownProvider))
}

func TestProviderRegistry_RegisterCustom(t *testing.T) {
	r := NewProviderRegistry()
	r.Register("Corporate", func(*Config) string { return "login.corp.example.com" })

	key, err := r.LoginKey("Corporate", validConfig())
	require.NoError(t, err)
	assert.Equal(t, "login.corp.example.com", key)
	assert.Contains(t, r.Names(), LoginProvider("Corporate"))
}
