package idfed

import (
	"os"
)

// DefaultRegion is used when no region is configured. Session establishment
// never fails purely for lack of region configuration.
const DefaultRegion = "ap-northeast-1"

// Config holds the settings the adapters need to reach the user directory
// and identity federation services. It is resolved once, injected at
// adapter construction, and validated eagerly.
type Config struct {
	// Region is the service region. Defaults to DefaultRegion.
	Region string

	// UserPoolID identifies the user directory pool.
	UserPoolID string

	// ClientID is the app client registered with the user pool.
	ClientID string

	// IdentityPoolID identifies the identity federation pool.
	IdentityPoolID string

	// AccountID is the account owning the identity pool.
	AccountID string

	// AccessKeyID and SecretAccessKey authenticate the adapters themselves
	// to the remote services. SecretAccessKey is sensitive.
	AccessKeyID     string
	SecretAccessKey string
}

// LoadConfig resolves configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Region:          getEnv("IDFED_REGION", getEnv("Region", DefaultRegion)),
		UserPoolID:      getEnv("IDFED_USER_POOL_ID", os.Getenv("UserPoolId")),
		ClientID:        getEnv("IDFED_CLIENT_ID", os.Getenv("ClientId")),
		IdentityPoolID:  getEnv("IDFED_IDENTITY_POOL_ID", os.Getenv("IdentityPoolId")),
		AccountID:       getEnv("IDFED_ACCOUNT_ID", os.Getenv("AccountId")),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and applies the region fallback.
// A missing required setting is a construction-time fatal error, not a
// per-call error.
func (c *Config) Validate() error {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	required := []struct {
		name  string
		value string
	}{
		{"user pool id", c.UserPoolID},
		{"client id", c.ClientID},
		{"identity pool id", c.IdentityPoolID},
		{"account id", c.AccountID},
	}
	for _, r := range required {
		if r.value == "" {
			return ErrConfiguration("missing required setting: " + r.name)
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
