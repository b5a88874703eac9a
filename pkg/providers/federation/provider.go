// Package federation implements the identity-federation adapter over an
// AWS Cognito identity pool.
package federation

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	ci "github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/anirudhbiyani/idfed/pkg/idfed"
)

// Provider implements idfed.Federation. It is stateless beyond the held
// configuration and client and is safe for concurrent use.
type Provider struct {
	client   Client
	cfg      *idfed.Config
	registry *idfed.ProviderRegistry
	log      *logrus.Entry
}

var _ idfed.Federation = (*Provider)(nil)

// New creates a federation provider over an existing client.
func New(cfg *idfed.Config, client Client, log *logrus.Logger) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{
		client:   client,
		cfg:      cfg,
		registry: idfed.NewProviderRegistry(),
		log:      log.WithField("component", "federation"),
	}, nil
}

// NewFromConfig creates a federation provider with the real SDK client.
func NewFromConfig(ctx context.Context, cfg *idfed.Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := NewSDKClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, client, nil)
}

// Registry exposes the login-provider registry so callers can register
// custom providers.
func (p *Provider) Registry() *idfed.ProviderRegistry {
	return p.registry
}

// BuildLoginMap implements idfed.Federation. No network call is made; an
// unknown provider name fails fast.
func (p *Provider) BuildLoginMap(provider idfed.LoginProvider, proof string) (idfed.LoginMap, error) {
	key, err := p.registry.LoginKey(provider, p.cfg)
	if err != nil {
		return nil, err
	}
	return idfed.LoginMap{key: proof}, nil
}

// AllocateIdentity implements idfed.Federation.
func (p *Provider) AllocateIdentity(ctx context.Context, logins idfed.LoginMap) (idfed.IdentityHandle, error) {
	out, err := p.client.GetId(ctx, &ci.GetIdInput{
		IdentityPoolId: aws.String(p.cfg.IdentityPoolID),
		AccountId:      aws.String(p.cfg.AccountID),
		Logins:         logins,
	})
	if err != nil {
		return "", mapFederationError(err, "get_id")
	}
	return idfed.IdentityHandle(aws.ToString(out.IdentityId)), nil
}

// ExchangeCredentials implements idfed.Federation.
func (p *Provider) ExchangeCredentials(ctx context.Context, handle idfed.IdentityHandle, logins idfed.LoginMap) (*idfed.RawCredentials, error) {
	out, err := p.client.GetCredentialsForIdentity(ctx, &ci.GetCredentialsForIdentityInput{
		IdentityId: aws.String(string(handle)),
		Logins:     logins,
	})
	if err != nil {
		return nil, mapFederationError(err, "get_credentials_for_identity")
	}
	if out.Credentials == nil {
		return nil, idfed.ErrFederation("exchange returned no credentials").
			WithOperation("get_credentials_for_identity").WithResource(string(handle))
	}

	creds := out.Credentials
	expiration := time.Time{}
	if creds.Expiration != nil {
		expiration = *creds.Expiration
	}
	return &idfed.RawCredentials{
		AccessKeyID:  aws.ToString(creds.AccessKeyId),
		SecretKey:    aws.ToString(creds.SecretKey),
		SessionToken: aws.ToString(creds.SessionToken),
		Expiration:   expiration,
	}, nil
}

// OpenIDToken implements idfed.Federation.
func (p *Provider) OpenIDToken(ctx context.Context, handle idfed.IdentityHandle, logins idfed.LoginMap) (string, error) {
	out, err := p.client.GetOpenIdToken(ctx, &ci.GetOpenIdTokenInput{
		IdentityId: aws.String(string(handle)),
		Logins:     logins,
	})
	if err != nil {
		return "", mapFederationError(err, "get_open_id_token")
	}
	return aws.ToString(out.Token), nil
}

// RevokeIdentities implements idfed.Federation. Scalar callers pass one
// handle; it is normalized into the set form before dispatch. The subset
// that could not be revoked is returned; a transport-level failure reports
// the whole input as unrevoked. Never an error: this is best-effort bulk
// cleanup and some handles may already be gone.
func (p *Provider) RevokeIdentities(ctx context.Context, handles ...idfed.IdentityHandle) []idfed.IdentityHandle {
	if len(handles) == 0 {
		return nil
	}

	ids := make([]string, 0, len(handles))
	for _, h := range handles {
		ids = append(ids, string(h))
	}

	out, err := p.client.DeleteIdentities(ctx, &ci.DeleteIdentitiesInput{
		IdentityIdsToDelete: ids,
	})
	if err != nil {
		p.log.WithError(err).Warn("identity revocation suppressed a failure")
		unrevoked := make([]idfed.IdentityHandle, len(handles))
		copy(unrevoked, handles)
		return unrevoked
	}

	var unrevoked []idfed.IdentityHandle
	for _, u := range out.UnprocessedIdentityIds {
		unrevoked = append(unrevoked, idfed.IdentityHandle(aws.ToString(u.IdentityId)))
	}
	if len(unrevoked) > 0 {
		p.log.WithField("count", len(unrevoked)).Warn("some identity handles were not revoked")
	}
	return unrevoked
}

func mapFederationError(err error, op string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return idfed.ErrFederation("federation call rejected: " + apiErr.ErrorCode()).
			WithOperation(op).WithCause(err)
	}
	return idfed.ErrFederation("federation transport failure").
		WithOperation(op).WithCause(err)
}
