package federation

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	ci "github.com/aws/aws-sdk-go-v2/service/cognitoidentity"

	"github.com/anirudhbiyani/idfed/pkg/idfed"
)

// Client is the subset of the identity pool API the adapter uses. The real
// *cognitoidentity.Client satisfies it; tests substitute fakes.
type Client interface {
	GetId(ctx context.Context, params *ci.GetIdInput, optFns ...func(*ci.Options)) (*ci.GetIdOutput, error)
	GetOpenIdToken(ctx context.Context, params *ci.GetOpenIdTokenInput, optFns ...func(*ci.Options)) (*ci.GetOpenIdTokenOutput, error)
	GetCredentialsForIdentity(ctx context.Context, params *ci.GetCredentialsForIdentityInput, optFns ...func(*ci.Options)) (*ci.GetCredentialsForIdentityOutput, error)
	DeleteIdentities(ctx context.Context, params *ci.DeleteIdentitiesInput, optFns ...func(*ci.Options)) (*ci.DeleteIdentitiesOutput, error)
}

// NewSDKClient builds the real identity pool client from the injected
// configuration, using static credentials when the config carries them.
func NewSDKClient(ctx context.Context, cfg *idfed.Config) (*ci.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, idfed.ErrConfiguration("failed to load client config").WithCause(err)
	}

	return ci.NewFromConfig(awsCfg), nil
}
