// Package directory implements the user-directory adapter over an AWS
// Cognito user pool.
package directory

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ciptypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/anirudhbiyani/idfed/pkg/idfed"
)

// Provider implements idfed.Directory. It is stateless beyond the held
// configuration and client and is safe for concurrent use.
type Provider struct {
	client Client
	cfg    *idfed.Config
	log    *logrus.Entry
}

var _ idfed.Directory = (*Provider)(nil)

// New creates a directory provider over an existing client.
func New(cfg *idfed.Config, client Client, log *logrus.Logger) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Provider{
		client: client,
		cfg:    cfg,
		log:    log.WithField("component", "directory"),
	}, nil
}

// NewFromConfig creates a directory provider with the real SDK client.
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

// SignUp implements idfed.Directory.
func (p *Provider) SignUp(ctx context.Context, username, password string, attributes map[string]string) (*idfed.UserRecord, error) {
	out, err := p.client.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(p.cfg.ClientID),
		Username:       aws.String(username),
		Password:       aws.String(password),
		UserAttributes: toAttributes(attributes),
	})
	if err != nil {
		return nil, mapSignUpError(err, username)
	}

	status := string(ciptypes.UserStatusTypeUnconfirmed)
	if out.UserConfirmed {
		status = string(ciptypes.UserStatusTypeConfirmed)
	}
	return &idfed.UserRecord{
		Username:   username,
		Status:     status,
		Enabled:    true,
		Attributes: attributes,
	}, nil
}

// ConfirmSignUp implements idfed.Directory.
func (p *Provider) ConfirmSignUp(ctx context.Context, username, code string) error {
	_, err := p.client.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(p.cfg.ClientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return mapConfirmError(err, username)
	}
	return nil
}

// AdminConfirmSignUp implements idfed.Directory.
func (p *Provider) AdminConfirmSignUp(ctx context.Context, username string) error {
	_, err := p.client.AdminConfirmSignUp(ctx, &cip.AdminConfirmSignUpInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return mapConfirmError(err, username)
	}
	return nil
}

// Lookup implements idfed.Directory. A missing user is reported through the
// exists flag, never as an error.
func (p *Provider) Lookup(ctx context.Context, username string) (*idfed.UserRecord, bool, error) {
	out, err := p.client.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		if isUserNotFound(err) {
			return nil, false, nil
		}
		return nil, false, idfed.ErrDirectory("user lookup failed").
			WithOperation("admin_get_user").WithResource(username).WithCause(err)
	}

	return &idfed.UserRecord{
		Username:   aws.ToString(out.Username),
		Status:     string(out.UserStatus),
		Enabled:    out.Enabled,
		Attributes: fromAttributes(out.UserAttributes),
		Created:    toTime(out.UserCreateDate),
		Modified:   toTime(out.UserLastModifiedDate),
	}, true, nil
}

// ValidateCredentials implements idfed.Directory.
func (p *Provider) ValidateCredentials(ctx context.Context, flow idfed.AuthFlow, params map[string]string) (*idfed.AuthResult, error) {
	out, err := p.client.AdminInitiateAuth(ctx, &cip.AdminInitiateAuthInput{
		UserPoolId:     aws.String(p.cfg.UserPoolID),
		ClientId:       aws.String(p.cfg.ClientID),
		AuthFlow:       ciptypes.AuthFlowType(flow),
		AuthParameters: params,
	})
	if err != nil {
		return nil, mapAuthError(err, "admin_initiate_auth")
	}
	if out.AuthenticationResult == nil {
		// The pool answered with a challenge instead of tokens.
		return nil, idfed.ErrAuthentication("authentication challenge not satisfied: " + string(out.ChallengeName)).
			WithOperation("admin_initiate_auth")
	}

	res := out.AuthenticationResult
	return &idfed.AuthResult{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		TokenType:    aws.ToString(res.TokenType),
		ExpiresIn:    res.ExpiresIn,
	}, nil
}

// Disable implements idfed.Directory. No-op when the user does not exist.
func (p *Provider) Disable(ctx context.Context, username string) error {
	_, exists, err := p.Lookup(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	_, err = p.client.AdminDisableUser(ctx, &cip.AdminDisableUserInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return idfed.ErrDirectory("failed to disable user").
			WithOperation("admin_disable_user").WithResource(username).WithCause(err)
	}
	return nil
}

// Delete implements idfed.Directory. No-op when the user does not exist.
func (p *Provider) Delete(ctx context.Context, username string) error {
	_, exists, err := p.Lookup(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	_, err = p.client.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return idfed.ErrDirectory("failed to delete user").
			WithOperation("admin_delete_user").WithResource(username).WithCause(err)
	}
	return nil
}

// CompensateDelete implements idfed.Directory. Rollback must not fail the
// caller's error path, so any fault here is logged and suppressed.
func (p *Provider) CompensateDelete(ctx context.Context, username string) {
	_, err := p.client.AdminDeleteUser(ctx, &cip.AdminDeleteUserInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
	})
	if err != nil && !isUserNotFound(err) {
		p.log.WithField("username", username).WithError(err).
			Warn("compensating delete suppressed a failure")
	}
}

// ForgotPassword implements idfed.Directory.
func (p *Provider) ForgotPassword(ctx context.Context, username string) error {
	_, err := p.client.ForgotPassword(ctx, &cip.ForgotPasswordInput{
		ClientId: aws.String(p.cfg.ClientID),
		Username: aws.String(username),
	})
	if err != nil {
		return idfed.ErrDirectory("failed to start password reset").
			WithOperation("forgot_password").WithResource(username).WithCause(err)
	}
	return nil
}

// ConfirmForgotPassword implements idfed.Directory.
func (p *Provider) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	_, err := p.client.ConfirmForgotPassword(ctx, &cip.ConfirmForgotPasswordInput{
		ClientId:         aws.String(p.cfg.ClientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		Password:         aws.String(newPassword),
	})
	if err != nil {
		return mapConfirmError(err, username)
	}
	return nil
}

// ChangePassword implements idfed.Directory.
func (p *Provider) ChangePassword(ctx context.Context, previous, proposed, accessToken string) error {
	_, err := p.client.ChangePassword(ctx, &cip.ChangePasswordInput{
		PreviousPassword: aws.String(previous),
		ProposedPassword: aws.String(proposed),
		AccessToken:      aws.String(accessToken),
	})
	if err != nil {
		return mapAuthError(err, "change_password")
	}
	return nil
}

// UpdateUserAttribute implements idfed.Directory.
func (p *Provider) UpdateUserAttribute(ctx context.Context, username, key, value string) error {
	_, err := p.client.AdminUpdateUserAttributes(ctx, &cip.AdminUpdateUserAttributesInput{
		UserPoolId: aws.String(p.cfg.UserPoolID),
		Username:   aws.String(username),
		UserAttributes: []ciptypes.AttributeType{
			{Name: aws.String(key), Value: aws.String(value)},
		},
	})
	if err != nil {
		return idfed.ErrDirectory("failed to update user attribute").
			WithOperation("admin_update_user_attributes").WithResource(username).WithCause(err)
	}
	return nil
}

// GetUser implements idfed.Directory.
func (p *Provider) GetUser(ctx context.Context, accessToken string) (*idfed.UserRecord, error) {
	out, err := p.client.GetUser(ctx, &cip.GetUserInput{
		AccessToken: aws.String(accessToken),
	})
	if err != nil {
		return nil, mapAuthError(err, "get_user")
	}
	return &idfed.UserRecord{
		Username:   aws.ToString(out.Username),
		Enabled:    true,
		Attributes: fromAttributes(out.UserAttributes),
	}, nil
}

// Error mapping

func mapSignUpError(err error, username string) error {
	var exists *ciptypes.UsernameExistsException
	if errors.As(err, &exists) {
		return idfed.ErrDirectory("username already exists").
			WithOperation("sign_up").WithResource(username).WithCause(err)
	}
	var weak *ciptypes.InvalidPasswordException
	if errors.As(err, &weak) {
		return idfed.ErrDirectory("password rejected by pool policy").
			WithOperation("sign_up").WithResource(username).WithCause(err)
	}
	return idfed.ErrDirectory("sign-up failed").
		WithOperation("sign_up").WithResource(username).WithCause(err)
}

func mapConfirmError(err error, username string) error {
	var mismatch *ciptypes.CodeMismatchException
	var expired *ciptypes.ExpiredCodeException
	if errors.As(err, &mismatch) || errors.As(err, &expired) {
		return idfed.ErrConfirmation("confirmation code rejected").
			WithOperation("confirm_sign_up").WithResource(username).WithCause(err)
	}
	var notFound *ciptypes.UserNotFoundException
	if errors.As(err, &notFound) {
		return idfed.ErrNotFound(username).WithOperation("confirm_sign_up").WithCause(err)
	}
	var notAuth *ciptypes.NotAuthorizedException
	if errors.As(err, &notAuth) {
		// Confirming an already-confirmed user lands here.
		return idfed.ErrConfirmation("confirmation not allowed").
			WithOperation("confirm_sign_up").WithResource(username).WithCause(err)
	}
	return idfed.ErrDirectory("confirmation failed").
		WithOperation("confirm_sign_up").WithResource(username).WithCause(err)
}

func mapAuthError(err error, op string) error {
	var notAuth *ciptypes.NotAuthorizedException
	var unconfirmed *ciptypes.UserNotConfirmedException
	var notFound *ciptypes.UserNotFoundException
	if errors.As(err, &notAuth) || errors.As(err, &unconfirmed) || errors.As(err, &notFound) {
		return idfed.ErrAuthentication("credentials rejected").
			WithOperation(op).WithCause(err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return idfed.ErrDirectory("directory call failed: " + apiErr.ErrorCode()).
			WithOperation(op).WithCause(err)
	}
	return idfed.ErrDirectory("directory transport failure").
		WithOperation(op).WithCause(err)
}

func isUserNotFound(err error) bool {
	var notFound *ciptypes.UserNotFoundException
	return errors.As(err, &notFound)
}

func toAttributes(attributes map[string]string) []ciptypes.AttributeType {
	out := make([]ciptypes.AttributeType, 0, len(attributes))
	for name, value := range attributes {
		out = append(out, ciptypes.AttributeType{
			Name:  aws.String(name),
			Value: aws.String(value),
		})
	}
	return out
}

func fromAttributes(attrs []ciptypes.AttributeType) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[aws.ToString(a.Name)] = aws.ToString(a.Value)
	}
	return out
}

func toTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
