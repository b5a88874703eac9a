// Package main is the entry point for the idfed CLI.
//
// The CLI drives the federation flows end to end: provision a user,
// confirm it, exchange a login for short-lived session credentials, and
// run the password maintenance flows.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/anirudhbiyani/idfed/pkg/idfed"
	"github.com/anirudhbiyani/idfed/pkg/providers/directory"
	"github.com/anirudhbiyani/idfed/pkg/providers/federation"
)

const exitError = 1

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "signup":
		return cmdSignup(ctx, cmdArgs)
	case "confirm":
		return cmdConfirm(ctx, cmdArgs)
	case "login":
		return cmdLogin(ctx, cmdArgs)
	case "whoami":
		return cmdWhoami(ctx, cmdArgs)
	case "forgot-password":
		return cmdForgotPassword(ctx, cmdArgs)
	case "reset-password":
		return cmdResetPassword(ctx, cmdArgs)
	case "change-password":
		return cmdChangePassword(ctx, cmdArgs)
	case "revoke":
		return cmdRevoke(ctx, cmdArgs)
	case "providers":
		return cmdProviders()
	case "version":
		fmt.Printf("idfed %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func printUsage() {
	fmt.Println(`idfed - Federated identity exchange and user provisioning

Usage:
  idfed <command> [options]

Commands:
  signup           Provision a user (sign-up with compensating rollback)
  confirm          Confirm a pending user with a confirmation code
  login            Authenticate and establish a federated session
  whoami           Show the user behind an access token
  forgot-password  Start the password-reset flow
  reset-password   Complete the password-reset flow
  change-password  Rotate the password of an authenticated user
  revoke           Delete identity handles (best-effort)
  providers        List configured login providers
  version          Show version information
  help             Show this help message

Signup Options:
  --username <name>     Username (required)
  --password <pw>       Password (required)
  --email <addr>        Email attribute
  --auto-confirm        Admin-confirm immediately after sign-up

Confirm Options:
  --username <name>     Username (required)
  --code <code>         Confirmation code (required)

Login Options:
  --username <name>     Username (required)
  --password <pw>       Password (required)
  --provider <name>     Login provider (default: Cognito)

Revoke Options:
  --identity-id <id>    Identity handle to delete (repeatable)

Configuration (environment):
  IDFED_REGION            Service region (default: ` + idfed.DefaultRegion + `)
  IDFED_USER_POOL_ID      User pool ID
  IDFED_CLIENT_ID         App client ID
  IDFED_IDENTITY_POOL_ID  Identity pool ID
  IDFED_ACCOUNT_ID        Account ID
  AWS_ACCESS_KEY_ID       Adapter access key
  AWS_SECRET_ACCESS_KEY   Adapter secret key

Examples:
  idfed signup --username alice --password 'Str0ng!Pass' --email a@x.com
  idfed confirm --username alice --code 123456
  idfed login --username alice --password 'Str0ng!Pass'`)
}

type userOpts struct {
	username    string
	password    string
	email       string
	code        string
	provider    string
	accessToken string
	previous    string
	identityIDs []string
	autoConfirm bool
}

func parseUserOpts(args []string) (*userOpts, error) {
	opts := &userOpts{provider: string(idfed.ProviderCognito)}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--username":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--username requires an argument")
			}
			opts.username = args[i+1]
			i++
		case "--password":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--password requires an argument")
			}
			opts.password = args[i+1]
			i++
		case "--email":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--email requires an argument")
			}
			opts.email = args[i+1]
			i++
		case "--code":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--code requires an argument")
			}
			opts.code = args[i+1]
			i++
		case "--provider":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--provider requires an argument")
			}
			opts.provider = args[i+1]
			i++
		case "--previous-password":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--previous-password requires an argument")
			}
			opts.previous = args[i+1]
			i++
		case "--access-token":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--access-token requires an argument")
			}
			opts.accessToken = args[i+1]
			i++
		case "--identity-id":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("--identity-id requires an argument")
			}
			opts.identityIDs = append(opts.identityIDs, args[i+1])
			i++
		case "--auto-confirm":
			opts.autoConfirm = true
		default:
			return nil, fmt.Errorf("unknown option: %s", args[i])
		}
	}
	return opts, nil
}

func buildDirectory(ctx context.Context) (*directory.Provider, *idfed.Config, error) {
	cfg, err := idfed.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	dir, err := directory.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return dir, cfg, nil
}

func buildFederation(ctx context.Context) (*federation.Provider, *idfed.Config, error) {
	cfg, err := idfed.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	fed, err := federation.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return fed, cfg, nil
}

func cmdSignup(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if opts.username == "" || opts.password == "" {
		return fmt.Errorf("--username and --password are required")
	}

	dir, _, err := buildDirectory(ctx)
	if err != nil {
		return err
	}

	var sagaOpts []idfed.SagaOption
	if opts.autoConfirm {
		sagaOpts = append(sagaOpts, idfed.WithAutoConfirm())
	}
	saga := idfed.NewSaga(dir, sagaOpts...)

	attrs := map[string]string{}
	if opts.email != "" {
		attrs["email"] = opts.email
	}

	user, err := saga.Provision(ctx, opts.username, opts.password, attrs)
	if err != nil {
		return err
	}

	fmt.Printf("User %s provisioned (status: %s)\n", user.Username, user.Status)
	return nil
}

func cmdConfirm(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if opts.username == "" || opts.code == "" {
		return fmt.Errorf("--username and --code are required")
	}

	dir, _, err := buildDirectory(ctx)
	if err != nil {
		return err
	}

	if err := idfed.NewSaga(dir).Confirm(ctx, opts.username, opts.code); err != nil {
		return err
	}
	fmt.Printf("User %s confirmed\n", opts.username)
	return nil
}

func cmdLogin(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if opts.username == "" || opts.password == "" {
		return fmt.Errorf("--username and --password are required")
	}

	dir, cfg, err := buildDirectory(ctx)
	if err != nil {
		return err
	}
	fed, _, err := buildFederation(ctx)
	if err != nil {
		return err
	}

	auth, err := dir.ValidateCredentials(ctx, idfed.FlowUserPassword,
		idfed.PasswordParams(opts.username, opts.password))
	if err != nil {
		if idfed.IsKind(err, idfed.KindAuthentication) {
			fmt.Println("Login failed: credentials rejected")
			return nil
		}
		return err
	}

	session := idfed.NewSession(fed,
		idfed.WithRegion(cfg.Region),
		idfed.WithSessionLogger(logrus.StandardLogger()))
	if err := session.Authenticate(ctx, idfed.LoginProvider(opts.provider), auth.IDToken); err != nil {
		return err
	}

	creds, err := session.EstablishSession(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Session established for %s\n", opts.username)
	fmt.Printf("  Identity:     %s\n", session.Identity())
	fmt.Printf("  AccessKeyID:  %s\n", creds.AccessKeyID)
	fmt.Printf("  Expiration:   %s\n", creds.Expiration)
	return nil
}

func cmdWhoami(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if opts.accessToken == "" {
		return fmt.Errorf("--access-token is required")
	}

	dir, _, err := buildDirectory(ctx)
	if err != nil {
		return err
	}

	user, err := dir.GetUser(ctx, opts.accessToken)
	if err != nil {
		return err
	}
	fmt.Printf("Username: %s\n", user.Username)
	for k, v := range user.Attributes {
		fmt.Printf("  %s: %s\n", k, v)
	}
	return nil
}

func cmdForgotPassword(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if opts.username == "" {
		return fmt.Errorf("--username is required")
	}

	dir, _, err := buildDirectory(ctx)
	if err != nil {
		return err
	}

	if err := dir.ForgotPassword(ctx, opts.username); err != nil {
		return err
	}
	fmt.Printf("Password reset started for %s\n", opts.username)
	return nil
}

func cmdResetPassword(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if opts.username == "" || opts.code == "" || opts.password == "" {
		return fmt.Errorf("--username, --code and --password are required")
	}

	dir, _, err := buildDirectory(ctx)
	if err != nil {
		return err
	}

	if err := dir.ConfirmForgotPassword(ctx, opts.username, opts.code, opts.password); err != nil {
		return err
	}
	fmt.Printf("Password reset for %s\n", opts.username)
	return nil
}

func cmdChangePassword(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if opts.previous == "" || opts.password == "" || opts.accessToken == "" {
		return fmt.Errorf("--previous-password, --password and --access-token are required")
	}

	dir, _, err := buildDirectory(ctx)
	if err != nil {
		return err
	}

	if err := dir.ChangePassword(ctx, opts.previous, opts.password, opts.accessToken); err != nil {
		return err
	}
	fmt.Println("Password changed")
	return nil
}

func cmdRevoke(ctx context.Context, args []string) error {
	opts, err := parseUserOpts(args)
	if err != nil {
		return err
	}
	if len(opts.identityIDs) == 0 {
		return fmt.Errorf("at least one --identity-id is required")
	}

	fed, _, err := buildFederation(ctx)
	if err != nil {
		return err
	}

	handles := make([]idfed.IdentityHandle, 0, len(opts.identityIDs))
	for _, id := range opts.identityIDs {
		handles = append(handles, idfed.IdentityHandle(id))
	}

	unrevoked := fed.RevokeIdentities(ctx, handles...)
	fmt.Printf("Revoked %d of %d identity handles\n", len(handles)-len(unrevoked), len(handles))
	for _, h := range unrevoked {
		fmt.Printf("  not revoked: %s\n", h)
	}
	return nil
}

func cmdProviders() error {
	registry := idfed.NewProviderRegistry()
	fmt.Println("Configured login providers:")
	for _, name := range registry.Names() {
		fmt.Printf("  %s\n", name)
	}
	return nil
}
