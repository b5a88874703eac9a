// Package idfed provides federated identity exchange with saga-style
// provisioning compensation.
//
// # Overview
//
// idfed authenticates end users against a managed user directory and
// federates the proven login into temporary, scoped credentials for a
// downstream resource tier. The flow is a three-step exchange:
//
//  1. authenticate the user against the directory (login proof)
//  2. exchange the login proof for a federated identity handle
//  3. exchange the identity handle plus login proof for short-lived
//     session credentials
//
// # Core Concepts
//
// ## Adapters
//
// Two stateless adapters wrap the remote services:
//   - Directory: user lifecycle against the user pool (sign-up,
//     confirmation, admin lookup, credential validation, password flows)
//   - Federation: identity-handle allocation and credential exchange
//     against the identity pool
//
// Both are safe for concurrent use by many sessions.
//
// ## Session
//
// A Session owns one user flow's federation state and drives
// Authenticate -> EstablishSession. State moves strictly forward:
//
//	Unauthenticated -> Authenticated -> Active
//
// A Session is not safe for concurrent use; create one per in-flight flow.
// Expired credentials are not refreshed automatically — re-run the
// sequence.
//
// ## Saga
//
// The provisioning Saga layers sign-up plus a required follow-up step over
// the Directory adapter. When the follow-up fails, the partially created
// user is removed by a compensating delete whose own failure is suppressed,
// so the caller always sees the triggering error.
//
// # Usage
//
//	cfg, err := idfed.LoadConfig()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	dir, err := directory.NewFromConfig(ctx, cfg)
//	fed, err := federation.NewFromConfig(ctx, cfg)
//
//	saga := idfed.NewSaga(dir)
//	if _, err := saga.Provision(ctx, "alice", password, attrs); err != nil {
//	    log.Fatal(err)
//	}
//
//	auth, err := dir.ValidateCredentials(ctx, idfed.FlowUserPassword,
//	    idfed.PasswordParams("alice", password))
//
//	session := idfed.NewSession(fed, idfed.WithRegion(cfg.Region))
//	if err := session.Authenticate(ctx, idfed.ProviderCognito, auth.IDToken); err != nil {
//	    log.Fatal(err)
//	}
//	creds, err := session.EstablishSession(ctx)
//
// # Errors
//
// All failures carry a Kind (see errors.go). Compensating operations —
// Directory.CompensateDelete and Federation.RevokeIdentities — suppress
// their own faults by contract; everything else surfaces typed errors
// without retrying.
package idfed
