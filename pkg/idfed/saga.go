package idfed

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Saga runs the create-then-confirm user provisioning flow with a
// compensating delete. It is intentionally not resumable: once compensation
// runs, the username is freed for a fresh attempt and no durable checkpoint
// is kept.
type Saga struct {
	directory   Directory
	log         *logrus.Entry
	autoConfirm bool
}

// SagaOption configures a Saga.
type SagaOption func(*Saga)

// WithAutoConfirm makes Provision admin-confirm the user immediately after
// sign-up instead of leaving the confirmation to a user-entered code.
func WithAutoConfirm() SagaOption {
	return func(s *Saga) {
		s.autoConfirm = true
	}
}

// WithSagaLogger sets the logger.
func WithSagaLogger(log *logrus.Logger) SagaOption {
	return func(s *Saga) {
		s.log = log.WithField("component", "saga")
	}
}

// NewSaga creates a provisioning saga over a directory adapter.
func NewSaga(directory Directory, opts ...SagaOption) *Saga {
	s := &Saga{
		directory: directory,
		log:       logrus.StandardLogger().WithField("component", "saga"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provision signs the user up and runs the required follow-up step. If
// sign-up itself fails there is nothing to compensate and the error
// surfaces as a provisioning error. If sign-up succeeds but a later step
// fails, the partially created user is compensated away and the triggering
// error surfaces; the compensation's own failure is always swallowed so the
// caller never sees a secondary error.
func (s *Saga) Provision(ctx context.Context, username, password string, attributes map[string]string) (*UserRecord, error) {
	flowID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"flow_id": flowID, "username": username})

	user, err := s.directory.SignUp(ctx, username, password, attributes)
	if err != nil {
		log.WithError(err).Info("sign-up failed, nothing to compensate")
		return nil, ErrProvisioning("sign-up failed", err).WithResource(username)
	}

	if err := s.followUp(ctx, username); err != nil {
		log.WithError(err).Warn("post-sign-up step failed, compensating")
		s.directory.CompensateDelete(ctx, username)
		return nil, ErrProvisioning("provisioning rolled back", err).WithResource(username)
	}

	log.Info("user provisioned")
	return user, nil
}

// followUp is the compensated step after a successful sign-up: either the
// automatic admin confirmation, or a lookup verifying the record landed.
func (s *Saga) followUp(ctx context.Context, username string) error {
	if s.autoConfirm {
		return s.directory.AdminConfirmSignUp(ctx, username)
	}

	_, exists, err := s.directory.Lookup(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound(username).WithOperation("lookup")
	}
	return nil
}

// Confirm completes provisioning with a user-entered confirmation code.
// A failed confirmation is not compensated: the user exists and is merely
// unconfirmed; the code can be retried or resent.
func (s *Saga) Confirm(ctx context.Context, username, code string) error {
	return s.directory.ConfirmSignUp(ctx, username, code)
}
