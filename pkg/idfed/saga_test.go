package idfed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	signUpErr  error
	confirmErr error
	adminErr   error
	lookupErr  error

	users map[string]bool

	signUpCalls     int
	compensateCalls int
	lastCompensated string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{users: make(map[string]bool)}
}

func (f *fakeDirectory) SignUp(ctx context.Context, username, password string, attributes map[string]string) (*UserRecord, error) {
	f.signUpCalls++
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	f.users[username] = true
	return &UserRecord{Username: username, Status: "UNCONFIRMED", Enabled: true, Attributes: attributes}, nil
}

func (f *fakeDirectory) ConfirmSignUp(ctx context.Context, username, code string) error {
	return f.confirmErr
}

func (f *fakeDirectory) AdminConfirmSignUp(ctx context.Context, username string) error {
	return f.adminErr
}

func (f *fakeDirectory) Lookup(ctx context.Context, username string) (*UserRecord, bool, error) {
	if f.lookupErr != nil {
		return nil, false, f.lookupErr
	}
	if !f.users[username] {
		return nil, false, nil
	}
	return &UserRecord{Username: username}, true, nil
}

func (f *fakeDirectory) ValidateCredentials(ctx context.Context, flow AuthFlow, params map[string]string) (*AuthResult, error) {
	return &AuthResult{AccessToken: "access", IDToken: "id"}, nil
}

func (f *fakeDirectory) Disable(ctx context.Context, username string) error { return nil }

func (f *fakeDirectory) Delete(ctx context.Context, username string) error {
	delete(f.users, username)
	return nil
}

func (f *fakeDirectory) CompensateDelete(ctx context.Context, username string) {
	f.compensateCalls++
	f.lastCompensated = username
	delete(f.users, username)
}

func (f *fakeDirectory) ForgotPassword(ctx context.Context, username string) error { return nil }

func (f *fakeDirectory) ConfirmForgotPassword(ctx context.Context, username, code, newPassword string) error {
	return nil
}

func (f *fakeDirectory) ChangePassword(ctx context.Context, previous, proposed, accessToken string) error {
	return nil
}

func (f *fakeDirectory) UpdateUserAttribute(ctx context.Context, username, key, value string) error {
	return nil
}

func (f *fakeDirectory) GetUser(ctx context.Context, accessToken string) (*UserRecord, error) {
	return &UserRecord{Username: "alice"}, nil
}

func TestSaga_ProvisionSuccess(t *testing.T) {
	dir := newFakeDirectory()
	saga := NewSaga(dir)

	user, err := saga.Provision(context.Background(), "alice", "Str0ng!Pass",
		map[string]string{"email": "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, dir.users["alice"], "user exists with confirmation pending")
	assert.Zero(t, dir.compensateCalls)
}

func TestSaga_SignUpFailureNothingToCompensate(t *testing.T) {
	dir := newFakeDirectory()
	dir.signUpErr = ErrDirectory("username already exists")
	saga := NewSaga(dir)

	_, err := saga.Provision(context.Background(), "alice", "pw", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindProvisioning))
	assert.Zero(t, dir.compensateCalls, "nothing was created, nothing to compensate")
	assert.False(t, dir.users["alice"])
}

func TestSaga_FollowUpFailureCompensates(t *testing.T) {
	dir := newFakeDirectory()
	dir.adminErr = ErrConfirmation("confirmation not allowed")
	saga := NewSaga(dir, WithAutoConfirm())

	_, err := saga.Provision(context.Background(), "bob", "pw", nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindProvisioning))
	assert.ErrorIs(t, err, ErrConfirmation(""), "triggering error surfaces through the wrapper")
	assert.Equal(t, 1, dir.compensateCalls)
	assert.Equal(t, "bob", dir.lastCompensated)
	assert.False(t, dir.users["bob"], "compensation removed the partial user")
}

func TestSaga_CompensationInvariant(t *testing.T) {
	// Either the user exists afterward with confirmation pending, or the
	// saga reports a provisioning error and the user does not exist.
	cases := []struct {
		name     string
		mutate   func(*fakeDirectory)
		wantUser bool
	}{
		{"clean run", func(*fakeDirectory) {}, true},
		{"sign-up rejected", func(d *fakeDirectory) { d.signUpErr = ErrDirectory("weak password") }, false},
		{"lookup fails after sign-up", func(d *fakeDirectory) { d.lookupErr = ErrDirectory("transport") }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := newFakeDirectory()
			tc.mutate(dir)
			saga := NewSaga(dir)

			_, err := saga.Provision(context.Background(), "carol", "pw", nil)
			if tc.wantUser {
				require.NoError(t, err)
				assert.True(t, dir.users["carol"])
			} else {
				require.Error(t, err)
				assert.True(t, IsKind(err, KindProvisioning))
				assert.False(t, dir.users["carol"])
			}
		})
	}
}

func TestSaga_ConfirmIsNotCompensated(t *testing.T) {
	dir := newFakeDirectory()
	dir.users["alice"] = true
	dir.confirmErr = ErrConfirmation("code expired")
	saga := NewSaga(dir)

	err := saga.Confirm(context.Background(), "alice", "000000")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConfirmation))
	assert.Zero(t, dir.compensateCalls)
	assert.True(t, dir.users["alice"], "a failed confirmation keeps the user")
}
