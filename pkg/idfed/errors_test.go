package idfed

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_KindMatching(t *testing.T) {
	err := ErrAuthentication("credentials rejected").WithOperation("admin_initiate_auth")

	assert.True(t, IsKind(err, KindAuthentication))
	assert.False(t, IsKind(err, KindDirectory))
	assert.True(t, errors.Is(err, ErrAuthentication("anything")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrDirectory("sign-up failed").WithCause(cause)

	assert.ErrorIs(t, err, cause)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindDirectory, fe.Kind)
}

func TestError_WrappedProvisioning(t *testing.T) {
	trigger := ErrConfirmation("code expired")
	err := ErrProvisioning("provisioning rolled back", trigger)

	assert.True(t, IsKind(err, KindProvisioning))
	assert.ErrorIs(t, err, trigger)
	assert.True(t, errors.Is(err, ErrConfirmation("")), "the trigger kind is visible through the wrapper")
}

func TestError_Message(t *testing.T) {
	err := ErrFederation("exchange rejected").
		WithOperation("get_credentials_for_identity").
		WithCause(fmt.Errorf("boom"))

	msg := err.Error()
	assert.Contains(t, msg, "federation")
	assert.Contains(t, msg, "get_credentials_for_identity")
	assert.Contains(t, msg, "boom")
}

func TestIsKind_NonStructuredError(t *testing.T) {
	assert.False(t, IsKind(errors.New("plain"), KindDirectory))
	assert.False(t, IsKind(nil, KindDirectory))
}
