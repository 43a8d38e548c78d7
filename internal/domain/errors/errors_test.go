package errors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_WithCause(t *testing.T) {
	driverErr := errors.New("connection reset")
	dbErr := NewDatabaseExecuteError(driverErr, "insert account")

	err := errors.WithStack(ErrAccountPersistence.WithCause(dbErr))

	assert.True(t, errors.Is(err, ErrAccountPersistence))
	assert.True(t, errors.Is(err, driverErr))
	assert.False(t, errors.Is(err, ErrInternalError))

	var appErr AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ACCOUNT_PERSISTENCE_FAILED", appErr.ErrorCode())
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPCode())
	assert.Equal(t, "Failed to access account storage", appErr.Message())
	assert.Empty(t, appErr.Details())

	var execErr *DatabaseExecuteError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, "insert account", execErr.Details())

	assert.Contains(t, err.Error(), "connection reset")
}

func TestBaseError_CopiesKeepIdentity(t *testing.T) {
	cause := errors.New("boom")
	withDetails := ErrValidationFailed.WithCause(cause).WithDetails("email is required")

	assert.True(t, errors.Is(withDetails, ErrValidationFailed))
	assert.True(t, errors.Is(withDetails, cause))
	assert.Equal(t, "email is required", withDetails.Details())

	// The predefined value is never mutated.
	assert.Nil(t, ErrValidationFailed.Unwrap())
	assert.Empty(t, ErrValidationFailed.Details())
	assert.Equal(t, "Input validation failed", ErrValidationFailed.Error())
}
