package contextutils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NewAppError(ErrorCodeInvalidInput, SeverityWarn, "bad category", "value 'rant' is not known")
	assert.Equal(t, "INVALID_INPUT: bad category - value 'rant' is not known", err.Error())

	err = NewAppError(ErrorCodeInvalidInput, SeverityWarn, "bad category", "")
	assert.Equal(t, "INVALID_INPUT: bad category", err.Error())
}

func TestWrapError_PreservesCode(t *testing.T) {
	wrapped := WrapError(ErrRecordNotFound, "loading feedback 42")
	require.Error(t, wrapped)

	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeRecordNotFound, appErr.Code)
	assert.Equal(t, "loading feedback 42", appErr.Message)
	assert.True(t, errors.Is(wrapped, ErrRecordNotFound))
}

func TestWrapError_PlainError(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := WrapError(cause, "sending notification")

	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInternalError, appErr.Code)
	assert.Equal(t, SeverityError, appErr.Severity)
	assert.ErrorIs(t, wrapped, cause)
}

func TestWrapError_Nil(t *testing.T) {
	assert.NoError(t, WrapError(nil, "context"))
	assert.NoError(t, WrapErrorf(nil, "context %d", 1))
}

func TestWrapErrorf(t *testing.T) {
	wrapped := WrapErrorf(ErrForbidden, "not authorized for organization %q", "XYZ Company")

	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeForbidden, appErr.Code)
	assert.Contains(t, appErr.Message, `"XYZ Company"`)
}

func TestWrapErrorf_WrapVerb(t *testing.T) {
	wrapped := WrapErrorf(ErrRecordExists, "seeding account %q: %w", "admin", ErrRecordExists)

	appErr, ok := wrapped.(*AppError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeRecordExists, appErr.Code)
	assert.Contains(t, appErr.Message, "seeding account")
}

func TestIsError(t *testing.T) {
	wrapped := WrapError(ErrInvalidCredentials, "login failed")
	assert.True(t, IsError(wrapped, ErrInvalidCredentials))
	assert.False(t, IsError(wrapped, ErrRecordNotFound))
	assert.False(t, IsError(errors.New("plain"), ErrRecordNotFound))
}

func TestGetErrorCodeAndSeverity(t *testing.T) {
	assert.Equal(t, ErrorCodeForbidden, GetErrorCode(ErrForbidden))
	assert.Equal(t, ErrorCodeInternalError, GetErrorCode(errors.New("plain")))

	assert.Equal(t, SeverityInfo, GetErrorSeverity(ErrRecordNotFound))
	assert.Equal(t, SeverityError, GetErrorSeverity(errors.New("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrTimeout))
	assert.True(t, IsRetryable(ErrServiceUnavailable))
	assert.False(t, IsRetryable(ErrRecordNotFound))
	assert.False(t, IsRetryable(errors.New("plain")))

	fatal := NewAppError(ErrorCodeTimeout, SeverityFatal, "gone", "")
	assert.False(t, IsRetryable(fatal))
}

func TestToJSON(t *testing.T) {
	err := NewAppErrorWithCause(ErrorCodeServiceUnavailable, SeverityError, "smtp relay unreachable", "dial tcp", errors.New("connection refused"))
	payload := err.ToJSON()

	assert.Equal(t, "SERVICE_UNAVAILABLE", payload["code"])
	assert.Equal(t, "smtp relay unreachable", payload["message"])
	assert.Equal(t, "dial tcp", payload["details"])
	assert.Equal(t, true, payload["retryable"])
	assert.Equal(t, "connection refused", payload["cause"])
}

func TestToJSON_LowSeverityHidesCause(t *testing.T) {
	err := NewAppErrorWithCause(ErrorCodeRecordNotFound, SeverityInfo, "not found", "", errors.New("internal detail"))
	payload := err.ToJSON()

	_, hasCause := payload["cause"]
	assert.False(t, hasCause)
}

func TestAccountIDContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetAccountIDFromContext(ctx))

	ctx = WithAccountID(ctx, "acc-1")
	assert.Equal(t, "acc-1", GetAccountIDFromContext(ctx))
}
