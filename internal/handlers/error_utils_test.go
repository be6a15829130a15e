package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	contextutils "feedbackhub/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGinContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     contextutils.ErrorCode
		expected int
	}{
		{contextutils.ErrorCodeInvalidInput, http.StatusBadRequest},
		{contextutils.ErrorCodeMissingRequired, http.StatusBadRequest},
		{contextutils.ErrorCodeValidationFailed, http.StatusBadRequest},
		{contextutils.ErrorCodeUnauthorized, http.StatusUnauthorized},
		{contextutils.ErrorCodeSessionExpired, http.StatusUnauthorized},
		{contextutils.ErrorCodeInvalidCredentials, http.StatusUnauthorized},
		{contextutils.ErrorCodeForbidden, http.StatusForbidden},
		{contextutils.ErrorCodeSignupsDisabled, http.StatusForbidden},
		{contextutils.ErrorCodeRecordNotFound, http.StatusNotFound},
		{contextutils.ErrorCodeRecordExists, http.StatusConflict},
		{contextutils.ErrorCodeInternalError, http.StatusInternalServerError},
		{contextutils.ErrorCodeServiceUnavailable, http.StatusServiceUnavailable},
		{contextutils.ErrorCodeTimeout, http.StatusRequestTimeout},
		{contextutils.ErrorCode("SOMETHING_NEW"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.expected, mapErrorCodeToHTTPStatus(tc.code))
		})
	}
}

func TestHandleAppError_AppError(t *testing.T) {
	c, w := newTestGinContext()

	HandleAppError(c, contextutils.WrapError(contextutils.ErrRecordNotFound, "no such feedback"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RECORD_NOT_FOUND")
	assert.Contains(t, w.Body.String(), "retryable")
}

func TestHandleAppError_PlainError(t *testing.T) {
	c, w := newTestGinContext()

	HandleAppError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestStandardizeHTTPError(t *testing.T) {
	c, w := newTestGinContext()

	StandardizeHTTPError(c, http.StatusConflict, "Already exists", "duplicate username")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "RECORD_ALREADY_EXISTS")
	assert.Contains(t, w.Body.String(), "Already exists")
}

func TestHandleValidationError(t *testing.T) {
	c, w := newTestGinContext()

	HandleValidationError(c, "category", "rant", "unknown category")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	assert.Contains(t, w.Body.String(), "category")
}

func TestHandleAppError_RetryableFlag(t *testing.T) {
	c, w := newTestGinContext()

	appErr := contextutils.NewAppError(
		contextutils.ErrorCodeServiceUnavailable,
		contextutils.SeverityError,
		"smtp relay unreachable",
		"",
	)
	HandleAppError(c, appErr)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"retryable":true`)
}
