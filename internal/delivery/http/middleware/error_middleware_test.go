package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"passgate/internal/delivery/http/validator"
	domainerrors "passgate/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorMiddleware_HandleHTTPError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantDetails any
	}{
		{
			name:       "app error",
			err:        domainerrors.ErrDuplicateAccount.WrapMessage("signup failed"),
			wantStatus: http.StatusConflict,
			wantCode:   "ACCOUNT_ALREADY_EXISTS",
		},
		{
			name:        "app error with details",
			err:         domainerrors.ErrPasswordPolicy.WithDetails("password must be at least 8 characters long"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "PASSWORD_POLICY",
			wantDetails: "password must be at least 8 characters long",
		},
		{
			name:       "server error hides details",
			err:        errors.Wrap(domainerrors.ErrAccountPersistence.WithDetails("dial tcp: refused"), "create"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "ACCOUNT_PERSISTENCE_FAILED",
		},
		{
			name:       "validation error",
			err:        &validator.ValidationError{Fields: []validator.FieldError{{Field: "email", Rule: "email"}}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantDetails: []any{
				map[string]any{"field": "email", "rule": "email"},
			},
		},
		{
			name:       "echo http error",
			err:        echo.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "HTTP_ERROR",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewErrorMiddleware(newDiscardLogger()).HandleHTTPError(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantDetails, body.Error.Details)
			assert.NotContains(t, rec.Body.String(), "boom")
			assert.NotContains(t, rec.Body.String(), "refused")
		})
	}
}

func TestErrorMiddleware_SkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.String(http.StatusOK, "done")

	NewErrorMiddleware(newDiscardLogger()).HandleHTTPError(errors.New("late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}
