package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pdao-registration/internal/schema"
	"pdao-registration/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantField string
		wantMsg   string
	}{
		{
			name:      "validation",
			err:       &usecase.ValidationError{Errors: schema.FieldErrors{{Field: "email", Message: "Email is invalid"}}},
			wantCode:  http.StatusBadRequest,
			wantField: "email",
			wantMsg:   "Email is invalid",
		},
		{
			name:      "duplicate",
			err:       fmt.Errorf("register: %w", &usecase.DuplicateError{Field: "contact_number", Message: "Contact number is already registered"}),
			wantCode:  http.StatusBadRequest,
			wantField: "contact_number",
			wantMsg:   "Contact number is already registered",
		},
		{
			name:      "authentication",
			err:       &usecase.AuthenticationError{Field: "password", Message: usecase.MsgInvalidCredentials},
			wantCode:  http.StatusUnauthorized,
			wantField: "password",
			wantMsg:   usecase.MsgInvalidCredentials,
		},
		{
			name:     "authorization",
			err:      &usecase.AuthorizationError{Status: http.StatusForbidden, Message: "Account is suspended"},
			wantCode: http.StatusForbidden,
			wantMsg:  "Account is suspended",
		},
		{
			name:     "not found",
			err:      fmt.Errorf("profile: %w", usecase.ErrUserNotFound),
			wantCode: http.StatusNotFound,
			wantMsg:  "User not found",
		},
		{
			name:     "unexpected",
			err:      errors.New("pq: connection reset by peer at 10.0.0.4"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleServiceError(rec, zap.NewNop(), tt.err, "test")

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["status"])
			assert.Equal(t, tt.wantMsg, body["message"])
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, body["field"])
			}
			assert.NotContains(t, rec.Body.String(), "10.0.0.4")
		})
	}
}

func TestHandleServiceError_LogsUnexpectedAtError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handleServiceError(httptest.NewRecorder(), zap.New(core), errors.New("boom"), "login")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	assert.Equal(t, "Failed to login", entry.Message)
}

func TestWriteValidation_ManyErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeValidation(rec, schema.FieldErrors{
		{Field: "first_name", Message: "First name is required"},
		{Field: "email", Message: "Email is invalid"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Message string             `json:"message"`
		Field   string             `json:"field"`
		Errors  schema.FieldErrors `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, "first_name", body.Field)
	assert.Len(t, body.Errors, 2)
}

func TestReadBody_Limit(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", maxBodyBytes+1)))
	_, err := readBody(httptest.NewRecorder(), req)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	body, err := readBody(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.co"}`, string(body))
}
