package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "with cause",
			err:  NewProviderError("FRED", errors.New("status 500")),
			want: "[PROVIDER] provider FRED failed: status 500",
		},
		{
			name: "without cause",
			err:  NewAppValidationError("shift out of range"),
			want: "[VALIDATION] shift out of range",
		},
		{
			name: "not found",
			err:  NewNotFoundError("indicator CPIAUCSL"),
			want: "[NOT_FOUND] indicator CPIAUCSL not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("failed to write workbook", cause)

	assert.True(t, errors.Is(err, cause))

	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := NewNetworkError("request failed", nil).
		WithContext("url", "https://api.stlouisfed.org").
		WithContext("attempt", 2)

	assert.Equal(t, "https://api.stlouisfed.org", err.Context["url"])
	assert.Equal(t, 2, err.Context["attempt"])
}

func TestAppError_WithContextInitializesMap(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "missing key"}
	err.WithContext("field", "providers.fred_key")

	assert.Equal(t, "providers.fred_key", err.Context["field"])
}

func TestNewAppErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
	}{
		{"network", NewNetworkError("timeout", nil), ErrTypeNetwork},
		{"provider", NewProviderError("BLS", nil), ErrTypeProvider},
		{"parsing", NewParsingError("bad sheet", nil), ErrTypeParsing},
		{"storage", NewStorageError("write failed", nil), ErrTypeStorage},
		{"validation", NewAppValidationError("bad input"), ErrTypeValidation},
		{"not found", NewNotFoundError("chart"), ErrTypeNotFound},
		{"config", NewConfigError("bad port", nil), ErrTypeConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestNewProviderError_RecordsSource(t *testing.T) {
	err := NewProviderError("ECOS", errors.New("INFO-100"))
	assert.Equal(t, "ECOS", err.Context["source"])
}
