package shopify

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		target error
	}{
		{"undefined field code", &APIError{Code: CodeUndefinedField}, ErrFieldUndefined},
		{"throttled code", &APIError{Code: CodeThrottled}, ErrRateLimited},
		{"429 status", &APIError{StatusCode: http.StatusTooManyRequests}, ErrRateLimited},
		{"access denied code", &APIError{Code: CodeAccessDenied}, ErrUnauthorized},
		{"401 status", &APIError{StatusCode: http.StatusUnauthorized}, ErrUnauthorized},
		{"404 status", &APIError{StatusCode: http.StatusNotFound}, ErrResourceNotFound},
		{"422 status", &APIError{StatusCode: http.StatusUnprocessableEntity}, ErrInvalidRequest},
		{"503 status", &APIError{StatusCode: http.StatusServiceUnavailable}, ErrServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.target))
		})
	}

	assert.False(t, errors.Is(&APIError{StatusCode: http.StatusOK}, ErrRateLimited))
}

func TestAPIError_IsRetryable(t *testing.T) {
	assert.True(t, (&APIError{Code: CodeThrottled}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: http.StatusTooManyRequests}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: http.StatusBadGateway}).IsRetryable())
	assert.False(t, (&APIError{StatusCode: http.StatusUnauthorized}).IsRetryable())
	assert.False(t, (&APIError{Code: CodeUndefinedField, StatusCode: http.StatusOK}).IsRetryable())
}

func TestNewGraphQLAPIError(t *testing.T) {
	err := NewGraphQLAPIError("getDailyAnalytics", []GraphQLError{})
	assert.Contains(t, err.Error(), "unknown GraphQL error")

	var gqlErr GraphQLError
	gqlErr.Message = "Throttled"
	gqlErr.Extensions.Code = CodeThrottled

	err = NewGraphQLAPIError("getDailyAnalytics", []GraphQLError{gqlErr})
	assert.Equal(t, CodeThrottled, err.Code)
	assert.Contains(t, err.Error(), "Throttled")
	assert.True(t, errors.Is(err, ErrRateLimited))
}

func TestParseErrorMessage(t *testing.T) {
	assert.Equal(t, "syntax error", ParseErrorMessage(json.RawMessage(`"syntax error"`)))
	assert.Equal(t, "unknown column", ParseErrorMessage(json.RawMessage(`{"message": "unknown column"}`)))
	assert.Equal(t, `{"code": 7}`, ParseErrorMessage(json.RawMessage(`{"code": 7}`)))
}
