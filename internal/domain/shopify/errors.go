// Package shopify provides domain types for the Shopify Admin API integration.
package shopify

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Standard domain errors.
var (
	ErrUnauthorized       = errors.New("invalid or revoked access token")
	ErrRateLimited        = errors.New("API rate limit exceeded")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrInvalidRequest     = errors.New("invalid request parameters")
	ErrServiceUnavailable = errors.New("Shopify service temporarily unavailable")

	// ErrFieldUndefined indicates the store's API version does not expose a
	// requested GraphQL field (typically shopifyqlQuery on accounts without
	// advanced reporting). Callers degrade to an empty result set.
	ErrFieldUndefined = errors.New("GraphQL field not supported by this store")
)

// GraphQL extension codes returned by the Admin API.
const (
	CodeUndefinedField = "undefinedField"
	CodeThrottled      = "THROTTLED"
	CodeAccessDenied   = "ACCESS_DENIED"
)

// GraphQLError is a single entry from the top-level "errors" array of a
// GraphQL response.
type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// IsFieldUndefined reports whether any error in the list carries the
// undefinedField extension code.
func IsFieldUndefined(errs []GraphQLError) bool {
	for _, e := range errs {
		if e.Extensions.Code == CodeUndefinedField {
			return true
		}
	}
	return false
}

// APIError represents a failed call against the Shopify Admin API.
type APIError struct {
	Operation  string `json:"operation"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("shopify %s [%s]: %s", e.Operation, e.Code, e.Message)
	}
	return fmt.Sprintf("shopify %s: %s", e.Operation, e.Message)
}

// Is implements errors.Is for APIError.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrFieldUndefined:
		return e.Code == CodeUndefinedField
	case ErrRateLimited:
		return e.Code == CodeThrottled || e.StatusCode == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.Code == CodeAccessDenied ||
			e.StatusCode == http.StatusUnauthorized ||
			e.StatusCode == http.StatusForbidden
	case ErrResourceNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrInvalidRequest:
		return e.StatusCode == http.StatusBadRequest ||
			e.StatusCode == http.StatusUnprocessableEntity
	case ErrServiceUnavailable:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// IsRetryable returns true if this error is safe to retry.
func (e *APIError) IsRetryable() bool {
	return e.Code == CodeThrottled ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// NewAPIError creates a new APIError.
func NewAPIError(operation, message string, statusCode int) *APIError {
	return &APIError{Operation: operation, Message: message, StatusCode: statusCode}
}

// NewGraphQLAPIError creates an APIError from a GraphQL error list, carrying
// the first extension code for classification.
func NewGraphQLAPIError(operation string, errs []GraphQLError) *APIError {
	msg := "unknown GraphQL error"
	code := ""
	if len(errs) > 0 {
		msg = errs[0].Message
		code = errs[0].Extensions.Code
	}
	return &APIError{Operation: operation, Message: msg, Code: code, StatusCode: http.StatusOK}
}

// ParseErrorMessage extracts a human-readable message from a ShopifyQL
// parseErrors entry, which the API returns either as a plain string or as a
// structured object with a "message" field.
func ParseErrorMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}

	return strings.TrimSpace(string(raw))
}
