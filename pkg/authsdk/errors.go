package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Kishorekomminenik/CleanrMLP1-sub001/pkg/httpx"
)

// Error codes carried in the "error" field of a failed response.
const (
	ErrorCodeValidation          = "validation_error"
	ErrorCodeDuplicateIdentity   = "duplicate_identity"
	ErrorCodeAuthentication      = "authentication_error"
	ErrorCodeUnauthenticated     = "unauthenticated"
	ErrorCodeForbidden           = "forbidden"
	ErrorCodeMFAInvalidCode      = "mfa_invalid_code"
	ErrorCodeMFAExpired          = "mfa_expired"
	ErrorCodeMFAAttemptsExceeded = "mfa_attempts_exceeded"
	ErrorCodeNotFound            = "not_found"
	ErrorCodeRateLimited         = "rate_limit_exceeded"
	ErrorCodeServerError         = "server_error"
)

// APIError is the error envelope returned by every endpoint. The server writes
// it with WriteError and the client decodes failures into it.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError renders e as the response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

func NewAPIError(status int, code, description string) *APIError {
	return &APIError{StatusCode: status, Code: code, Description: description}
}

var ErrServerError = &APIError{
	StatusCode:  http.StatusInternalServerError,
	Code:        ErrorCodeServerError,
	Description: "internal server error",
}

// MFARequiredError is returned by Login when the account must complete a
// step-up challenge before a token is issued.
type MFARequiredError struct {
	Challenge MFAChallengeResponse
}

func (e *MFARequiredError) Error() string {
	return fmt.Sprintf("mfa required: methods=%v", e.Challenge.Methods)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func parseErrorResponse(status int, body []byte) error {
	var e APIError
	if err := json.Unmarshal(body, &e); err == nil && e.Code != "" {
		e.StatusCode = status
		return &e
	}
	return &APIError{
		StatusCode:  status,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status)),
	}
}
