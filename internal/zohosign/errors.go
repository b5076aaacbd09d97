package zohosign

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ErrUnauthorized matches API errors with status 401.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is returned when Zoho Sign rejects a call.
type APIError struct {
	StatusCode int
	// Code and Message come from the Zoho error body, when present.
	Code    int64
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != 0 {
		return fmt.Sprintf("zoho sign: status %d: code %d: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("zoho sign: status %d: %s", e.StatusCode, msg)
}

// Is reports whether target is ErrUnauthorized and this error carries status 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if gjson.ValidBytes(body) {
		apiErr.Code = gjson.GetBytes(body, "code").Int()
		apiErr.Message = gjson.GetBytes(body, "message").String()
	}
	return apiErr
}
