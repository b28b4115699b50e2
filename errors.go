package ernie

import (
	"errors"
	"fmt"
	"net/url"
)

// Kinds of validation and response failures, for use with errors.Is.
var (
	ErrNotANumber        = errors.New("not a number")
	ErrOutOfRange        = errors.New("out of range")
	ErrMalformedTemplate = errors.New("malformed prompt template")
	ErrMissingResult     = errors.New("no result in response")
)

// ConfigError indicates a required parameter is missing from the bag.
type ConfigError struct {
	Param string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: missing required parameter %q", e.Param)
}

// ValidationError indicates a parameter is present but unusable.
type ValidationError struct {
	Param string // Parameter name ("temperature", "prompts", ...)
	Value string // Offending value as supplied
	Range string // Expected interval, set for out-of-range failures
	Cause error  // One of ErrNotANumber, ErrOutOfRange, ErrMalformedTemplate, possibly wrapped
}

func (e *ValidationError) Error() string {
	switch {
	case errors.Is(e.Cause, ErrOutOfRange):
		return fmt.Sprintf("validation error: %s=%s is out of range, expected %s", e.Param, e.Value, e.Range)
	case errors.Is(e.Cause, ErrNotANumber):
		return fmt.Sprintf("validation error: %s=%q is not a number", e.Param, e.Value)
	case e.Cause != nil:
		return fmt.Sprintf("validation error: %s: %v", e.Param, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Param)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// AuthError indicates the access token could not be obtained.
type AuthError struct {
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("auth error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("auth error: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// TransportError indicates the request never produced an HTTP response
// (connection refused, timeout, TLS failure...).
type TransportError struct {
	Message string
	Cause   error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transport error: %s", e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ResponseError indicates the provider answered but not with a translation.
type ResponseError struct {
	StatusCode int    // HTTP status of the response
	Body       string // Raw response body
	Code       int    // Provider error_code, when the body carries one
	Message    string // Provider error_msg, when the body carries one
	Cause      error
}

func (e *ResponseError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error: HTTP %d: error_code %d: %s", e.StatusCode, e.Code, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("provider error: HTTP %d: %v: %s", e.StatusCode, e.Cause, e.Body)
	}
	return fmt.Sprintf("provider error: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}

// ScrubURL blanks the named query parameters in the URL carried by a
// *url.Error, so tokens and secrets stay out of error messages and logs.
// err is returned as is.
func ScrubURL(err error, params ...string) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return err
	}
	q := u.Query()
	for _, p := range params {
		if q.Has(p) {
			q.Set(p, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	ue.URL = u.String()
	return err
}
