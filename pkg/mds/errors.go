package mds

import (
	"errors"
	"fmt"
)

// ErrorType classifies extract API failures.
type ErrorType string

const (
	// ErrorTypeFetchFailed covers transport failures and non-success HTTP
	// statuses. Fatal for the page and for the run; no retry is attempted.
	ErrorTypeFetchFailed ErrorType = "fetch_failed"

	// ErrorTypeProtocol covers responses that cannot be parsed or that lack
	// the required data field.
	ErrorTypeProtocol ErrorType = "protocol"
)

// Error represents an extract API error.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("mds %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsFetchFailed reports whether err is a fetch failure.
func IsFetchFailed(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeFetchFailed
}

// IsProtocolError reports whether err is a malformed-response failure.
func IsProtocolError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Type == ErrorTypeProtocol
}
