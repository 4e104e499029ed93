package shared

import (
	"errors"
	"net/http"
)

// ErrorKind classifies request failures for the error handler and logs.
type ErrorKind string

const (
	KindMissingCredentials        ErrorKind = "missing_credentials"
	KindInvalidCredentials        ErrorKind = "invalid_credentials"
	KindPermissionDenied          ErrorKind = "permission_denied"
	KindAuthorizationLookupFailed ErrorKind = "authorization_lookup_failed"
	KindRateLimitExceeded         ErrorKind = "rate_limit_exceeded"
	KindUpstreamQueryFailed       ErrorKind = "upstream_query_failed"
	KindInvalidPartition          ErrorKind = "invalid_partition"
	KindBadRequest                ErrorKind = "bad_request"
	KindInternal                  ErrorKind = "internal"
)

// AppError carries the HTTP status and the client-safe message. The wrapped
// error is logged server-side and never written to the response body.
type AppError struct {
	StatusCode int
	Kind       ErrorKind
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewMissingCredentialsError() *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Kind: KindMissingCredentials, Message: "Missing or malformed Authorization header"}
}

func NewInvalidCredentialsError(err error) *AppError {
	return &AppError{StatusCode: http.StatusUnauthorized, Kind: KindInvalidCredentials, Message: "Invalid or expired credentials", Err: err}
}

func NewPermissionDeniedError() *AppError {
	return &AppError{StatusCode: http.StatusForbidden, Kind: KindPermissionDenied, Message: "Access to PJe queries has not been granted"}
}

func NewAuthorizationLookupError(err error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Kind: KindAuthorizationLookupFailed, Message: "Unable to verify permissions", Err: err}
}

func NewRateLimitError(message string) *AppError {
	if message == "" {
		message = "Too many requests. Please try again later."
	}
	return &AppError{StatusCode: http.StatusTooManyRequests, Kind: KindRateLimitExceeded, Message: message}
}

func NewUpstreamQueryError(err error) *AppError {
	return &AppError{StatusCode: http.StatusInternalServerError, Kind: KindUpstreamQueryFailed, Message: "Query failed, please try again later", Err: err}
}

func NewInvalidPartitionError(value string) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Kind: KindInvalidPartition, Message: "Unknown PJe degree: " + value}
}

func NewBadRequestError(err error, message string) *AppError {
	if message == "" {
		message = "Bad Request"
	}
	return &AppError{StatusCode: http.StatusBadRequest, Kind: KindBadRequest, Message: message, Err: err}
}

func NewInternalError(err error, message string) *AppError {
	if message == "" {
		message = "Internal Server Error"
	}
	return &AppError{StatusCode: http.StatusInternalServerError, Kind: KindInternal, Message: message, Err: err}
}
