package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying")

	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantKind   ErrorKind
	}{
		{"missing credentials", NewMissingCredentialsError(), http.StatusUnauthorized, KindMissingCredentials},
		{"invalid credentials", NewInvalidCredentialsError(cause), http.StatusUnauthorized, KindInvalidCredentials},
		{"permission denied", NewPermissionDeniedError(), http.StatusForbidden, KindPermissionDenied},
		{"authorization lookup failed", NewAuthorizationLookupError(cause), http.StatusInternalServerError, KindAuthorizationLookupFailed},
		{"rate limit exceeded", NewRateLimitError(""), http.StatusTooManyRequests, KindRateLimitExceeded},
		{"upstream query failed", NewUpstreamQueryError(cause), http.StatusInternalServerError, KindUpstreamQueryFailed},
		{"invalid partition", NewInvalidPartitionError("9"), http.StatusBadRequest, KindInvalidPartition},
		{"bad request", NewBadRequestError(cause, ""), http.StatusBadRequest, KindBadRequest},
		{"internal", NewInternalError(cause, ""), http.StatusInternalServerError, KindInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.err.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", tt.err.StatusCode, tt.wantStatus)
			}
			if tt.err.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", tt.err.Kind, tt.wantKind)
			}
			if tt.err.Message == "" {
				t.Fatal("client-safe message must never be empty")
			}
		})
	}
}

func TestGetAppError_Wrapped(t *testing.T) {
	t.Parallel()

	base := NewUpstreamQueryError(errors.New("connection reset"))
	wrapped := fmt.Errorf("query stage: %w", base)

	appErr, ok := GetAppError(wrapped)
	if !ok {
		t.Fatal("wrapped AppError not recovered")
	}
	if appErr.Kind != KindUpstreamQueryFailed {
		t.Fatalf("kind = %s", appErr.Kind)
	}

	if !errors.Is(wrapped, base) {
		t.Fatal("errors.Is should see through the wrap")
	}
}

func TestGetAppError_PlainError(t *testing.T) {
	t.Parallel()

	if _, ok := GetAppError(errors.New("plain")); ok {
		t.Fatal("plain error must not convert to AppError")
	}
	if _, ok := GetAppError(nil); ok {
		t.Fatal("nil must not convert to AppError")
	}
}

func TestAppError_UnwrapChain(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: timeout")
	appErr := NewAuthorizationLookupError(cause)

	if !errors.Is(appErr, cause) {
		t.Fatal("cause lost in unwrap chain")
	}

	// The client-safe message must not carry the cause text.
	if appErr.Message == appErr.Error() {
		t.Fatal("Error() should include the cause for logs, Message should not")
	}
}
