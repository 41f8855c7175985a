package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Authentication("who"), http.StatusUnauthorized},
		{Authorization("no"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("again"), http.StatusConflict},
		{Conflict("taken").WithStatus(http.StatusBadRequest), http.StatusBadRequest},
		{Internal("oops", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("%s: got status %d, want %d", tt.err.Kind, got, tt.want)
		}
	}
}

func TestAsWrapped(t *testing.T) {
	err := fmt.Errorf("vote: %w", Conflict("You've already voted on this poll"))
	if KindOf(err) != KindConflict {
		t.Fatalf("expected ConflictError, got %s", KindOf(err))
	}
	if !Is(err, KindConflict) {
		t.Error("Is should match wrapped conflict")
	}
	if Is(err, KindNotFound) {
		t.Error("Is should not match another kind")
	}
}

func TestAsUntagged(t *testing.T) {
	cause := errors.New("connection refused")
	e := As(cause)
	if e.Kind != KindInternal {
		t.Fatalf("expected InternalError, got %s", e.Kind)
	}
	if !errors.Is(e, cause) {
		t.Error("internal error should unwrap to its cause")
	}
	if e.Message == cause.Error() {
		t.Error("internal message must not leak the cause")
	}
}
