package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad date %q", "x"), http.StatusBadRequest},
		{"not found", NotFound("doctor not found"), http.StatusNotFound},
		{"conflict", Conflict("slot taken"), http.StatusConflict},
		{"forbidden", Forbidden("patients only"), http.StatusForbidden},
		{"wrapped", fmt.Errorf("load doctor: %w", NotFound("doctor not found")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"nil", nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorsIs(t *testing.T) {
	err := Validation("invalid date: %s", "2025-13-01")
	if !errors.Is(err, ErrValidation) {
		t.Error("expected errors.Is(err, ErrValidation)")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("validation error must not match ErrNotFound")
	}
	if err.Error() != "invalid date: 2025-13-01" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestToHTTP(t *testing.T) {
	he := ToHTTP(Conflict("time slot is already booked"))
	if he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", he.Code)
	}
	if he.Message != "time slot is already booked" {
		t.Errorf("unexpected message %v", he.Message)
	}

	he = ToHTTP(errors.New("connection reset"))
	if he.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", he.Code)
	}
	if he.Message != "internal server error" {
		t.Errorf("internal error leaked: %v", he.Message)
	}
	if he.Internal == nil {
		t.Error("expected internal error to be kept")
	}
}
