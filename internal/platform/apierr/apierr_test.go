package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/WinterJet2021/MayWin-Core-Backend/internal/pkg/errors"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"api not found", NotFound("job_not_found", "job 1"), http.StatusNotFound, "job_not_found"},
		{"api conflict", Conflict("job_not_completed", "not yet"), http.StatusConflict, "job_not_completed"},
		{"wrapped api", fmt.Errorf("outer: %w", BadRequest("invalid_dates", errors.New("bad"))), http.StatusBadRequest, "invalid_dates"},
		{"bare sentinel", fmt.Errorf("x: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "fallback"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "fallback"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := Resolve(tc.err, "fallback")
			if status != tc.wantStatus || code != tc.wantCode {
				t.Fatalf("Resolve: want=(%d,%q) got=(%d,%q)", tc.wantStatus, tc.wantCode, status, code)
			}
		})
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := NotFound("schedule_not_found", "schedule 7")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in chain")
	}
	if err.Error() == "" {
		t.Fatalf("expected message")
	}
}
