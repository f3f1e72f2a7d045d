package reconcile

import (
	"fmt"
	"testing"
)

func TestClassifyHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
		isNil  bool
	}{
		{name: "200 ok", status: 200, isNil: true},
		{name: "201 created", status: 201, isNil: true},
		{name: "204 no content", status: 204, isNil: true},
		{name: "401 auth", status: 401, check: IsAuth},
		{name: "403 auth", status: 403, check: IsAuth},
		{name: "400 validation", status: 400, check: IsValidation},
		{name: "422 validation", status: 422, check: IsValidation},
		{name: "409 conflict", status: 409, check: IsConflict},
		{name: "500 transient", status: 500, check: IsTransient},
		{name: "503 transient", status: 503, check: IsTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyHTTPStatus("test-op", tt.status, "body")
			if tt.isNil {
				if err != nil {
					t.Errorf("expected nil error for status %d, got %v", tt.status, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
			if !tt.check(err) {
				t.Errorf("status %d misclassified: %v", tt.status, err)
			}
		})
	}
}

func TestAuthErrorNotTransient(t *testing.T) {
	// 401/403 must never be retried or treated as Absent
	err := ClassifyHTTPStatus("list scan configurations", 403, "")
	if IsTransient(err) {
		t.Error("auth error classified as transient")
	}
	if IsValidation(err) {
		t.Error("auth error classified as validation")
	}
}

func TestErrorWrapping(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := &TransientError{Op: "apply", Err: inner}

	if !IsTransient(err) {
		t.Error("expected transient classification")
	}
	wrapped := fmt.Errorf("step failed: %w", err)
	if !IsTransient(wrapped) {
		t.Error("expected transient classification through wrapping")
	}
}

func TestProbeErrorMessage(t *testing.T) {
	err := &ProbeError{
		Target: Target{
			Kind:     KindOperatorSubscription,
			Identity: Identity{Namespace: "stackrox", Name: "rhacs-operator"},
		},
		Err: fmt.Errorf("connection refused"),
	}

	want := "probe operator-subscription stackrox/rhacs-operator: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
