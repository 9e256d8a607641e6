package dispatch

import (
	"context"
	"errors"
	"testing"
)

func TestReconcile_RemovesPermanentFailures(t *testing.T) {
	var removed []string
	store := &MockStore{
		RemoveTokensFunc: func(ctx context.Context, userID string, tokens []string) error {
			if userID != "u1" {
				t.Errorf("RemoveTokens userID = %q, want %q", userID, "u1")
			}
			removed = tokens
			return nil
		},
	}
	reconciler := NewReconciler(store)

	tokens := []string{"t1", "t2", "t3"}
	outcomes := []DeliveryOutcome{
		{Success: true},
		{Success: false, ErrorCode: ErrCodeInvalidToken},
		{Success: false, ErrorCode: ErrCodeUnregistered},
	}

	dead, err := reconciler.Reconcile(context.Background(), "u1", tokens, outcomes)
	if err != nil {
		t.Fatalf("Reconcile() error = %v, want nil", err)
	}
	if len(dead) != 2 || dead[0] != "t2" || dead[1] != "t3" {
		t.Errorf("Reconcile() removed = %v, want [t2 t3]", dead)
	}
	if len(removed) != 2 {
		t.Errorf("store received %v, want 2 tokens", removed)
	}
}

func TestReconcile_TransientFailuresUntouched(t *testing.T) {
	store := &MockStore{}
	reconciler := NewReconciler(store)

	tokens := []string{"t1", "t2"}
	outcomes := []DeliveryOutcome{
		{Success: false, ErrorCode: ErrCodeQuotaExceeded},
		{Success: false, ErrorCode: ErrCodeUnknown},
	}

	dead, err := reconciler.Reconcile(context.Background(), "u1", tokens, outcomes)
	if err != nil {
		t.Fatalf("Reconcile() error = %v, want nil", err)
	}
	if dead != nil {
		t.Errorf("Reconcile() removed = %v, want nil", dead)
	}
	if store.RemoveTokensCalls != 0 {
		t.Errorf("RemoveTokens called %d times, want 0 for transient failures", store.RemoveTokensCalls)
	}
}

func TestReconcile_AllSuccessNoWrite(t *testing.T) {
	store := &MockStore{}
	reconciler := NewReconciler(store)

	dead, err := reconciler.Reconcile(context.Background(), "u1",
		[]string{"t1", "t2"},
		[]DeliveryOutcome{{Success: true}, {Success: true}},
	)
	if err != nil {
		t.Fatalf("Reconcile() error = %v, want nil", err)
	}
	if dead != nil || store.RemoveTokensCalls != 0 {
		t.Errorf("expected no-op, got removed=%v calls=%d", dead, store.RemoveTokensCalls)
	}
}

// Reconciling an already-reduced token set a second time issues no further
// mutation: the dead tokens are gone from the input, so the removal set is
// empty and the call is a no-op.
func TestReconcile_Idempotent(t *testing.T) {
	store := &MockStore{}
	reconciler := NewReconciler(store)

	outcomes := []DeliveryOutcome{
		{Success: true},
		{Success: false, ErrorCode: ErrCodeUnregistered},
	}

	dead, err := reconciler.Reconcile(context.Background(), "u1", []string{"t1", "t2"}, outcomes)
	if err != nil {
		t.Fatalf("first Reconcile() error = %v", err)
	}
	if len(dead) != 1 || dead[0] != "t2" {
		t.Fatalf("first Reconcile() removed = %v, want [t2]", dead)
	}

	// Second pass over the reduced set: outcome for the surviving token only.
	dead, err = reconciler.Reconcile(context.Background(), "u1", []string{"t1"}, outcomes[:1])
	if err != nil {
		t.Fatalf("second Reconcile() error = %v", err)
	}
	if dead != nil {
		t.Errorf("second Reconcile() removed = %v, want nil", dead)
	}
	if store.RemoveTokensCalls != 1 {
		t.Errorf("RemoveTokens called %d times, want 1", store.RemoveTokensCalls)
	}
}

func TestReconcile_WriteError(t *testing.T) {
	writeErr := errors.New("write failed")
	store := &MockStore{
		RemoveTokensFunc: func(ctx context.Context, userID string, tokens []string) error {
			return writeErr
		},
	}
	reconciler := NewReconciler(store)

	_, err := reconciler.Reconcile(context.Background(), "u1",
		[]string{"t1"},
		[]DeliveryOutcome{{Success: false, ErrorCode: ErrCodeInvalidToken}},
	)
	if !errors.Is(err, writeErr) {
		t.Errorf("Reconcile() error = %v, want wrapped %v", err, writeErr)
	}
}

func TestIsPermanentFailure(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{ErrCodeInvalidToken, true},
		{ErrCodeUnregistered, true},
		{ErrCodeQuotaExceeded, false},
		{ErrCodeUnavailable, false},
		{ErrCodeInternal, false},
		{ErrCodeUnknown, false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsPermanentFailure(tt.code); got != tt.want {
			t.Errorf("IsPermanentFailure(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
