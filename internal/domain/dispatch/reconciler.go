package dispatch

import (
	"context"
	"fmt"
	"log"
)

// Reconciler inspects per-token delivery outcomes and prunes tokens that
// will never deliver again.
type Reconciler struct {
	store RecipientStore
}

func NewReconciler(store RecipientStore) *Reconciler {
	return &Reconciler{store: store}
}

// Reconcile classifies each failing outcome and removes permanently-failed
// tokens from the recipient in a single atomic set-difference mutation.
// Outcomes are paired with tokens by index. Transient failures leave the
// token untouched for the next triggering event. When no token is
// permanently dead, no write is issued at all. Returns the removed tokens.
func (r *Reconciler) Reconcile(ctx context.Context, userID string, tokens []string, outcomes []DeliveryOutcome) ([]string, error) {
	var dead []string
	for i, outcome := range outcomes {
		if i >= len(tokens) {
			break
		}
		if outcome.Success {
			continue
		}
		if IsPermanentFailure(outcome.ErrorCode) {
			dead = append(dead, tokens[i])
		}
	}

	if len(dead) == 0 {
		return nil, nil
	}

	if err := r.store.RemoveTokens(ctx, userID, dead); err != nil {
		return nil, fmt.Errorf("failed to remove dead tokens for user %s: %w", userID, err)
	}

	log.Printf("Removed %d dead push token(s) for user %s", len(dead), userID)
	return dead, nil
}
