package dispatch

import (
	"context"
	"fmt"
)

// Resolver loads the recipient targeted by a notification record.
type Resolver struct {
	store RecipientStore
}

func NewResolver(store RecipientStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the owning recipient and their token set, or (nil, nil)
// when the record has no user id, no recipient exists for it, or the
// recipient has no registered tokens. Those cases end the pipeline as a
// successful no-op, not an error. Pure read, no side effects.
func (r *Resolver) Resolve(ctx context.Context, record *Record) (*Recipient, error) {
	if record == nil || record.UserID == "" {
		return nil, nil
	}

	recipient, err := r.store.GetRecipient(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recipient %s: %w", record.UserID, err)
	}

	if recipient == nil || len(recipient.Tokens) == 0 {
		return nil, nil
	}

	return recipient, nil
}
