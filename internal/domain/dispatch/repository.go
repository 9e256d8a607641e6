package dispatch

import "context"

// RecipientStore defines recipient-state access. Defined in the domain layer,
// implemented by the Firestore and Postgres stores in the infrastructure layer.
type RecipientStore interface {
	// GetRecipient returns the recipient and their current token set.
	// Returns (nil, nil) when no recipient exists for the id.
	GetRecipient(ctx context.Context, userID string) (*Recipient, error)

	// RemoveTokens removes the given tokens from the recipient's stored set
	// as one atomic set-difference mutation. Removing an already-removed
	// token is a no-op, so the call is safe to retry. Implementations must
	// not rewrite the whole set: concurrent registrations of new tokens by
	// other processes have to survive.
	RemoveTokens(ctx context.Context, userID string, tokens []string) error
}

// Gateway sends a multicast message to the push transport and reports one
// outcome per token, in input token order. A partial-failure send (some
// tokens fail, others succeed) is a successful call; the whole call fails
// only when the transport itself is unreachable, in which case the error
// wraps ErrGatewayUnavailable.
type Gateway interface {
	Send(ctx context.Context, msg *Message) ([]DeliveryOutcome, error)
}
