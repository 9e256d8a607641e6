package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"notifyd/internal/domain/dispatch"
)

const tokensField = "fcmTokens"

// NewClient connects to Firestore. With an empty credentialsFile the SDK
// falls back to application default credentials.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*fs.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := fs.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// Store implements dispatch.RecipientStore over Firestore user documents.
// Each recipient is a document in the users collection carrying an
// fcmTokens string-array field.
type Store struct {
	client          *fs.Client
	usersCollection string
}

func NewStore(client *fs.Client, usersCollection string) *Store {
	return &Store{client: client, usersCollection: usersCollection}
}

func (s *Store) GetRecipient(ctx context.Context, userID string) (*dispatch.Recipient, error) {
	doc, err := s.client.Collection(s.usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}

	var data struct {
		FCMTokens []string `firestore:"fcmTokens"`
	}
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %w", userID, err)
	}

	return &dispatch.Recipient{UserID: userID, Tokens: data.FCMTokens}, nil
}

// RemoveTokens drops the given tokens from the user's fcmTokens array with
// a single ArrayRemove update. Firestore applies the removal atomically on
// the server, so concurrent token registrations by other processes survive.
func (s *Store) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	elems := make([]any, len(tokens))
	for i, token := range tokens {
		elems[i] = token
	}

	_, err := s.client.Collection(s.usersCollection).Doc(userID).Update(ctx, []fs.Update{
		{Path: tokensField, Value: fs.ArrayRemove(elems...)},
	})
	if err != nil {
		return fmt.Errorf("failed to remove tokens for user %s: %w", userID, err)
	}
	return nil
}
