package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"notifyd/internal/domain/dispatch"
)

// TokenStore implements dispatch.RecipientStore over a push_tokens table:
//
//	CREATE TABLE push_tokens (
//	    user_id    TEXT NOT NULL,
//	    token      TEXT NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (user_id, token)
//	);
type TokenStore struct {
	db *DB
}

func NewTokenStore(db *DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) GetRecipient(ctx context.Context, userID string) (*dispatch.Recipient, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT token FROM push_tokens WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get push tokens: %w", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("failed to scan push token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// A user with no rows is indistinguishable from an unknown user here;
	// both resolve to an absent recipient upstream.
	if len(tokens) == 0 {
		return nil, nil
	}

	return &dispatch.Recipient{UserID: userID, Tokens: tokens}, nil
}

// RemoveTokens deletes the given tokens in one statement. The delete is a
// set-difference against the current rows, so a concurrent insert of a new
// token is never clobbered and re-deleting an already-removed token is a
// no-op.
func (s *TokenStore) RemoveTokens(ctx context.Context, userID string, tokens []string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM push_tokens WHERE user_id = $1 AND token = ANY($2)`,
		userID, pq.Array(tokens),
	)
	if err != nil {
		return fmt.Errorf("failed to remove push tokens: %w", err)
	}
	return nil
}
