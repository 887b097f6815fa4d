// Package tokens declares the persistence contract for issued session tokens.
package tokens

import "context"

// Repository stores session tokens by their SHA-256 hash, never the raw value.
type Repository interface {
	// Create records a new session for userID.
	Create(ctx context.Context, userID, tokenHash string) error

	// FindUserID returns the owner of tokenHash or common.ErrorNotFound.
	FindUserID(ctx context.Context, tokenHash string) (string, error)

	// Delete removes a single session of userID. Deleting a missing token is
	// not an error.
	Delete(ctx context.Context, userID, tokenHash string) error

	// DeleteAllForUser removes every session of userID and returns how many
	// were removed.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}
