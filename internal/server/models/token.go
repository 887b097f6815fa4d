package models

import "time"

// Token is an issued session. Only the SHA-256 hash of the raw token string
// is stored.
type Token struct {
	ID        int64
	UserID    string
	TokenHash string
	CreatedAt time.Time
}
