// Package models holds the server-side domain types persisted by the
// repositories. None of them carry JSON tags: client representations are
// shaped at the API boundary.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash and Avatar, when
// set, holds PNG bytes.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Age          int
	Avatar       []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a copy that shares no mutable memory with u.
func (u *User) Clone() *User {
	c := *u
	if u.Avatar != nil {
		c.Avatar = append([]byte(nil), u.Avatar...)
	}
	return &c
}
