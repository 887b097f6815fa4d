// Package common holds sentinel errors, header names and small helpers shared
// by the server and the client. Match the errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrEmailTaken = errors.New("email is already registered")

	// Service-level errors.
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("unable to login")
	ErrInvalidUpdates     = errors.New("invalid updates")
	ErrNoAvatar           = errors.New("no avatar for this user")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Upload errors.
	ErrFileTooLarge = errors.New("file too large")
	ErrNotAnImage   = errors.New("please upload an image")
)
