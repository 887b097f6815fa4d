// Package ratelimit bounds how often a client may attempt to log in.
package ratelimit

import "context"

// Limiter decides whether one more attempt for key is allowed right now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// Unlimited allows everything. It is used when the limit is configured as 0.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) { return true, nil }
func (Unlimited) Close() error                                { return nil }
