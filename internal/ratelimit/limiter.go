package ratelimit

import "context"

// RateLimiter throttles routing-log ingest per channel.
type RateLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
	Wait(ctx context.Context, channel string) error
}
