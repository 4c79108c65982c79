package ratelimit

import (
	"context"
	"fmt"
)

const (
	// Refill of one attempt every 12 seconds, short burst for typos.
	loginRate  = 1.0 / 12.0
	loginBurst = 5
)

// LoginLimiter throttles credential attempts per client IP, separately
// from the general API limiter so a flood of login attempts cannot
// consume a user's request budget.
type LoginLimiter struct {
	bucket *TokenBucket
}

func NewLoginLimiter(bucket *TokenBucket) *LoginLimiter {
	return &LoginLimiter{bucket: bucket}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *LoginLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf("ratelimit:login:%s", clientKey)
	return l.bucket.Allow(ctx, key, loginRate, loginBurst)
}
