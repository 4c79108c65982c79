package ratelimit

import (
	"context"
	"fmt"
)

const (
	requestRate  = 25.0
	requestBurst = 50
)

// RequestLimiter throttles API requests per client key. A nil bucket
// (no Redis configured) means every request is allowed.
type RequestLimiter struct {
	bucket *TokenBucket
}

func NewRequestLimiter(bucket *TokenBucket) *RequestLimiter {
	return &RequestLimiter{bucket: bucket}
}

func (l *RequestLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *RequestLimiter) Allow(ctx context.Context, clientKey string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf("ratelimit:api:%s", clientKey)
	return l.bucket.Allow(ctx, key, requestRate, requestBurst)
}
