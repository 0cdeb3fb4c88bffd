package githubapi

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond throttles requests below the authenticated hourly quota.
	DefaultRequestsPerSecond = 1.2
	// DefaultMinimumRemaining is the reserve of requests kept before waiting for a reset.
	DefaultMinimumRemaining = 100
)

const (
	authenticatedRequestLimitConstant = 5000
	rateLimitHeaderConstant           = "X-RateLimit-Limit"
	rateRemainingHeaderConstant       = "X-RateLimit-Remaining"
	rateResetHeaderConstant           = "X-RateLimit-Reset"
)

// RateLimiter combines a proactive token bucket with the quota GitHub reports in response headers.
type RateLimiter struct {
	mutex            sync.Mutex
	remaining        int
	limit            int
	resetTime        time.Time
	bucket           *rate.Limiter
	minimumRemaining int
}

// NewRateLimiter creates a limiter allowing requestsPerSecond; non-positive values select DefaultRequestsPerSecond.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultRequestsPerSecond
	}
	return &RateLimiter{
		remaining:        authenticatedRequestLimitConstant,
		limit:            authenticatedRequestLimitConstant,
		bucket:           rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		minimumRemaining: DefaultMinimumRemaining,
	}
}

// Wait blocks until a request may be issued or the context ends.
func (limiter *RateLimiter) Wait(executionContext context.Context) error {
	if waitError := limiter.bucket.Wait(executionContext); waitError != nil {
		return waitError
	}

	limiter.mutex.Lock()
	remaining := limiter.remaining
	resetTime := limiter.resetTime
	limiter.mutex.Unlock()

	if remaining >= limiter.minimumRemaining || !time.Now().Before(resetTime) {
		return nil
	}

	timer := time.NewTimer(time.Until(resetTime))
	defer timer.Stop()
	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-timer.C:
		return nil
	}
}

// UpdateFromResponse records the quota advertised by response headers.
func (limiter *RateLimiter) UpdateFromResponse(response *http.Response) {
	if response == nil {
		return
	}

	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()

	if remainingValue, parseError := strconv.Atoi(response.Header.Get(rateRemainingHeaderConstant)); parseError == nil {
		limiter.remaining = remainingValue
	}
	if limitValue, parseError := strconv.Atoi(response.Header.Get(rateLimitHeaderConstant)); parseError == nil {
		limiter.limit = limitValue
	}
	if resetValue, parseError := strconv.ParseInt(response.Header.Get(rateResetHeaderConstant), 10, 64); parseError == nil {
		limiter.resetTime = time.Unix(resetValue, 0)
	}
}

// Remaining returns the last reported remaining request count.
func (limiter *RateLimiter) Remaining() int {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	return limiter.remaining
}

// Limit returns the last reported request limit.
func (limiter *RateLimiter) Limit() int {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	return limiter.limit
}

// ResetTime returns the last reported reset time.
func (limiter *RateLimiter) ResetTime() time.Time {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	return limiter.resetTime
}
