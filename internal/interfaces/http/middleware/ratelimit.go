package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/turtacn/CohortMap/pkg/errors"
)

// RateLimitInfo describes the caller's bucket after a request.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	// RetryAfter is how long until one token is available; zero when allowed.
	RetryAfter time.Duration
}

// RateLimiter decides whether a request keyed by key may proceed.
type RateLimiter interface {
	Allow(key string) (bool, RateLimitInfo)
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter keeps one token bucket per key.  Buckets live in an
// expiring LRU so idle clients are forgotten.
type TokenBucketLimiter struct {
	rate    float64
	burst   int
	buckets *expirable.LRU[string, *tokenBucket]
	mu      sync.Mutex
	now     func() time.Time
}

// NewTokenBucketLimiter allows rate requests per second with bursts of burst.
// At most maxKeys clients are tracked at once.
func NewTokenBucketLimiter(rate float64, burst, maxKeys int) *TokenBucketLimiter {
	if burst < 1 {
		burst = 1
	}
	if maxKeys < 1 {
		maxKeys = 10000
	}
	idle := time.Minute
	if rate > 0 {
		// A bucket idle this long has refilled completely.
		idle = time.Duration(math.Ceil(float64(burst)/rate)) * time.Second
	}
	return &TokenBucketLimiter{
		rate:    rate,
		burst:   burst,
		buckets: expirable.NewLRU[string, *tokenBucket](maxKeys, nil, idle),
		now:     time.Now,
	}
}

func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.Lock()
	bucket, ok := l.buckets.Get(key)
	if !ok {
		bucket = &tokenBucket{tokens: float64(l.burst), lastRefill: now}
	}
	// Re-adding refreshes the idle expiry.
	l.buckets.Add(key, bucket)
	l.mu.Unlock()

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.tokens = math.Min(float64(l.burst), bucket.tokens+now.Sub(bucket.lastRefill).Seconds()*l.rate)
	bucket.lastRefill = now

	info := RateLimitInfo{Limit: l.burst}
	if bucket.tokens >= 1 {
		bucket.tokens--
		info.Remaining = int(bucket.tokens)
		return true, info
	}
	if l.rate > 0 {
		info.RetryAfter = time.Duration((1 - bucket.tokens) / l.rate * float64(time.Second))
	} else {
		info.RetryAfter = time.Hour
	}
	return false, info
}

// Len returns the number of tracked clients.
func (l *TokenBucketLimiter) Len() int { return l.buckets.Len() }

// ClientIP keys requests by remote address.  Run chi's RealIP middleware first
// to honour proxy headers.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limiter's budget with 429.
func RateLimit(limiter RateLimiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, info := limiter.Allow(keyFunc(r))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			if allowed {
				next.ServeHTTP(w, r)
				return
			}

			retry := int(math.Ceil(info.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"code":    string(errors.CodeRateLimit),
				"message": "rate limit exceeded, retry after " + strconv.Itoa(retry) + "s",
			})
		})
	}
}

//Personal.AI order the ending
