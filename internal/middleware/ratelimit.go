package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"telegram_booking_assistant/pkg/logger"
)

// TokenBucket implements the token bucket rate limiting algorithm
type TokenBucket struct {
	capacity   int
	tokens     int
	refillRate int // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new TokenBucket
func NewTokenBucket(capacity, refillRate int) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow reports whether a token is available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int(elapsed.Seconds()) * tb.refillRate
	tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
	tb.lastRefill = now

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// RateLimiter provides per-key request rate limiting
type RateLimiter struct {
	limiters   map[string]*TokenBucket
	mu         sync.RWMutex
	capacity   int
	refillRate int
	log        *logger.Logger

	cleanupInterval time.Duration
	lastAccess      map[string]time.Time
	done            chan struct{}
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requests int, duration time.Duration, log *logger.Logger) *RateLimiter {
	refillRate := int(float64(requests) / duration.Seconds())
	if refillRate == 0 {
		refillRate = 1
	}

	rl := &RateLimiter{
		limiters:        make(map[string]*TokenBucket),
		lastAccess:      make(map[string]time.Time),
		capacity:        requests,
		refillRate:      refillRate,
		log:             log,
		cleanupInterval: 5 * time.Minute,
		done:            make(chan struct{}),
	}

	go rl.cleanupRoutine()

	return rl
}

// Allow reports whether a request is allowed for the given key
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = NewTokenBucket(rl.capacity, rl.refillRate)
		rl.limiters[key] = limiter
	}
	rl.lastAccess[key] = time.Now()
	rl.mu.Unlock()

	return limiter.Allow()
}

// cleanupRoutine periodically removes unused limiters
func (rl *RateLimiter) cleanupRoutine() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

// cleanup removes limiters idle for more than 10 minutes
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	var cleaned int

	for key, lastAccessed := range rl.lastAccess {
		if lastAccessed.Before(cutoff) {
			delete(rl.limiters, key)
			delete(rl.lastAccess, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		rl.log.Debug("Cleaned up rate limiters",
			logger.Int("cleaned_count", cleaned),
			logger.Int("remaining_count", len(rl.limiters)),
		)
	}
}

// Close stops the cleanup routine
func (rl *RateLimiter) Close() {
	close(rl.done)
}

// HTTPRateLimitMiddleware creates an HTTP middleware for rate limiting by IP
func HTTPRateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := getRealIP(r)

			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					logger.String("ip", key),
					logger.String("user_agent", r.UserAgent()),
				)

				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// TelegramRateLimiter is a per-chat limiter layered over a global bucket
type TelegramRateLimiter struct {
	userLimiter   *RateLimiter
	globalLimiter *TokenBucket
	log           *logger.Logger
}

// NewTelegramRateLimiter creates the Telegram-facing rate limiter
func NewTelegramRateLimiter(
	userRequestsPerMinute int,
	globalRequestsPerSecond int,
	log *logger.Logger,
) *TelegramRateLimiter {
	return &TelegramRateLimiter{
		userLimiter:   NewRateLimiter(userRequestsPerMinute, time.Minute, log),
		globalLimiter: NewTokenBucket(globalRequestsPerSecond, globalRequestsPerSecond),
		log:           log,
	}
}

// AllowUser reports whether the chat may send another message
func (trl *TelegramRateLimiter) AllowUser(chatID int64) bool {
	userKey := fmt.Sprintf("user_%d", chatID)

	if !trl.globalLimiter.Allow() {
		trl.log.Warn("Global rate limit exceeded",
			logger.Int64("chat_id", chatID),
		)
		return false
	}

	if !trl.userLimiter.Allow(userKey) {
		trl.log.Warn("User rate limit exceeded",
			logger.Int64("chat_id", chatID),
		)
		return false
	}

	return true
}

// Close releases limiter resources
func (trl *TelegramRateLimiter) Close() {
	trl.userLimiter.Close()
}

// getRealIP extracts the client IP, honoring common proxy headers
func getRealIP(r *http.Request) string {
	headers := []string{
		"CF-Connecting-IP",
		"X-Forwarded-For",
		"X-Real-IP",
		"X-Forwarded",
		"X-Cluster-Client-IP",
	}

	for _, header := range headers {
		ip := r.Header.Get(header)
		if ip != "" {
			// X-Forwarded-For may hold a comma-separated chain
			if header == "X-Forwarded-For" {
				parts := strings.Split(ip, ",")
				if len(parts) > 0 {
					return strings.TrimSpace(parts[0])
				}
			}
			return ip
		}
	}

	return r.RemoteAddr
}

// min returns the smaller of two ints
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
