package http

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientLimiter tracks one remote client's limiter and last use.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client token bucket to the OAuth endpoints,
// keyed by remote IP since those requests are anonymous by nature.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit    rate.Limit
	burst    int
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter builds a limiter allowing limit requests/second with the
// given burst, and starts a background sweep of idle client entries.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   limit,
		burst:   burst,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanupLoop(5 * time.Minute)
	return rl
}

// Stop terminates the background cleanup goroutine. Safe to call more
// than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// Middleware enforces the limit, answering 429 with Retry-After when the
// client's bucket is empty.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(clientIP(r.RemoteAddr)) {
				retryAfter := int(1 / float64(rl.limit))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP drops the ephemeral source port so all connections from one
// host share a bucket. RealIP may already have rewritten RemoteAddr to a
// bare IP, which is used as-is.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func (rl *RateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.clients[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[client] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(2 * interval)
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) cleanup(ttl time.Duration) {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for client, entry := range rl.clients {
		if now.Sub(entry.lastSeen) > ttl {
			delete(rl.clients, client)
		}
	}
}
