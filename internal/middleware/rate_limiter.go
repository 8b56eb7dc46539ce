package middleware

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"maintdash/internal/auth"
)

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// limiter keeps one token bucket per key and forgets keys idle for ttl.
type limiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
}

func newLimiter(rpm, burst int, ttl time.Duration) *limiter {
	r := rate.Limit(float64(rpm) / 60.0)
	if rpm <= 0 {
		r = rate.Limit(1e-6)
	}
	if burst <= 0 {
		burst = 1
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &limiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
		ttl:      ttl,
	}
}

func (l *limiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) > l.ttl {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.lim.AllowN(now, 1)
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Rotating IP hasher (daily rotation) to avoid storing raw IPs.
var (
	rotMu   sync.Mutex
	rotSalt []byte
	rotDay  int
)

func ipKey(r *http.Request) string {
	host := r.RemoteAddr
	if ip, ok := auth.ClientIP(r); ok {
		host = ip.String()
	}
	rotMu.Lock()
	if d := time.Now().YearDay(); d != rotDay || rotSalt == nil {
		rotDay = d
		rotSalt = make([]byte, 16)
		_, _ = rand.Read(rotSalt)
	}
	h := sha256.New()
	h.Write(rotSalt)
	rotMu.Unlock()
	h.Write([]byte(host))
	// truncate for readability
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// RateLimitWith returns middleware limiting requests per principal.
// rpm: requests per minute; burst: bucket size; ttl: idle time before a
// principal's bucket is evicted.
func RateLimitWith(rpm int, burst int, ttl time.Duration) func(http.Handler) http.Handler {
	lim := newLimiter(rpm, burst, ttl)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var key string
			if sess, ok := auth.SessionFromContext(r.Context()); ok {
				key = "u:" + sess.UserID.String()
			} else {
				key = "ip:" + ipKey(r)
			}
			if !lim.allow(key, time.Now()) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
