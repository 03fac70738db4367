package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SessionValidator checks the session token presented with a dive request.
type SessionValidator interface {
	Validate(token string) bool
}

// StaticTokenValidator accepts exactly one configured token.
type StaticTokenValidator struct {
	Token string
}

func (v StaticTokenValidator) Validate(token string) bool {
	return token != "" && token == v.Token
}

// sessionGate rejects requests whose X-Session-Token fails validation.
func sessionGate(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Validate(r.Header.Get("X-Session-Token")) {
				writeError(w, http.StatusUnauthorized, "invalid session")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

const (
	// limiterIdleTTL is how long a client entry may sit unused before it is
	// eligible for eviction.
	limiterIdleTTL = 3 * time.Minute
	// limiterPruneSize caps the tracked-client map; admitting a new client
	// beyond it triggers a sweep of idle entries.
	limiterPruneSize = 4096
)

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter applies a per-client token bucket keyed by remote IP. Idle
// entries are evicted once the map fills so it does not grow with every IP
// ever seen.
type ClientLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientEntry
	rps      rate.Limit
	burst    int
}

// NewClientLimiter creates a limiter allowing rps requests per second with
// the given burst per client.
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		limiters: make(map[string]*clientEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *ClientLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= limiterPruneSize {
			l.prune(now)
		}
		e = &clientEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim
}

// prune drops entries idle longer than the TTL. Caller holds mu.
func (l *ClientLimiter) prune(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(l.limiters, k)
		}
	}
}

// Middleware rejects requests that exceed the client's budget.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !l.limiterFor(host).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
