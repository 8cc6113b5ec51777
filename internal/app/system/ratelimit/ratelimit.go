// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit types reported by LoginLimiter.Check.
const (
	LimitIP    = "ip"
	LimitEmail = "email"
)

// keyed holds one token bucket per key. A bucket refills n attempts per
// period and starts full. Buckets idle for longer than a period are full
// again, so the sweep drops them.
type keyed struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	every   rate.Limit
	burst   int
	period  time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newKeyed(n int, period time.Duration) *keyed {
	return &keyed{
		buckets: make(map[string]*bucket),
		every:   rate.Every(period / time.Duration(n)),
		burst:   n,
		period:  period,
	}
}

// take spends one token for key. When none is left it reports how long
// until the next one.
func (k *keyed) take(key string) (bool, time.Duration) {
	now := time.Now()

	k.mu.Lock()
	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.every, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	k.sweep(now)
	k.mu.Unlock()

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (k *keyed) reset(key string) {
	k.mu.Lock()
	delete(k.buckets, key)
	k.mu.Unlock()
}

// sweep drops idle buckets. Callers hold k.mu.
func (k *keyed) sweep(now time.Time) {
	if len(k.buckets) < 1024 {
		return
	}
	for key, b := range k.buckets {
		if now.Sub(b.lastSeen) > k.period {
			delete(k.buckets, key)
		}
	}
}

// ClientIP returns the host part of r.RemoteAddr. Proxy headers are honoured
// only through chi's middleware.RealIP, which rewrites RemoteAddr upstream.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LoginLimiter throttles login attempts per client IP and per email, so
// neither a single source nor a spread of sources can grind one account.
type LoginLimiter struct {
	byIP    *keyed
	byEmail *keyed
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email
// per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

func NewLoginLimiterWithConfig(ipLimit int, ipPeriod time.Duration, emailLimit int, emailPeriod time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP:    newKeyed(ipLimit, ipPeriod),
		byEmail: newKeyed(emailLimit, emailPeriod),
	}
}

// Decision is the outcome of one LoginLimiter.Check.
type Decision struct {
	Allowed    bool
	LimitType  string
	Message    string
	RetryAfter time.Duration
}

// Check records one attempt. A refused attempt names the limit that
// tripped, a message for the client and when to retry.
func (ll *LoginLimiter) Check(r *http.Request, email string) Decision {
	if ok, wait := ll.byIP.take(ClientIP(r)); !ok {
		return Decision{
			LimitType:  LimitIP,
			Message:    "Too many login attempts. Please wait a minute before trying again.",
			RetryAfter: wait,
		}
	}
	if key := emailKey(email); key != "" {
		if ok, wait := ll.byEmail.take(key); !ok {
			return Decision{
				LimitType:  LimitEmail,
				Message:    "Too many login attempts for this account. Please wait a few minutes.",
				RetryAfter: wait,
			}
		}
	}
	return Decision{Allowed: true}
}

// ResetEmail refills the per-email bucket after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := emailKey(email); key != "" {
		ll.byEmail.reset(key)
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
