package cli

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// loginLimiter throttles credential commands per username so a scripted
// caller cannot brute-force the credential store.
type loginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	r       rate.Limit
	burst   int
}

func newLoginLimiter(rps float64, burst int) *loginLimiter {
	ll := &loginLimiter{
		buckets: make(map[string]*bucket),
		r:       rate.Limit(rps),
		burst:   burst,
	}
	// cleanup stale entries every minute
	go func() {
		for {
			time.Sleep(time.Minute)
			ll.mu.Lock()
			for name, b := range ll.buckets {
				if time.Since(b.seen) > 3*time.Minute {
					delete(ll.buckets, name)
				}
			}
			ll.mu.Unlock()
		}
	}()
	return ll
}

func (ll *loginLimiter) allow(username string) bool {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	b, ok := ll.buckets[username]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(ll.r, ll.burst)}
		ll.buckets[username] = b
	}
	b.seen = time.Now()
	return b.lim.Allow()
}
