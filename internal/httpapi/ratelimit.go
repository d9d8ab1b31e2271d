package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// meRequestsPerMinute caps how often a single client may fetch its profile.
const meRequestsPerMinute = 3

// clientLimiter keeps one token bucket per client address.
type clientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rate.Limiter
	perMinute int
}

func newClientLimiter(perMinute int) *clientLimiter {
	return &clientLimiter{
		clients:   make(map[string]*rate.Limiter),
		perMinute: perMinute,
	}
}

func (l *clientLimiter) allow(addr string) bool {
	l.mu.Lock()
	limiter, ok := l.clients[addr]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMinute)), l.perMinute)
		l.clients[addr] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}
