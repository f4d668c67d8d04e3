package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"threadsync/pkg/utils"
)

type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	rps   float64
	burst int
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[key]; ok {
		return l
	}
	rps := p.rps
	if rps <= 0 {
		rps = 20
	}
	burst := p.burst
	if burst <= 0 {
		burst = 40
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[key] = l
	return l
}

func (p *limiterPool) Allow(key string) bool {
	return p.get(key).Allow()
}

// RateLimit returns middleware applying a per-client token bucket. The
// client key is the remote host (the API listens on localhost; this guards
// against a runaway UI loop, not adversaries).
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	pool := &limiterPool{rps: rps, burst: burst}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			if !pool.Allow(host) {
				utils.JSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
