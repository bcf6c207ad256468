package services

import (
	"errors"
	"sync"
	"time"
)

var ErrRateLimited = errors.New("client rate limit exceeded")

// RateLimiter caps outgoing requests per operation in fixed windows.
// A nil or zero limiter allows everything.
type RateLimiter struct {
	requests int
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	windows map[string]*opWindow
}

type opWindow struct {
	count   int
	expires time.Time
}

func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 || window <= 0 {
		return &RateLimiter{}
	}
	return &RateLimiter{
		requests: requests,
		window:   window,
		now:      time.Now,
		windows:  make(map[string]*opWindow),
	}
}

// Allow records one request for op and reports whether it fits the window.
func (r *RateLimiter) Allow(op string) bool {
	if r == nil || r.requests == 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	state, ok := r.windows[op]
	if !ok || now.After(state.expires) {
		r.windows[op] = &opWindow{count: 1, expires: now.Add(r.window)}
		return true
	}
	if state.count >= r.requests {
		return false
	}
	state.count++
	return true
}
