// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	httptypes "github.com/canonical/inventory-identity/internal/http/types"
	"github.com/canonical/inventory-identity/internal/logging"
	"github.com/canonical/inventory-identity/internal/monitoring"
)

const idleBucketTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle is a token bucket per client address for the unauthenticated entry
// points. It expects RealIP to have run first.
type Throttle struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastPrune time.Time

	limit rate.Limit
	burst int
	now   func() time.Time

	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := clientAddr(r)

		if !t.allow(addr) {
			t.logger.Warnf("throttled %s %s from %s", r.Method, r.URL.Path, addr)
			if err := t.monitor.IncrementEventCounter(map[string]string{"event": "throttled", "outcome": "failure"}); err != nil {
				t.logger.Debugf("failed to record throttled metric: %v", err)
			}

			w.Header().Set("Retry-After", "1")
			_ = httptypes.WriteJSON(w, http.StatusTooManyRequests, httptypes.Response{Message: "too many requests"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) allow(addr string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.lastPrune.IsZero() {
		t.lastPrune = now
	}
	if now.Sub(t.lastPrune) > idleBucketTTL {
		t.prune(now)
	}

	b, ok := t.buckets[addr]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.buckets[addr] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}

func (t *Throttle) prune(now time.Time) {
	for addr, b := range t.buckets {
		if now.Sub(b.lastSeen) > idleBucketTTL {
			delete(t.buckets, addr)
		}
	}
	t.lastPrune = now
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func NewThrottle(perSecond float64, burst int, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Throttle {
	t := new(Throttle)

	t.buckets = make(map[string]*bucket)
	t.limit = rate.Limit(perSecond)
	t.burst = burst
	if t.burst < 1 {
		t.burst = 1
	}
	t.now = time.Now

	t.monitor = monitor
	t.logger = logger

	return t
}
