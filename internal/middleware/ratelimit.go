// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures write throttling for the API.
type RateLimitConfig struct {
	// Writes is the number of write requests a client may make per Window.
	// The full allowance is available as a burst.
	Writes int
	Window time.Duration

	// TrustedProxies lists the peers whose X-Forwarded-For and X-Real-IP
	// headers are believed. Requests from anyone else are keyed on the
	// connection's remote address.
	TrustedProxies []netip.Prefix
}

type writeBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles write requests per client address with a token
// bucket that refills Writes tokens every Window.
type RateLimiter struct {
	cfg   RateLimitConfig
	every rate.Limit

	mu      sync.Mutex
	buckets map[netip.Addr]*writeBucket
	now     func() time.Time
}

// NewRateLimiter returns a limiter for cfg. Call Run to evict idle clients.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Writes < 1 {
		cfg.Writes = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &RateLimiter{
		cfg:     cfg,
		every:   rate.Every(cfg.Window / time.Duration(cfg.Writes)),
		buckets: make(map[netip.Addr]*writeBucket),
		now:     time.Now,
	}
}

// Run evicts idle clients once per window until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.cfg.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

// evictIdle drops clients not seen for a full window. Their buckets would
// have refilled by now, so forgetting them changes nothing.
func (rl *RateLimiter) evictIdle() {
	cutoff := rl.now().Add(-rl.cfg.Window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for addr, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, addr)
		}
	}
}

// reserve takes one token for client. When none is available it returns
// how long the client has to wait, and takes nothing.
func (rl *RateLimiter) reserve(client netip.Addr) (time.Duration, bool) {
	now := rl.now()

	rl.mu.Lock()
	b, ok := rl.buckets[client]
	if !ok {
		b = &writeBucket{limiter: rate.NewLimiter(rl.every, rl.cfg.Writes)}
		rl.buckets[client] = b
	}
	b.lastSeen = now
	rl.mu.Unlock()

	res := b.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return delay, false
	}
	return 0, true
}

// Middleware rejects write requests over the client's allowance with 429.
// GET, HEAD and OPTIONS pass through untouched.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if wait, ok := rl.reserve(rl.clientAddr(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "Too many write requests, retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAddr identifies the client a request is charged to. Forwarding
// headers only count when the connection comes from a trusted proxy; the
// X-Forwarded-For chain is then walked from the right, skipping trusted
// hops, and the first untrusted address wins.
func (rl *RateLimiter) clientAddr(r *http.Request) netip.Addr {
	peer := remoteAddr(r.RemoteAddr)
	if !rl.trusted(peer) {
		return peer
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			addr = addr.Unmap()
			if !rl.trusted(addr) {
				return addr
			}
		}
	}

	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.Unmap()
	}
	return peer
}

func (rl *RateLimiter) trusted(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	for _, p := range rl.cfg.TrustedProxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// remoteAddr parses http.Request.RemoteAddr. An unparsable value yields the
// zero Addr, which all such requests then share.
func remoteAddr(s string) netip.Addr {
	if ap, err := netip.ParseAddrPort(s); err == nil {
		return ap.Addr().Unmap()
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.Unmap()
	}
	return netip.Addr{}
}
