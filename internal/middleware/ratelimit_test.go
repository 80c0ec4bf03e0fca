// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"
)

// testLimiter returns a limiter driven by a manual clock. Advance the clock
// through the returned pointer.
func testLimiter(writes int, window time.Duration, trusted ...string) (*RateLimiter, *time.Time) {
	var proxies []netip.Prefix
	for _, p := range trusted {
		proxies = append(proxies, netip.MustParsePrefix(p))
	}
	rl := NewRateLimiter(RateLimitConfig{Writes: writes, Window: window, TrustedProxies: proxies})
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return clock }
	return rl, &clock
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func write(h http.Handler, method, remote string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/posts", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiterWriteAllowance(t *testing.T) {
	rl, clock := testLimiter(2, time.Minute)
	h := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		if rr := write(h, http.MethodPost, "198.51.100.4:5000", nil); rr.Code != http.StatusOK {
			t.Fatalf("write %d: got %d, want 200", i+1, rr.Code)
		}
	}

	rr := write(h, http.MethodDelete, "198.51.100.4:5001", nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third write: got %d, want 429", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Errorf("Retry-After: got %q, want 30", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	// Another client has its own allowance.
	if rr := write(h, http.MethodPost, "198.51.100.5:5000", nil); rr.Code != http.StatusOK {
		t.Errorf("other client: got %d, want 200", rr.Code)
	}

	// One token comes back every window/writes.
	*clock = clock.Add(30 * time.Second)
	if rr := write(h, http.MethodPut, "198.51.100.4:5000", nil); rr.Code != http.StatusOK {
		t.Errorf("after refill: got %d, want 200", rr.Code)
	}
	if rr := write(h, http.MethodPut, "198.51.100.4:5000", nil); rr.Code != http.StatusTooManyRequests {
		t.Errorf("refill is one token: got %d, want 429", rr.Code)
	}
}

func TestRateLimiterRejectedWritesCostNothing(t *testing.T) {
	rl, clock := testLimiter(1, time.Minute)
	h := rl.Middleware(okHandler())

	write(h, http.MethodPost, "198.51.100.4:5000", nil)
	for i := 0; i < 5; i++ {
		write(h, http.MethodPost, "198.51.100.4:5000", nil)
	}

	*clock = clock.Add(time.Minute)
	if rr := write(h, http.MethodPost, "198.51.100.4:5000", nil); rr.Code != http.StatusOK {
		t.Errorf("after one window: got %d, want 200", rr.Code)
	}
}

func TestRateLimiterReadsPassThrough(t *testing.T) {
	rl, _ := testLimiter(1, time.Minute)
	h := rl.Middleware(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodGet} {
		if rr := write(h, method, "198.51.100.4:5000", nil); rr.Code != http.StatusOK {
			t.Errorf("%s: got %d, want 200", method, rr.Code)
		}
	}
	if rr := write(h, http.MethodPost, "198.51.100.4:5000", nil); rr.Code != http.StatusOK {
		t.Errorf("reads must not spend the write allowance: got %d", rr.Code)
	}
}

func TestRateLimiterIgnoresForwardingFromUntrustedPeers(t *testing.T) {
	rl, _ := testLimiter(1, time.Minute)
	h := rl.Middleware(okHandler())

	accepted := 0
	for i := 0; i < 50; i++ {
		rr := write(h, http.MethodPost, "203.0.113.7:40000", map[string]string{
			"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i),
			"X-Real-IP":       fmt.Sprintf("10.0.1.%d", i),
		})
		if rr.Code == http.StatusOK {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("accepted %d writes from one peer with rotating headers, want 1", accepted)
	}

	rl.mu.Lock()
	n := len(rl.buckets)
	rl.mu.Unlock()
	if n != 1 {
		t.Errorf("buckets: got %d, want 1", n)
	}
}

func TestRateLimiterTrustedProxy(t *testing.T) {
	rl, _ := testLimiter(1, time.Minute, "10.1.0.0/16")
	h := rl.Middleware(okHandler())

	// Two clients behind the same proxy get separate allowances.
	for _, client := range []string{"198.51.100.20", "198.51.100.21"} {
		rr := write(h, http.MethodPost, "10.1.2.3:8000", map[string]string{"X-Forwarded-For": client})
		if rr.Code != http.StatusOK {
			t.Errorf("client %s: got %d, want 200", client, rr.Code)
		}
	}

	// A forged leftmost entry does not change who is charged.
	rr := write(h, http.MethodPost, "10.1.2.3:8000", map[string]string{"X-Forwarded-For": "1.2.3.4, 198.51.100.20"})
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("forged prefix: got %d, want 429", rr.Code)
	}
}

func TestClientAddr(t *testing.T) {
	rl, _ := testLimiter(1, time.Minute, "10.1.0.0/16", "::1/128")

	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "untrusted peer", remote: "203.0.113.7:1234", headers: map[string]string{"X-Forwarded-For": "10.0.0.1"}, want: "203.0.113.7"},
		{name: "untrusted peer real ip", remote: "203.0.113.7:1234", headers: map[string]string{"X-Real-IP": "10.0.0.1"}, want: "203.0.113.7"},
		{name: "trusted peer", remote: "10.1.0.9:1234", headers: map[string]string{"X-Forwarded-For": "198.51.100.1"}, want: "198.51.100.1"},
		{name: "trusted chain", remote: "10.1.0.9:1234", headers: map[string]string{"X-Forwarded-For": "198.51.100.1, 10.1.0.8"}, want: "198.51.100.1"},
		{name: "rightmost untrusted wins", remote: "10.1.0.9:1234", headers: map[string]string{"X-Forwarded-For": "6.6.6.6, 198.51.100.1"}, want: "198.51.100.1"},
		{name: "trusted peer real ip", remote: "10.1.0.9:1234", headers: map[string]string{"X-Real-IP": "198.51.100.2"}, want: "198.51.100.2"},
		{name: "trusted peer garbage header", remote: "10.1.0.9:1234", headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, want: "10.1.0.9"},
		{name: "trusted peer no headers", remote: "10.1.0.9:1234", want: "10.1.0.9"},
		{name: "ipv6 loopback proxy", remote: "[::1]:1234", headers: map[string]string{"X-Forwarded-For": "2001:db8::1"}, want: "2001:db8::1"},
		{name: "ipv4 mapped", remote: "[::ffff:203.0.113.7]:1234", want: "203.0.113.7"},
		{name: "no port", remote: "203.0.113.7", want: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := rl.clientAddr(req).String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimiterEvictIdle(t *testing.T) {
	rl, clock := testLimiter(5, time.Minute)

	rl.reserve(netip.MustParseAddr("198.51.100.1"))
	*clock = clock.Add(45 * time.Second)
	rl.reserve(netip.MustParseAddr("198.51.100.2"))
	*clock = clock.Add(30 * time.Second)

	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.buckets[netip.MustParseAddr("198.51.100.1")]; ok {
		t.Error("idle client should be evicted")
	}
	if _, ok := rl.buckets[netip.MustParseAddr("198.51.100.2")]; !ok {
		t.Error("recent client should be kept")
	}
}

func TestNewRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	if rl.cfg.Writes != 1 || rl.cfg.Window != time.Minute {
		t.Errorf("defaults: got %d per %v", rl.cfg.Writes, rl.cfg.Window)
	}
}
