package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/inkwell/internal/testutil"
)

var start = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestLimiter_AllowsUpToLimitThenRefills(t *testing.T) {
	clock := testutil.NewClock(start)
	l := New(3, 3*time.Second)
	l.Now = clock.Now

	for i := 0; i < 3; i++ {
		if !l.Allow("k") {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
	}
	if l.Allow("k") {
		t.Fatal("4th attempt: expected limited")
	}
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("Remaining: got %d, want 0", got)
	}

	clock.Advance(time.Second)
	if !l.Allow("k") {
		t.Error("after one refill interval: expected allowed")
	}
	if l.Allow("k") {
		t.Error("refill grants a single token")
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	clock := testutil.NewClock(start)
	l := New(1, time.Minute)
	l.Now = clock.Now

	if !l.Allow("a") || !l.Allow("b") {
		t.Fatal("first attempt per key should be allowed")
	}
	if l.Allow("a") {
		t.Error("a: expected limited")
	}
	if got := l.Remaining("unused"); got != 1 {
		t.Errorf("Remaining for unknown key: got %d, want 1", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	clock := testutil.NewClock(start)
	l := New(1, time.Minute)
	l.Now = clock.Now

	l.Allow("k")
	l.Reset("k")
	if !l.Allow("k") {
		t.Error("expected allowed after Reset")
	}
}

func TestLimiter_SweepsIdleBuckets(t *testing.T) {
	clock := testutil.NewClock(start)
	l := New(2, time.Minute)
	l.Now = clock.Now

	l.Allow("idle")
	clock.Advance(2 * time.Minute)
	l.Allow("active")

	if _, ok := l.buckets["idle"]; ok {
		t.Error("idle bucket was not swept")
	}
	if _, ok := l.buckets["active"]; !ok {
		t.Error("active bucket missing")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{name: "forwarded for", xff: "203.0.113.5, 10.0.0.1", remote: "10.0.0.1:1234", want: "203.0.113.5"},
		{name: "real ip", xri: " 198.51.100.7 ", remote: "10.0.0.1:1234", want: "198.51.100.7"},
		{name: "remote addr", remote: "192.0.2.1:5555", want: "192.0.2.1"},
		{name: "remote without port", remote: "192.0.2.1", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/auth/login/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_PerUsername(t *testing.T) {
	clock := testutil.NewClock(start)
	ll := NewLoginLimiterWithConfig(100, time.Minute, 2, 5*time.Minute)
	ll.SetClock(clock.Now)

	r := httptest.NewRequest("POST", "/auth/login/", nil)

	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Alice"); !ok {
			t.Fatalf("attempt %d: expected allowed", i+1)
		}
	}
	ok, reason := ll.Check(r, " alice ")
	if ok {
		t.Fatal("expected username limit to apply case-insensitively")
	}
	if reason == "" {
		t.Error("expected a reason")
	}

	if ok, _ := ll.Check(r, "bob"); !ok {
		t.Error("other usernames should not be limited")
	}

	ll.ResetUser("ALICE")
	if ok, _ := ll.Check(r, "alice"); !ok {
		t.Error("expected allowed after ResetUser")
	}
}

func TestLoginLimiter_PerIP(t *testing.T) {
	clock := testutil.NewClock(start)
	ll := NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)
	ll.SetClock(clock.Now)

	r := httptest.NewRequest("POST", "/auth/login/", nil)
	if ok, _ := ll.Check(r, "a"); !ok {
		t.Fatal("first attempt should be allowed")
	}
	if ok, _ := ll.Check(r, "b"); ok {
		t.Error("second attempt from same IP should be limited")
	}
}
