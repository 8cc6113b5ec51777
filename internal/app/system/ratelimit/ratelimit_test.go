package ratelimit_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/stratagroups/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5/middleware"
)

func loginRequest(remote string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/login", nil)
	r.RemoteAddr = remote
	return r
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		want   string
	}{
		{"remote addr with port", "10.0.0.1:5555", "10.0.0.1"},
		{"remote addr without port", "10.0.0.1", "10.0.0.1"},
		{"ipv6 with port", "[::1]:80", "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ratelimit.ClientIP(loginRequest(tt.remote)); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIP_IgnoresForwardedHeaderWithoutRealIP(t *testing.T) {
	r := loginRequest("10.0.0.2:1")
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	if got := ratelimit.ClientIP(r); got != "10.0.0.2" {
		t.Errorf("ClientIP = %q, want 10.0.0.2", got)
	}
}

func TestClientIP_BehindRealIP(t *testing.T) {
	var got string
	h := middleware.RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ratelimit.ClientIP(r)
	}))

	r := loginRequest("10.0.0.2:1")
	r.Header.Set("X-Real-IP", "5.6.7.8")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if got != "5.6.7.8" {
		t.Errorf("ClientIP = %q, want 5.6.7.8", got)
	}
}

func TestLoginLimiter_EmailLimit(t *testing.T) {
	ll := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)

	for i := 0; i < 2; i++ {
		if d := ll.Check(loginRequest("10.0.0.1:1"), "User@Example.com"); !d.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	d := ll.Check(loginRequest("10.0.0.1:1"), " user@example.com")
	if d.Allowed {
		t.Fatal("third attempt for the same email should be refused")
	}
	if d.LimitType != ratelimit.LimitEmail || d.Message == "" {
		t.Errorf("got (%q, %q), want email limit with message", d.LimitType, d.Message)
	}
	if d.RetryAfter <= 0 || d.RetryAfter > time.Minute {
		t.Errorf("RetryAfter = %v, want within the period", d.RetryAfter)
	}

	if d := ll.Check(loginRequest("10.0.0.1:1"), "other@example.com"); !d.Allowed {
		t.Error("emails should be limited independently")
	}

	ll.ResetEmail("USER@example.com")
	if d := ll.Check(loginRequest("10.0.0.1:1"), "user@example.com"); !d.Allowed {
		t.Error("attempt after ResetEmail should be allowed")
	}
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := ratelimit.NewLoginLimiterWithConfig(1, time.Minute, 100, time.Minute)

	if d := ll.Check(loginRequest("10.0.0.1:1"), "a@example.com"); !d.Allowed {
		t.Fatal("first attempt should be allowed")
	}
	d := ll.Check(loginRequest("10.0.0.1:2"), "b@example.com")
	if d.Allowed || d.LimitType != ratelimit.LimitIP {
		t.Errorf("got %+v, want refused by ip limit", d)
	}
	if d := ll.Check(loginRequest("10.0.0.9:1"), "b@example.com"); !d.Allowed {
		t.Error("another address should be allowed")
	}
}

func TestLoginLimiter_Refills(t *testing.T) {
	ll := ratelimit.NewLoginLimiterWithConfig(1, 20*time.Millisecond, 100, time.Minute)

	if d := ll.Check(loginRequest("10.0.0.1:1"), "a@example.com"); !d.Allowed {
		t.Fatal("first attempt should be allowed")
	}
	if d := ll.Check(loginRequest("10.0.0.1:1"), "a@example.com"); d.Allowed {
		t.Fatal("second attempt should be refused")
	}
	time.Sleep(40 * time.Millisecond)
	if d := ll.Check(loginRequest("10.0.0.1:1"), "a@example.com"); !d.Allowed {
		t.Error("attempt after the period should be allowed")
	}
}
