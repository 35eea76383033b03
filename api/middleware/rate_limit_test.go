package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/glowcall/glowcall-backend/pkg/enums"
)

type fakeLimiter struct {
	counts map[string]int64
	err    error
	scopes []string
}

func (f *fakeLimiter) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.scopes = append(f.scopes, scope)
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func authedRequest(userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	return req.WithContext(WithPrincipal(req.Context(), Principal{UserID: userID, Role: enums.ActorRoleCustomer}))
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	limiter := &fakeLimiter{}
	policy := NewRateLimitPolicy("Booking-Create", time.Minute, 2)
	var calls int
	handler := RateLimit(policy, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	userID := uuid.New()
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, authedRequest(userID))
		codes = append(codes, resp.Code)
		if i == 2 && resp.Header().Get("Retry-After") != "60" {
			t.Fatalf("expected Retry-After 60 got %q", resp.Header().Get("Retry-After"))
		}
	}

	want := []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: expected %d got %d", i, want[i], codes[i])
		}
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice got %d", calls)
	}
	if limiter.scopes[0] != "booking-create:"+userID.String() {
		t.Fatalf("unexpected scope %s", limiter.scopes[0])
	}
}

func TestRateLimitIsPerUser(t *testing.T) {
	limiter := &fakeLimiter{}
	handler := RateLimit(NewRateLimitPolicy("booking-create", time.Minute, 1), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, authedRequest(uuid.New()))
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201 for distinct users got %d", resp.Code)
		}
	}
}

func TestRateLimitDisabledOrAnonymousPassesThrough(t *testing.T) {
	limiter := &fakeLimiter{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	disabled := RateLimit(NewRateLimitPolicy("booking-create", time.Minute, 0), limiter, nil)(next)
	resp := httptest.NewRecorder()
	disabled.ServeHTTP(resp, authedRequest(uuid.New()))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}

	anonymous := RateLimit(NewRateLimitPolicy("booking-create", time.Minute, 1), limiter, nil)(next)
	resp = httptest.NewRecorder()
	anonymous.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil))
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", resp.Code)
	}
	if len(limiter.scopes) != 0 {
		t.Fatalf("expected limiter untouched got %v", limiter.scopes)
	}
}

func TestRateLimitStoreFailureIsDependencyError(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	handler := RateLimit(NewRateLimitPolicy("booking-create", time.Minute, 1), limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(uuid.New()))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
