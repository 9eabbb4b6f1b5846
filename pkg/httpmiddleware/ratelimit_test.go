package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_AllowsUpToMax(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 3, Window: time.Minute})(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_KeysAreIndependent(t *testing.T) {
	h := RateLimit(RateLimitConfig{Max: 1, Window: time.Minute})(okHandler())

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:2", "10.0.0.3:3"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, addr)
	}
}

func TestRateLimit_WindowRotation(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	now := time.Now()

	_, ok := rl.allow("k", now)
	require.True(t, ok)
	_, ok = rl.allow("k", now)
	require.True(t, ok)
	_, ok = rl.allow("k", now)
	require.False(t, ok)

	// Two full windows later the budget is fresh.
	_, ok = rl.allow("k", now.Add(2*time.Minute))
	assert.True(t, ok)
}

func TestRateLimit_SlidingWeight(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 2, Window: time.Minute})
	now := time.Now()

	// Fill the first window completely.
	rl.allow("k", now)
	rl.allow("k", now)

	// Just into the next window the previous one still mostly counts:
	// one more request fits, a second does not.
	_, ok := rl.allow("k", now.Add(61*time.Second))
	assert.True(t, ok)
	_, ok = rl.allow("k", now.Add(61*time.Second))
	assert.False(t, ok)

	// Near the end of the next window the old requests have aged out.
	_, ok = rl.allow("k", now.Add(119*time.Second))
	assert.True(t, ok)
}

func TestRateLimit_Purge(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Second})
	rl.allow("k", time.Now())
	require.Len(t, rl.clients, 1)

	rl.purge(time.Now().Add(3 * time.Second))
	assert.Empty(t, rl.clients)
}
