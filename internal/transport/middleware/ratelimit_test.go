package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/folio/internal/address"
	"github.com/heartmarshall/folio/pkg/ctxutil"
)

// fakeClock is advanced by hand.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestLimiter(clock *fakeClock) *RateLimiter {
	return &RateLimiter{stop: make(chan struct{}), now: clock.Now}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(h http.Handler, remote string, wallet address.Address) int {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/challenge", nil)
	req.RemoteAddr = remote
	if !wallet.IsZero() {
		req = req.WithContext(ctxutil.WithSigner(req.Context(), wallet))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(&fakeClock{t: time.Unix(1000, 0)})
	handler := rl.Limit("login", 10)(okHandler())

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "1.2.3.4:1234", address.Zero), "request %d should be allowed", i)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(&fakeClock{t: time.Unix(1000, 0)})
	handler := rl.Limit("login", 5)(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "1.2.3.4:1234", address.Zero))
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/challenge", nil)
	req.RemoteAddr = "1.2.3.4:9999"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "port changes do not reset the bucket")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(&fakeClock{t: time.Unix(1000, 0)})
	login := rl.Limit("login", 2)(okHandler())
	writes := rl.Limit("writes", 2)(okHandler())

	for i := 0; i < 2; i++ {
		hit(login, "1.1.1.1:1234", address.Zero)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(login, "1.1.1.1:1234", address.Zero))
	assert.Equal(t, http.StatusOK, hit(login, "2.2.2.2:5678", address.Zero), "other IP")
	assert.Equal(t, http.StatusOK, hit(writes, "1.1.1.1:1234", address.Zero), "other scope")
	assert.Equal(t, http.StatusOK, hit(login, "1.1.1.1:1234", address.Address{1}), "signed requests are keyed by wallet")
}

func TestRateLimiter_TokenRefill(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Unix(1000, 0)}
	rl := newTestLimiter(clock)
	// 60 per minute = 1 per second
	handler := rl.Limit("writes", 60)(okHandler())

	for i := 0; i < 60; i++ {
		hit(handler, "3.3.3.3:1234", address.Zero)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "3.3.3.3:1234", address.Zero))

	clock.t = clock.t.Add(1100 * time.Millisecond)
	assert.Equal(t, http.StatusOK, hit(handler, "3.3.3.3:1234", address.Zero))
}

func TestRateLimiter_ZeroLimitDisables(t *testing.T) {
	t.Parallel()
	rl := newTestLimiter(&fakeClock{t: time.Unix(1000, 0)})
	handler := rl.Limit("writes", 0)(okHandler())

	for i := 0; i < 100; i++ {
		assert.Equal(t, http.StatusOK, hit(handler, "4.4.4.4:1", address.Zero))
	}
}
