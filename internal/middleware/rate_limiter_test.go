package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedHandler(rl *RateLimiter) echo.HandlerFunc {
	return rl.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}

func hit(t *testing.T, e *echo.Echo, handler echo.HandlerFunc, remoteAddr, xff string) int {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	return rec.Code
}

func TestRateLimiter_BurstThenLimited(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(NewRateLimiter(1, 3))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(t, e, handler, "192.168.1.100:12345", ""))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(t, e, handler, "192.168.1.100:12345", ""))
}

func TestRateLimiter_PerClient(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(NewRateLimiter(1, 1))

	assert.Equal(t, http.StatusOK, hit(t, e, handler, "10.0.0.1:1000", ""))
	assert.Equal(t, http.StatusTooManyRequests, hit(t, e, handler, "10.0.0.1:1000", ""))
	assert.Equal(t, http.StatusOK, hit(t, e, handler, "10.0.0.2:1000", ""))
}

func TestRateLimiter_UsesFirstForwardedAddress(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(NewRateLimiter(1, 1))

	assert.Equal(t, http.StatusOK, hit(t, e, handler, "10.0.0.9:1", "203.0.113.7, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit(t, e, handler, "10.0.0.9:1", "203.0.113.7, 10.0.0.2"))
}

func TestRateLimiter_ConcurrentRequests(t *testing.T) {
	e := echo.New()
	handler := limitedHandler(NewRateLimiter(1, 5))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = "172.16.0.1:5555"
			rec := httptest.NewRecorder()
			_ = handler(e.NewContext(req, rec))
			if rec.Code == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, allowed, 5)
	assert.Less(t, allowed, 20)
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	rl.allow("10.0.0.2")

	now = now.Add(visitorTTL + time.Second)
	rl.allow("10.0.0.2")

	assert.Equal(t, 1, rl.evictIdle())
	assert.Len(t, rl.visitors, 1)
}

func TestRateLimiter_RunStopsWithContext(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Run(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
