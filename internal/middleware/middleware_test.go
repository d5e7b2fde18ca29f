package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-booking/internal/config"
	"github.com/iliyamo/school-booking/internal/session"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRequireAdmin(t *testing.T) {
	store := session.NewMemoryStore()
	m := session.NewManager(store, session.Options{Secret: "s", CookieName: "sess"})

	e := echo.New()
	e.Use(Session(m, quiet))
	e.GET("/editar", func(c echo.Context) error { return c.String(http.StatusOK, "form") }, RequireAdmin("/login"))

	t.Run("guest is redirected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/editar", nil))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("admin passes", func(t *testing.T) {
		saved := httptest.NewRecorder()
		require.NoError(t, m.Save(t.Context(), saved, &session.Session{Data: session.Data{Admin: true}}))

		req := httptest.NewRequest(http.MethodGet, "/editar", nil)
		for _, ck := range saved.Result().Cookies() {
			req.AddCookie(ck)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "form", rec.Body.String())
	})
}

func TestSessionFromWithoutMiddleware(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	s := SessionFrom(c)
	require.NotNil(t, s)
	assert.False(t, s.IsAdmin())
	assert.Same(t, s, SessionFrom(c))
}

func TestMemoryTokenBucketBlocksAfterBurst(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 5 * time.Hour, KeyStrategy: "ip", Prefix: "rl",
	}
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(cfg, nil, quiet))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// a different client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDisabledTokenBucketPassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) },
		NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil, quiet))
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin", nil)
	req.RemoteAddr = "192.0.2.7:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/admin")
	c.Set(sessionKey, &session.Session{ID: "abc"})

	assert.Equal(t, "rl:ip:192.0.2.7:route:POST /admin", buildRateKey(config.RateLimitConfig{Prefix: "rl"}, c))
	assert.Equal(t, "rl:visitor:abc", buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "visitor"}, c))
}

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"text/html; charset=UTF-8"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte("<h1>Manual</h1>"))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, got)
	assert.Equal(t, "<h1>Manual</h1>", string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestCacheWithoutRedisIsPassthrough(t *testing.T) {
	e := echo.New()
	e.GET("/manual", func(c echo.Context) error { return c.String(http.StatusOK, "manual") },
		NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, quiet))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/manual", nil))
	assert.Equal(t, "manual", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
