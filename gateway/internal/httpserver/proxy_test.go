package httpserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntsvetkov/identity-platform/pkg/ratelimit"
)

func newGateway(t *testing.T, identityURL string, limit ratelimit.Limit) *echo.Echo {
	t.Helper()

	e := echo.New()
	err := Register(e, &Deps{
		IdentityURL: identityURL,
		RateLimit: ratelimit.Config{
			Limiter: ratelimit.New(ratelimit.NewMemoryStore(), "gateway", limit),
		},
	})
	require.NoError(t, err)
	return e
}

func send(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "1.2.3.4:5678"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProxy_RewritesPrefixAndForwardsVerbatim(t *testing.T) {
	t.Parallel()

	var gotPath, gotMethod, gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"message":"User registered"}`))
	}))
	defer upstream.Close()

	e := newGateway(t, upstream.URL, ratelimit.Limit{Capacity: 100, Window: time.Minute})

	rec := send(e, http.MethodPost, "/v1/auth/register", `{"username":"alice"}`)

	assert.Equal(t, "/api/auth/register", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, `{"username":"alice"}`, gotBody)

	// Upstream status and body come back untouched.
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"User registered"}`, rec.Body.String())
}

func TestProxy_PropagatesUpstreamErrorsVerbatim(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"message":"User already exists"}`))
	}))
	defer upstream.Close()

	e := newGateway(t, upstream.URL, ratelimit.Limit{Capacity: 100, Window: time.Minute})

	rec := send(e, http.MethodPost, "/v1/auth/register", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"User already exists"}`, rec.Body.String())
}

func TestProxy_UpstreamUnavailable(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	e := newGateway(t, upstream.URL, ratelimit.Limit{Capacity: 100, Window: time.Minute})

	rec := send(e, http.MethodPost, "/v1/auth/login", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestProxy_RateLimitShortCircuits(t *testing.T) {
	t.Parallel()

	upstreamHits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamHits++
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	e := newGateway(t, upstream.URL, ratelimit.Limit{Capacity: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		rec := send(e, http.MethodPost, "/v1/auth/login", `{}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := send(e, http.MethodPost, "/v1/auth/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.Equal(t, 2, upstreamHits)
}

func TestHealthEndpointsBypassRateLimit(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	e := newGateway(t, upstream.URL, ratelimit.Limit{Capacity: 1, Window: time.Minute})

	for i := 0; i < 5; i++ {
		rec := send(e, http.MethodGet, "/health/live", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
