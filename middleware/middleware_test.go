package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"wikiforum/internal/auth"
	"wikiforum/internal/user/model"
	"wikiforum/internal/user/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUsers map[int64]*model.User

func (s stubUsers) ByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func sessionProbe(t *testing.T, signer *auth.Signer, users UserLookup, cookie *http.Cookie) *model.User {
	t.Helper()
	var seen *model.User
	h := Session(signer, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CurrentUser(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return seen
}

func TestSession(t *testing.T) {
	signer := auth.NewSigner("secret")
	alice := &model.User{ID: 7, Name: "alice"}
	users := stubUsers{7: alice}

	rec := httptest.NewRecorder()
	SetSession(rec, signer, alice)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, "/", cookies[0].Path)

	assert.Equal(t, alice, sessionProbe(t, signer, users, cookies[0]))

	t.Run("no cookie", func(t *testing.T) {
		assert.Nil(t, sessionProbe(t, signer, users, nil))
	})
	t.Run("tampered", func(t *testing.T) {
		forged := &http.Cookie{Name: SessionCookie, Value: "8" + cookies[0].Value[1:]}
		assert.Nil(t, sessionProbe(t, signer, users, forged))
	})
	t.Run("other secret", func(t *testing.T) {
		assert.Nil(t, sessionProbe(t, auth.NewSigner("other"), users, cookies[0]))
	})
	t.Run("unknown user", func(t *testing.T) {
		ghost := &http.Cookie{Name: SessionCookie, Value: signer.Sign("99")}
		assert.Nil(t, sessionProbe(t, signer, users, ghost))
	})
	t.Run("non numeric", func(t *testing.T) {
		bad := &http.Cookie{Name: SessionCookie, Value: signer.Sign("abc")}
		assert.Nil(t, sessionProbe(t, signer, users, bad))
	})
}

func TestClearSession(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSession(rec)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
}

func TestLimiterStore_Allow(t *testing.T) {
	s := NewLimiterStore(5, 5, time.Hour)
	defer s.Stop()

	for i := 0; i < 5; i++ {
		require.True(t, s.Allow("10.0.0.1"), "iteration %d", i)
	}
	assert.False(t, s.Allow("10.0.0.1"))
	assert.True(t, s.Allow("10.0.0.2"), "keys are independent")

	s.evictIdle(time.Now().Add(time.Minute))
	s.mu.Lock()
	assert.Empty(t, s.clients)
	s.mu.Unlock()
}

func TestRateLimit_OnlyPosts(t *testing.T) {
	s := NewLimiterStore(1, 1, time.Hour)
	defer s.Stop()
	h := RateLimit(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) int {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost))
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.9")

	assert.Equal(t, "10.0.0.9", clientIP(req, false))
	assert.Equal(t, "203.0.113.7", clientIP(req, true))

	req.Header.Set("X-Forwarded-For", "garbage")
	assert.Equal(t, "10.0.0.9", clientIP(req, true))
}

func TestRateLimit_TrustProxySeparatesClients(t *testing.T) {
	s := NewLimiterStore(1, 1, time.Hour)
	s.TrustProxy = true
	defer s.Stop()
	h := RateLimit(s)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.9:5555"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("203.0.113.7"))
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.7"))
	assert.Equal(t, http.StatusNoContent, do("203.0.113.8"))
}

func TestRequestLogger(t *testing.T) {
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/foo", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	given := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/foo", nil)
	req.Header.Set(RequestIDHeader, given)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, given, rec.Header().Get(RequestIDHeader))
}
