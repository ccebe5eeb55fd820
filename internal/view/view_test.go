package view

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"wikiforum/internal/user/model"
	"wikiforum/middleware"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ParsesEveryPage(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)
	for _, name := range []string{
		"page.html", "user-form.html", "edit.html", "history.html", "comment-form.html",
		"conversation-form.html", "signup-form.html", "login-form.html", "notfound.html",
	} {
		assert.Contains(t, rd.pages, name)
	}
	assert.NotContains(t, rd.pages, "base.html")
}

func TestHTML_AddsUser(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &model.User{ID: 1, Name: "alice"}))
	rec := httptest.NewRecorder()
	rd.HTML(rec, req, http.StatusOK, "login-form.html", Data{"Error": "Invalid login", "NextURL": "/"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")
	assert.Contains(t, rec.Body.String(), "Invalid login")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestHTML_UnknownTemplate(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	rd.HTML(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing.html", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotFound(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	rd.NotFound(rec, httptest.NewRequest(http.MethodGet, "/foo?v=9", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "404: Not Found")
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"path": "/foo"})
	assert.Equal(t, "application/json; charset=UTF-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"path":"/foo"}`, rec.Body.String())
}

func TestPagePath(t *testing.T) {
	tests := []struct {
		captured, prefix string
		want             string
		asJSON           bool
	}{
		{"", "", "/", false},
		{"foo", "", "/foo", false},
		{"foo/bar/", "", "/foo/bar/", false},
		{"foo.json", "", "/foo", true},
		{"alice", "/user", "/user/alice", false},
		{"alice.json", "/user", "/user/alice", true},
	}
	for _, tt := range tests {
		req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"path": tt.captured})
		got, asJSON := PagePath(req, tt.prefix)
		assert.Equal(t, tt.want, got, tt.captured)
		assert.Equal(t, tt.asJSON, asJSON, tt.captured)
	}
}
