package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	drepo "wikiforum/internal/discussion/repository"
	dservice "wikiforum/internal/discussion/service"
	usermodel "wikiforum/internal/user/model"
	"wikiforum/internal/view"
	"wikiforum/internal/wiki/repository"
	"wikiforum/internal/wiki/service"
	"wikiforum/middleware"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandler(t *testing.T) *PageHandler {
	t.Helper()
	rd, err := view.New()
	require.NoError(t, err)
	discussion := dservice.NewDiscussionService(drepo.NewCommentMemoryRepository(), drepo.NewConversationMemoryRepository())
	return NewPageHandler(service.NewPageService(repository.NewPageMemoryRepository()), discussion, rd)
}

// call runs h with the mux path var set, as the router would, optionally as alice.
func call(h http.HandlerFunc, method, target, pathVar string, form url.Values, loggedIn bool) *httptest.ResponseRecorder {
	body := strings.NewReader("")
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if loggedIn {
		req = req.WithContext(middleware.WithUser(req.Context(), &usermodel.User{ID: 1, Name: "alice"}))
	}
	req = mux.SetURLVars(req, map[string]string{"path": pathVar})
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestView_MissingPageRedirectsToEditor(t *testing.T) {
	h := newHandler(t)

	rec := call(h.View, http.MethodGet, "/foo", "foo", nil, false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/_edit/foo", rec.Header().Get("Location"))

	rec = call(h.View, http.MethodGet, "/foo.json", "foo.json", nil, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditThenView(t *testing.T) {
	h := newHandler(t)

	rec := call(h.Edit, http.MethodPost, "/_edit/foo", "foo", url.Values{"content": {"A"}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/foo", rec.Header().Get("Location"))
	call(h.Edit, http.MethodPost, "/_edit/foo", "foo", url.Values{"content": {"B"}}, true)

	rec = call(h.View, http.MethodGet, "/foo", "foo", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="content">B</div>`)

	rec = call(h.View, http.MethodGet, "/foo.json", "foo.json", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var page map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "B", page["content"])

	rec = call(h.History, http.MethodGet, "/_history/foo.json", "foo.json", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	var versions []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &versions))
	require.Len(t, versions, 2)
	assert.Equal(t, "B", versions[0]["content"])
	assert.Equal(t, "A", versions[1]["content"])
}

func TestEdit_LoggedOut(t *testing.T) {
	h := newHandler(t)

	rec := call(h.Edit, http.MethodPost, "/_edit/foo", "foo", url.Values{"content": {"A"}}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(h.EditForm, http.MethodGet, "/_edit/foo", "foo", nil, false)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestWriteRoutes_RejectJSONSuffix(t *testing.T) {
	h := newHandler(t)

	rec := call(h.Edit, http.MethodPost, "/_edit/foo.json", "foo.json", url.Values{"content": {"A"}}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = call(h.EditForm, http.MethodGet, "/_edit/foo.json", "foo.json", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = call(h.PostComment, http.MethodPost, "/foo.json", "foo.json", url.Values{"content": {"x"}}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = call(h.PostUserComment, http.MethodPost, "/user/bob.json", "bob.json", url.Values{"content": {"x"}}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	versions, err := h.Pages.History(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "/foo")
	require.NoError(t, err)
	assert.Empty(t, versions)
	thread, err := h.Discussion.Thread(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "/foo")
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestPostComment(t *testing.T) {
	h := newHandler(t)
	call(h.Edit, http.MethodPost, "/_edit/foo", "foo", url.Values{"content": {"page"}}, true)

	rec := call(h.PostComment, http.MethodPost, "/foo", "foo", url.Values{"content": {"nice page"}}, true)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/foo", rec.Header().Get("Location"))

	rec = call(h.PostComment, http.MethodPost, "/foo", "foo", url.Values{"content": {"x"}}, false)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = call(h.View, http.MethodGet, "/foo", "foo", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nice page")
}
