package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	dmodel "wikiforum/internal/discussion/model"
	dservice "wikiforum/internal/discussion/service"
	"wikiforum/internal/view"
	"wikiforum/internal/wiki/model"
	"wikiforum/internal/wiki/repository"
	"wikiforum/internal/wiki/service"
	"wikiforum/middleware"
	"wikiforum/pkg/logger"
)

const userPrefix = "/user"

// Discussion is the part of the discussion store a page view needs.
type Discussion interface {
	Thread(ctx context.Context, path string) ([]dmodel.ThreadEntry, error)
	RecentComments(ctx context.Context) ([]dmodel.Comment, error)
	AddComment(ctx context.Context, path, content string, author *dmodel.Author) (*dmodel.Comment, error)
}

type PageHandler struct {
	Pages      *service.PageService
	Discussion Discussion
	Renderer   *view.Renderer
}

func NewPageHandler(pages *service.PageService, discussion Discussion, renderer *view.Renderer) *PageHandler {
	return &PageHandler{Pages: pages, Discussion: discussion, Renderer: renderer}
}

type pageResponse struct {
	*model.Page
	Comments []dmodel.ThreadEntry `json:"comments"`
}

// View shows a wiki page (or the ?v= version) with its comment thread.
func (h *PageHandler) View(w http.ResponseWriter, r *http.Request) {
	path, asJSON := view.PagePath(r, "")
	h.show(w, r, path, asJSON, "page.html", nil)
}

// UserView is View for pages under /user.
func (h *PageHandler) UserView(w http.ResponseWriter, r *http.Request) {
	path, asJSON := view.PagePath(r, userPrefix)
	owner, _, _ := strings.Cut(strings.TrimPrefix(path, userPrefix+"/"), "/")
	h.show(w, r, path, asJSON, "user-form.html", view.Data{"Owner": owner})
}

func (h *PageHandler) show(w http.ResponseWriter, r *http.Request, path string, asJSON bool, tmpl string, data view.Data) {
	ctx := r.Context()
	v := r.URL.Query().Get("v")

	page, err := h.Pages.Lookup(ctx, path, v)
	if errors.Is(err, repository.ErrNotFound) {
		if v != "" || asJSON {
			h.notFound(w, r, asJSON)
			return
		}
		http.Redirect(w, r, "/_edit"+path, http.StatusFound)
		return
	}
	if err != nil {
		h.serverError(w, "load page "+path, err)
		return
	}

	thread, err := h.Discussion.Thread(ctx, path)
	if err != nil {
		h.serverError(w, "load comments for "+path, err)
		return
	}
	if asJSON {
		view.JSON(w, http.StatusOK, pageResponse{Page: page, Comments: thread})
		return
	}

	recent, paths, err := h.sidebar(ctx)
	if err != nil {
		h.serverError(w, "load sidebar", err)
		return
	}
	if data == nil {
		data = view.Data{}
	}
	data["Path"] = path
	data["Page"] = page
	data["Version"] = v != ""
	data["Thread"] = thread
	data["Recent"] = recent
	data["Pages"] = paths
	h.Renderer.HTML(w, r, http.StatusOK, tmpl, data)
}

// PostComment appends a comment to a wiki page.
func (h *PageHandler) PostComment(w http.ResponseWriter, r *http.Request) {
	path, asJSON := view.PagePath(r, "")
	if asJSON {
		h.Renderer.NotFound(w, r)
		return
	}
	h.comment(w, r, path)
}

// PostUserComment appends a comment to a user page.
func (h *PageHandler) PostUserComment(w http.ResponseWriter, r *http.Request) {
	path, asJSON := view.PagePath(r, userPrefix)
	if asJSON {
		h.Renderer.NotFound(w, r)
		return
	}
	h.comment(w, r, path)
}

func (h *PageHandler) comment(w http.ResponseWriter, r *http.Request, path string) {
	u := middleware.CurrentUser(r.Context())
	if u == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	_, err := h.Discussion.AddComment(r.Context(), path, r.FormValue("content"), dmodel.AuthorOf(u))
	if err != nil && !errors.Is(err, dservice.ErrEmptyContent) {
		h.serverError(w, "add comment to "+path, err)
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// EditForm shows the editor for the current page or the ?v= version.
func (h *PageHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	path, asJSON := view.PagePath(r, "")
	if asJSON {
		h.Renderer.NotFound(w, r)
		return
	}
	v := r.URL.Query().Get("v")

	page, err := h.Pages.Lookup(r.Context(), path, v)
	switch {
	case errors.Is(err, repository.ErrNotFound) && v != "":
		h.Renderer.NotFound(w, r)
		return
	case errors.Is(err, repository.ErrNotFound):
		page = nil
	case err != nil:
		h.serverError(w, "load page "+path, err)
		return
	}

	h.Renderer.HTML(w, r, http.StatusOK, "edit.html", view.Data{"Path": path, "Page": page})
}

// Edit stores a new version of the page when the content changed.
func (h *PageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if middleware.CurrentUser(r.Context()) == nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	path, asJSON := view.PagePath(r, "")
	if asJSON {
		h.Renderer.NotFound(w, r)
		return
	}

	page, created, err := h.Pages.Edit(r.Context(), path, r.FormValue("content"))
	if errors.Is(err, service.ErrEmptyContent) {
		http.Redirect(w, r, "/_edit"+path, http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, "edit page "+path, err)
		return
	}
	if created {
		logger.Sugar.Infof("Page %s: new version %d", path, page.ID)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// History lists up to 100 versions of the page, newest first.
func (h *PageHandler) History(w http.ResponseWriter, r *http.Request) {
	path, asJSON := view.PagePath(r, "")

	versions, err := h.Pages.History(r.Context(), path)
	if err != nil {
		h.serverError(w, "load history of "+path, err)
		return
	}
	if asJSON {
		if versions == nil {
			versions = []model.Page{}
		}
		view.JSON(w, http.StatusOK, versions)
		return
	}
	if len(versions) == 0 {
		http.Redirect(w, r, "/_edit"+path, http.StatusFound)
		return
	}
	h.Renderer.HTML(w, r, http.StatusOK, "history.html", view.Data{"Path": path, "Versions": versions})
}

func (h *PageHandler) sidebar(ctx context.Context) ([]dmodel.Comment, []string, error) {
	recent, err := h.Discussion.RecentComments(ctx)
	if err != nil {
		return nil, nil, err
	}
	paths, err := h.Pages.Paths(ctx)
	if err != nil {
		return nil, nil, err
	}
	return recent, paths, nil
}

func (h *PageHandler) notFound(w http.ResponseWriter, r *http.Request, asJSON bool) {
	if asJSON {
		view.JSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	h.Renderer.NotFound(w, r)
}

func (h *PageHandler) serverError(w http.ResponseWriter, action string, err error) {
	logger.Sugar.Errorf("Handler: Failed to %s: %v", action, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
