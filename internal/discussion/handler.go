package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"wikiforum/internal/discussion/model"
	"wikiforum/internal/discussion/repository"
	"wikiforum/internal/discussion/service"
	"wikiforum/internal/view"
	"wikiforum/middleware"
	"wikiforum/pkg/logger"
)

// PageLister feeds the sidebar page list.
type PageLister interface {
	Paths(ctx context.Context) ([]string, error)
}

type DiscussionHandler struct {
	Service *service.DiscussionService
	Pages   PageLister
	View    *view.Renderer
}

func NewDiscussionHandler(service *service.DiscussionService, pages PageLister, renderer *view.Renderer) *DiscussionHandler {
	return &DiscussionHandler{Service: service, Pages: pages, View: renderer}
}

// CommentPage shows one comment at path with its replies.
func (h *DiscussionHandler) CommentPage(w http.ResponseWriter, r *http.Request) {
	path, _ := view.PagePath(r, "")
	ctx := r.Context()

	c, replies, err := h.Service.Comment(ctx, path, r.URL.Query().Get("id"))
	if errors.Is(err, repository.ErrNotFound) {
		h.View.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "load comment on "+path, err)
		return
	}

	data, err := h.sidebar(ctx)
	if err != nil {
		h.serverError(w, "load sidebar", err)
		return
	}
	data["Path"] = path
	data["Comment"] = c
	data["Replies"] = replies
	h.View.HTML(w, r, http.StatusOK, "comment-form.html", data)
}

// Reply appends a sub-comment to the comment named by id, from the query or the form.
func (h *DiscussionHandler) Reply(w http.ResponseWriter, r *http.Request) {
	u := middleware.CurrentUser(r.Context())
	if u == nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	path, asJSON := view.PagePath(r, "")
	if asJSON {
		h.View.NotFound(w, r)
		return
	}

	id, err := service.ParseID(r.FormValue("id"))
	if err != nil {
		h.View.NotFound(w, r)
		return
	}
	_, err = h.Service.AddReply(r.Context(), path, id, r.FormValue("content"), model.AuthorOf(u))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.View.NotFound(w, r)
		return
	case err != nil && !errors.Is(err, service.ErrEmptyContent):
		h.serverError(w, "reply on "+path, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/comment%s?id=%d", path, id), http.StatusSeeOther)
}

// ConversationPage shows the conversation named by ?id=, or resolves ?u=&v= to
// its canonical conversation and redirects there.
func (h *DiscussionHandler) ConversationPage(w http.ResponseWriter, r *http.Request) {
	path, _ := view.PagePath(r, "")
	ctx := r.Context()
	q := r.URL.Query()

	if q.Get("id") == "" {
		c, err := h.Service.OpenConversation(ctx, path, q.Get("u"), q.Get("v"))
		if errors.Is(err, service.ErrMissingPartner) {
			http.Error(w, "Missing conversation id or participants", http.StatusBadRequest)
			return
		}
		if err != nil {
			h.serverError(w, "open conversation on "+path, err)
			return
		}
		http.Redirect(w, r, conversationURL(c.Path, c.ID), http.StatusFound)
		return
	}

	c, dialogues, err := h.Service.Conversation(ctx, path, q.Get("id"))
	if errors.Is(err, repository.ErrNotFound) {
		h.View.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "load conversation on "+path, err)
		return
	}

	data, err := h.sidebar(ctx)
	if err != nil {
		h.serverError(w, "load sidebar", err)
		return
	}
	data["Path"] = path
	data["Conversation"] = c
	data["Dialogues"] = dialogues
	h.View.HTML(w, r, http.StatusOK, "conversation-form.html", data)
}

// Say appends a message to the conversation named by id, or by the u and v participants.
func (h *DiscussionHandler) Say(w http.ResponseWriter, r *http.Request) {
	u := middleware.CurrentUser(r.Context())
	if u == nil {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	path, asJSON := view.PagePath(r, "")
	if asJSON {
		h.View.NotFound(w, r)
		return
	}
	ctx := r.Context()

	var (
		c   *model.Conversation
		err error
	)
	if id := r.FormValue("id"); id != "" {
		c, _, err = h.Service.Conversation(ctx, path, id)
	} else {
		c, err = h.Service.OpenConversation(ctx, path, r.FormValue("u"), r.FormValue("v"))
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		h.View.NotFound(w, r)
		return
	case errors.Is(err, service.ErrMissingPartner):
		http.Error(w, "Missing conversation id or participants", http.StatusBadRequest)
		return
	case err != nil:
		h.serverError(w, "resolve conversation on "+path, err)
		return
	}

	if _, err := h.Service.Say(ctx, c, r.FormValue("content"), model.AuthorOf(u)); err != nil && !errors.Is(err, service.ErrEmptyContent) {
		h.serverError(w, "add message to conversation", err)
		return
	}
	http.Redirect(w, r, conversationURL(c.Path, c.ID), http.StatusSeeOther)
}

func conversationURL(path string, id int64) string {
	return fmt.Sprintf("/conversation%s?id=%d", path, id)
}

func (h *DiscussionHandler) sidebar(ctx context.Context) (view.Data, error) {
	recent, err := h.Service.RecentComments(ctx)
	if err != nil {
		return nil, err
	}
	paths, err := h.Pages.Paths(ctx)
	if err != nil {
		return nil, err
	}
	return view.Data{"Recent": recent, "Pages": paths}, nil
}

func (h *DiscussionHandler) serverError(w http.ResponseWriter, action string, err error) {
	logger.Sugar.Errorf("Handler: Failed to %s: %v", action, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
