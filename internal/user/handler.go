package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"wikiforum/internal/auth"
	"wikiforum/internal/user/model"
	"wikiforum/internal/user/service"
	"wikiforum/internal/view"
	"wikiforum/middleware"
	"wikiforum/pkg/logger"
)

type UserHandler struct {
	Service *service.UserService
	Signer  *auth.Signer
	View    *view.Renderer
}

func NewUserHandler(service *service.UserService, signer *auth.Signer, renderer *view.Renderer) *UserHandler {
	return &UserHandler{Service: service, Signer: signer, View: renderer}
}

func (h *UserHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.View.HTML(w, r, http.StatusOK, "signup-form.html", view.Data{
		"NextURL": NextURL(r.Referer()),
	})
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	form := model.SignupForm{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
		Verify:   r.FormValue("verify"),
		Email:    r.FormValue("email"),
	}
	nextURL := NextURL(r.FormValue("next_url"))

	u, err := h.Service.Signup(r.Context(), form)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
		case errors.Is(err, service.ErrUserExists):
			verr = &service.ValidationError{Username: "That user already exists."}
		default:
			logger.Sugar.Errorf("Handler: Failed to sign up %s: %v", form.Username, err)
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
		h.View.HTML(w, r, http.StatusOK, "signup-form.html", view.Data{
			"Username": form.Username,
			"Email":    form.Email,
			"Errors":   verr,
			"NextURL":  nextURL,
		})
		return
	}

	logger.Sugar.Infof("User %s signed up", u.Name)
	middleware.SetSession(w, h.Signer, u)
	http.Redirect(w, r, nextURL, http.StatusFound)
}

func (h *UserHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.View.HTML(w, r, http.StatusOK, "login-form.html", view.Data{
		"NextURL": NextURL(r.Referer()),
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	nextURL := NextURL(r.FormValue("next_url"))

	u, err := h.Service.Login(r.Context(), username, r.FormValue("password"))
	if errors.Is(err, service.ErrInvalidLogin) {
		h.View.HTML(w, r, http.StatusOK, "login-form.html", view.Data{
			"Username": username,
			"Error":    "Invalid login",
			"NextURL":  nextURL,
		})
		return
	}
	if err != nil {
		logger.Sugar.Errorf("Handler: Failed to log in %s: %v", username, err)
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	middleware.SetSession(w, h.Signer, u)
	http.Redirect(w, r, nextURL, http.StatusFound)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSession(w)
	http.Redirect(w, r, NextURL(r.Referer()), http.StatusFound)
}

// NextURL reduces a referer or submitted next_url to its local path and query.
// Empty values and anything under /login fall back to "/".
func NextURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "/login") {
		return "/"
	}
	if strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	next := u.Path
	if u.RawQuery != "" {
		next += "?" + u.RawQuery
	}
	return next
}
