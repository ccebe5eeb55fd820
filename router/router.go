package router

import (
	"net/http"
	"wikiforum/internal/auth"
	discussionHandler "wikiforum/internal/discussion"
	drepo "wikiforum/internal/discussion/repository"
	dservice "wikiforum/internal/discussion/service"
	userHandler "wikiforum/internal/user"
	urepo "wikiforum/internal/user/repository"
	uservice "wikiforum/internal/user/service"
	"wikiforum/internal/view"
	wikiHandler "wikiforum/internal/wiki"
	wrepo "wikiforum/internal/wiki/repository"
	wservice "wikiforum/internal/wiki/service"
	"wikiforum/middleware"

	"github.com/gorilla/mux"
)

// pagePath captures a page path without its leading slash, optionally suffixed with .json.
const pagePath = `{path:(?:[a-zA-Z0-9_-]+/?)*(?:\.json)?}`

// Stores bundles the repositories behind every route, postgres or in-memory.
type Stores struct {
	Users         urepo.UserRepository
	Pages         wrepo.PageRepository
	Comments      drepo.CommentRepository
	Conversations drepo.ConversationRepository
}

func Setup(stores Stores, signer *auth.Signer, limiter *middleware.LimiterStore) (http.Handler, error) {
	renderer, err := view.New()
	if err != nil {
		return nil, err
	}

	userService := uservice.NewUserService(stores.Users)
	pageService := wservice.NewPageService(stores.Pages)
	discussionService := dservice.NewDiscussionService(stores.Comments, stores.Conversations)

	users := userHandler.NewUserHandler(userService, signer, renderer)
	pages := wikiHandler.NewPageHandler(pageService, discussionService, renderer)
	discussions := discussionHandler.NewDiscussionHandler(discussionService, pageService, renderer)
	limit := middleware.RateLimit(limiter)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(renderer.NotFound)

	// Accounts
	r.HandleFunc("/signup", users.SignupForm).Methods(http.MethodGet)
	r.Handle("/signup", limit(http.HandlerFunc(users.Signup))).Methods(http.MethodPost)
	r.HandleFunc("/login", users.LoginForm).Methods(http.MethodGet)
	r.Handle("/login", limit(http.HandlerFunc(users.Login))).Methods(http.MethodPost)
	r.HandleFunc("/logout", users.Logout).Methods(http.MethodGet)
	for _, p := range []string{"/signup", "/login", "/logout"} {
		r.HandleFunc(p, methodNotAllowed)
	}

	// Discussions
	r.HandleFunc("/user/"+pagePath, pages.UserView).Methods(http.MethodGet)
	r.HandleFunc("/user/"+pagePath, pages.PostUserComment).Methods(http.MethodPost)
	r.HandleFunc("/comment/"+pagePath, discussions.CommentPage).Methods(http.MethodGet)
	r.HandleFunc("/comment/"+pagePath, discussions.Reply).Methods(http.MethodPost)
	r.HandleFunc("/conversation/"+pagePath, discussions.ConversationPage).Methods(http.MethodGet)
	r.HandleFunc("/conversation/"+pagePath, discussions.Say).Methods(http.MethodPost)

	// Pages
	r.HandleFunc("/_history/"+pagePath, pages.History).Methods(http.MethodGet)
	r.HandleFunc("/_edit/"+pagePath, pages.EditForm).Methods(http.MethodGet)
	r.HandleFunc("/_edit/"+pagePath, pages.Edit).Methods(http.MethodPost)
	r.HandleFunc("/"+pagePath, pages.View).Methods(http.MethodGet)
	r.HandleFunc("/"+pagePath, pages.PostComment).Methods(http.MethodPost)

	session := middleware.Session(signer, userService)
	return middleware.RequestLogger(session(r)), nil
}

// methodNotAllowed keeps account paths out of the page catch-all.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	allow := "GET, POST"
	if r.URL.Path == "/logout" {
		allow = "GET"
	}
	w.Header().Set("Allow", allow)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}
