// Package view renders the HTML templates and JSON bodies shared by all handlers.
package view

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"
	"wikiforum/middleware"
	"wikiforum/pkg/logger"

	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	layoutFile   = "templates/base.html"
	notFoundName = "notfound.html"
	jsonSuffix   = ".json"
)

// Data is the template context. HTML adds "User" for the logged-in user.
type Data map[string]any

// Renderer holds one parsed template set per page, each layered over the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"fmtTime": func(t time.Time) string { return t.Format("Jan 2, 2006 15:04") },
}

func New() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		t, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		r.pages[strings.TrimPrefix(file, "templates/")] = t
	}
	return r, nil
}

// HTML renders the named page. Rendering goes to a buffer first so a template
// failure still produces a clean 500.
func (rd *Renderer) HTML(w http.ResponseWriter, r *http.Request, status int, name string, data Data) {
	t, ok := rd.pages[name]
	if !ok {
		logger.Sugar.Errorf("Unknown template %s", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = Data{}
	}
	data["User"] = middleware.CurrentUser(r.Context())

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Sugar.Errorf("Failed to render %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.HTML(w, r, http.StatusNotFound, notFoundName, nil)
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Sugar.Errorf("Failed to encode JSON response: %v", err)
	}
}

// PagePath rebuilds the page path captured by the router under prefix
// ("" for wiki pages, "/user" for user pages) and strips a ".json" suffix.
func PagePath(r *http.Request, prefix string) (path string, asJSON bool) {
	path = "/" + mux.Vars(r)["path"]
	if strings.HasSuffix(path, jsonSuffix) {
		path = strings.TrimSuffix(path, jsonSuffix)
		asJSON = true
	}
	if path == "" {
		path = "/"
	}
	return prefix + path, asJSON
}
