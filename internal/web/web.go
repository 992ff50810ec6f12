// Package web holds the HTML templates and static assets compiled into the binary.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages rendered by the handlers.
var Pages = []string{
	"home-anon.html",
	"home.html",
	"signup.html",
	"login.html",
	"users-index.html",
	"users-show.html",
	"users-relations.html",
	"users-likes.html",
	"users-edit.html",
	"messages-new.html",
	"messages-show.html",
	"404.html",
	"error.html",
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("02 January 2006")
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Templates parses every page and partial into one set for gin's HTML renderer.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static serves the stylesheet and default images.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
