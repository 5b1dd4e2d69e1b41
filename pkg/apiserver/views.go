package apiserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tectrixdev/unplayit/pkg/backend"
)

//go:embed templates/*.html
var templateFS embed.FS

var views = mustViews("index.html", "login.html", "message.html", "status.html")

type viewData struct {
	Title      string
	Message    string
	Link       string
	Note       string
	BaseDomain string
	Labels     []string
	Port       int
	Status     backend.StatusView
}

func mustViews(pages ...string) map[string]*template.Template {
	result := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		result[page] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+page))
	}
	return result
}

// renderView buffers the page so a template error can still produce a clean 500.
func renderView(w http.ResponseWriter, httpStatus int, page string, data viewData) {
	if data.Title == "" {
		data.Title = "unplayit"
	}

	var buf bytes.Buffer
	if err := views[page].ExecuteTemplate(&buf, "layout.html", data); err != nil {
		logrus.Errorf("failed to render %s: %v", page, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, _ = w.Write(buf.Bytes())
}

func renderMessage(w http.ResponseWriter, httpStatus int, msg, link string) {
	renderView(w, httpStatus, "message.html", viewData{Message: msg, Link: link})
}
