// Package web provides HTTP handlers and templates for the Lamia web interface:
// the introduction page, the actor lookup page and static files.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates holds the parsed HTML templates for the web interface.
type Templates struct {
	templates *template.Template
	source    fs.FS
	reload    bool
}

// NewTemplates parses the embedded templates. When reloadDir is non-empty the
// templates are instead read from that directory and re-parsed on every
// render, so edits show up without a restart.
func NewTemplates(reloadDir string) (*Templates, error) {
	t := &Templates{source: templatesFS}
	if reloadDir != "" {
		t.source = os.DirFS(reloadDir)
		t.reload = true
	}

	tmpl, err := t.parse()
	if err != nil {
		return nil, err
	}
	t.templates = tmpl
	return t, nil
}

func (t *Templates) parse() (*template.Template, error) {
	pattern := "templates/*.html"
	if t.reload {
		pattern = "*.html"
	}
	tmpl, err := template.ParseFS(t.source, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// Render renders a named template with the provided data to the response writer.
// Returns an error if the template doesn't exist or rendering fails.
func (t *Templates) Render(w http.ResponseWriter, name string, data interface{}) error {
	templates := t.templates
	if t.reload {
		fresh, err := t.parse()
		if err != nil {
			return err
		}
		templates = fresh
	}

	tmpl := templates.Lookup(name)
	if tmpl == nil {
		return fmt.Errorf("template %q not found", name)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", name, err)
	}

	return nil
}

// StaticFileServer returns an http.Handler serving files under /static/ from staticDir.
func StaticFileServer(staticDir string) http.Handler {
	absPath, err := filepath.Abs(staticDir)
	if err != nil {
		panic(fmt.Sprintf("failed to get absolute path for static directory: %v", err))
	}
	return http.StripPrefix("/static/", http.FileServer(http.Dir(absPath)))
}
