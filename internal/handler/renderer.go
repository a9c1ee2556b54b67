package handler

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/a-h/templ"
)

// Renderer manages template parsing and rendering with isolated template sets.
// It supports two layouts:
//   - "auth" layout for signed-out pages (login/register, error page)
//   - "app" layout for signed-in pages (client list, about)
//
// Templates are organized as:
//   - layouts/auth.html, layouts/app.html - base layouts
//   - partials/*.html - standalone fragments for htmx responses
//   - pages/auth/*.html - auth pages (use auth layout)
//   - pages/*.html - app pages (use app layout)
//
// Every page and partial is exposed as a templ.Component so handlers render
// them the same way regardless of how they were built.
type Renderer struct {
	templates map[string]*template.Template
	fsys      fs.FS
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// FS is rooted at the templates directory.
	FS     fs.FS
	Logger *slog.Logger
	// IsDev re-parses templates on every render.
	IsDev bool
}

// NewRenderer creates a new template renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		fsys:      cfg.FS,
		logger:    cfg.Logger,
		isDev:     cfg.IsDev,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	templates := make(map[string]*template.Template)

	partialFiles, err := fs.Glob(r.fsys, "partials/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob partials: %w", err)
	}

	// Partials share one set so they can include each other
	if len(partialFiles) > 0 {
		partialTmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(r.fsys, partialFiles...)
		if err != nil {
			return fmt.Errorf("failed to parse partials: %w", err)
		}
		for _, partial := range partialFiles {
			// Store with base name as key (e.g., "flash" for "flash.html")
			templates["partial/"+baseName(partial)] = partialTmpl
		}
	}

	layouts := []struct {
		name   string
		prefix string
		pages  string
	}{
		{name: "auth", prefix: "auth/", pages: "pages/auth/*.html"},
		{name: "app", prefix: "", pages: "pages/*.html"},
	}

	for _, l := range layouts {
		base, err := template.New(l.name).Funcs(TemplateFuncs()).ParseFS(r.fsys, "layouts/"+l.name+".html")
		if err != nil {
			return fmt.Errorf("failed to parse %s layout: %w", l.name, err)
		}

		// Parse partials into the layout so pages can use {{template "partial_name"}}
		if len(partialFiles) > 0 {
			base, err = base.ParseFS(r.fsys, partialFiles...)
			if err != nil {
				return fmt.Errorf("failed to parse partials into %s layout: %w", l.name, err)
			}
		}

		pages, err := fs.Glob(r.fsys, l.pages)
		if err != nil {
			return fmt.Errorf("failed to glob %s pages: %w", l.name, err)
		}

		for _, page := range pages {
			pageTmpl, err := base.Clone()
			if err != nil {
				return fmt.Errorf("failed to clone %s template for %s: %w", l.name, page, err)
			}

			pageTmpl, err = pageTmpl.ParseFS(r.fsys, page)
			if err != nil {
				return fmt.Errorf("failed to parse page %s: %w", page, err)
			}

			// Store as "auth/login", "home", etc.
			templates[l.prefix+baseName(page)] = pageTmpl
		}
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()

	r.logger.Debug("templates loaded", "count", len(templates))
	return nil
}

// Reload re-parses all templates. Useful for development.
func (r *Renderer) Reload() error {
	return r.loadTemplates()
}

// Page returns the named page wrapped in its layout.
func (r *Renderer) Page(name string, data any) templ.Component {
	return r.component(name, getBaseTemplateName(name), data)
}

// Partial returns a standalone fragment. The partial file must contain
// {{define "name"}}...{{end}} where name matches the file name.
func (r *Renderer) Partial(name string, data any) templ.Component {
	return r.component("partial/"+name, name, data)
}

func (r *Renderer) component(key, execName string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if r.isDev {
			if err := r.Reload(); err != nil {
				return fmt.Errorf("template reload failed: %w", err)
			}
		}

		r.mu.RLock()
		tmpl, ok := r.templates[key]
		r.mu.RUnlock()

		if !ok {
			return fmt.Errorf("template %q not found", key)
		}
		return tmpl.ExecuteTemplate(w, execName, data)
	})
}

// RenderHTTP renders c with the given status. It renders to a buffer first
// so a template error becomes a 500 instead of a half-written page.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, req *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(req.Context(), &buf); err != nil {
		r.logger.Error("template execution failed", "path", req.URL.Path, "error", err)
		http.Error(w, "Erro ao renderizar a página", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ListTemplates returns a list of all loaded template names.
// Useful for debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// getBaseTemplateName determines which base template to execute.
func getBaseTemplateName(name string) string {
	if strings.HasPrefix(name, "auth/") {
		return "auth"
	}
	return "app"
}

func baseName(p string) string {
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}
