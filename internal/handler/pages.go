package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/clientdesk/internal/auth"
	"github.com/DukeRupert/clientdesk/internal/csrf"
	"github.com/DukeRupert/clientdesk/internal/templ/pages/about"
	"github.com/DukeRupert/clientdesk/internal/templ/shared"
)

const (
	msgPageNotFound = "Página não encontrada"
	msgServerError  = "Algo deu errado ao carregar esta página. Tente novamente."
)

// aboutFeatures lists what the about page describes.
var aboutFeatures = []string{
	"Cadastro e login com sessão protegida",
	"Lista de clientes paginada",
	"Criação e edição de clientes com validação",
	"Exclusão com confirmação",
}

// PageHandler serves the static pages and the error pages.
type PageHandler struct {
	renderer TemplateRenderer
	logger   *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer TemplateRenderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{renderer: renderer, logger: logger}
}

// RegisterRoutes registers the about page behind requireSession and the
// not-found page for every unmatched path.
func (h *PageHandler) RegisterRoutes(mux *http.ServeMux, requireSession func(http.Handler) http.Handler) {
	mux.Handle("GET /sobre", requireSession(http.HandlerFunc(h.About)))
	mux.HandleFunc("/", h.NotFound)
}

// About renders the about page.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	data := about.PageData{
		Page:     h.page(r, "Sobre"),
		Features: aboutFeatures,
	}
	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Page("about", data))
}

// NotFound renders the 404 page.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, msgPageNotFound)
}

// ServerError renders the 500 page. It is the fallback of the panic
// recoverer, so a failing handler still produces a page.
func (h *PageHandler) ServerError(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusInternalServerError, msgServerError)
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if auth.IsHTMX(r) {
		w.Header().Set("HX-Retarget", "#flash")
		w.Header().Set("HX-Reswap", "innerHTML")
		h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Partial("flash", &shared.Flash{Type: "error", Message: message}))
		return
	}

	data := about.ErrorPageData{
		Page:    h.page(r, "Erro"),
		Status:  status,
		Message: message,
	}
	h.renderer.RenderHTTP(w, r, status, h.renderer.Page("auth/error", data))
}

func (h *PageHandler) page(r *http.Request, title string) shared.Page {
	p := shared.Page{
		Title:       title,
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.Token(r.Context()),
	}
	if u := auth.GetUser(r.Context()); u != nil {
		p.User = shared.NewUserDisplay(*u)
	}
	return p
}
