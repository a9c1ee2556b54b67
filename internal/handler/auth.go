// Package handler contains HTTP handlers for the clientdesk application.
//
// This file implements the sign-in page: login, registration and logout.
package handler

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"github.com/a-h/templ"

	"github.com/DukeRupert/clientdesk/internal/auth"
	"github.com/DukeRupert/clientdesk/internal/csrf"
	"github.com/DukeRupert/clientdesk/internal/deleteflow"
	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/service"
	"github.com/DukeRupert/clientdesk/internal/session"
	authpages "github.com/DukeRupert/clientdesk/internal/templ/pages/auth"
	"github.com/DukeRupert/clientdesk/internal/templ/shared"
)

// Messages shown on the sign-in page.
const (
	msgAuthFallback   = "Algo deu errado. Tente novamente."
	msgRegistered     = "Cadastro realizado com sucesso! Entre com suas credenciais."
	msgLoggedOut      = "Você saiu da sua conta."
	msgSessionExpired = "Sua sessão expirou. Entre novamente."
)

// =============================================================================
// Handler Configuration
// =============================================================================

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	Page(name string, data any) templ.Component
	Partial(name string, data any) templ.Component
	RenderHTTP(w http.ResponseWriter, r *http.Request, status int, c templ.Component)
}

// LoginLimiter forgets the failed attempts of a client after it signs in.
type LoginLimiter interface {
	ResetLogin(r *http.Request)
}

// AuthHandler handles authentication-related HTTP requests.
//
// Routes handled:
//   - GET  /login    -> ShowLogin
//   - POST /login    -> Login
//   - POST /register -> Register
//   - POST /logout   -> Logout
type AuthHandler struct {
	authService service.AuthService
	flows       *deleteflow.Registry
	limiter     LoginLimiter
	renderer    TemplateRenderer
	logger      *slog.Logger
	isSecure    bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
// limiter may be nil.
func NewAuthHandler(
	authService service.AuthService,
	flows *deleteflow.Registry,
	limiter LoginLimiter,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		flows:       flows,
		limiter:     limiter,
		renderer:    renderer,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// =============================================================================
// GET /login - Show Login/Register Page
// =============================================================================

// ShowLogin renders the sign-in page.
//
// Query Parameters:
//   - redirect (optional): path to return to after login
//   - mode=register (optional): open the registration card
//   - logout=1 / expired=1 (optional): show the matching flash
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	data := h.pageData(r, authpages.ModeLogin)
	if q.Get("mode") == string(authpages.ModeRegister) {
		data.Mode = authpages.ModeRegister
	}
	data.Redirect = redirectValue(q.Get(auth.RedirectParam))

	switch {
	case q.Get("logout") == "1":
		data.Flash = &shared.Flash{Type: "success", Message: msgLoggedOut}
	case q.Get("expired") == "1":
		data.Flash = &shared.Flash{Type: "info", Message: msgSessionExpired}
	}

	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Page("auth/login", data))
}

// =============================================================================
// POST /login - Process Login
// =============================================================================

// Login processes the login form submission.
//
// Success Flow:
//  1. AuthService.Login validates, calls the backend and stores a session
//  2. Set session cookie
//  3. Redirect to the validated redirect value or "/"
//
// Error Flow: re-render the form with per-field messages or the backend
// message in the banner. The password is never echoed back.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderAuthError(w, r, authpages.ModeLogin, nil, domain.Invalid("handler.login", msgAuthFallback))
		return
	}

	in := domain.LoginInput{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	meta := domain.SessionMeta{
		IPAddress: parseAddr(auth.ClientIP(r)),
		UserAgent: r.UserAgent(),
	}

	result, err := h.authService.Login(r.Context(), in, meta)
	if err != nil {
		h.renderAuthError(w, r, authpages.ModeLogin, func(d *authpages.LoginPageData) {
			d.Login.Email = in.Email
		}, err)
		return
	}

	session.SetCookie(w, result.RawToken, result.Session.ExpiresAt, h.isSecure)
	if h.limiter != nil {
		h.limiter.ResetLogin(r)
	}

	h.logger.Info("user logged in", "session_id", result.Session.ID)

	auth.Redirect(w, r, auth.SafeRedirect(r.FormValue(auth.RedirectParam)))
}

// =============================================================================
// POST /register - Process Registration
// =============================================================================

// Register processes the registration form. On success the login card is
// shown again with a flash and the email pre-filled.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderAuthError(w, r, authpages.ModeRegister, nil, domain.Invalid("handler.register", msgAuthFallback))
		return
	}

	in := domain.RegisterInput{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Email:           strings.TrimSpace(r.FormValue("email")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}

	if err := h.authService.Register(r.Context(), in); err != nil {
		h.renderAuthError(w, r, authpages.ModeRegister, func(d *authpages.LoginPageData) {
			d.Register = authpages.RegisterFormValues{Name: in.Name, Email: in.Email}
		}, err)
		return
	}

	h.logger.Info("user registered")

	data := h.pageData(r, authpages.ModeLogin)
	data.Redirect = redirectValue(r.FormValue(auth.RedirectParam))
	data.Login.Email = in.Email
	data.Flash = &shared.Flash{Type: "success", Message: msgRegistered}
	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Page("auth/login", data))
}

// =============================================================================
// POST /logout - Process Logout
// =============================================================================

// Logout deletes the stored session, drops the session's delete flow and
// clears the cookie. It always ends on the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.EndSession(w, r)
	auth.Redirect(w, r, auth.LoginPath+"?logout=1")
}

// EndSession removes every trace of the current session. It is safe to
// call without one.
func (h *AuthHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if s := auth.GetSession(r.Context()); s != nil && h.flows != nil {
		h.flows.Drop(s.ID)
	}

	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			// Log error but continue - cookie will be cleared anyway
			h.logger.Warn("failed to delete session", "error", err)
		}
	}

	session.ClearCookie(w, h.isSecure)
}

// RegisterRoutes registers the auth routes. guest wraps pages only signed-out
// visitors may see, signedIn wraps logout, and limit wraps the credential
// endpoints.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, guest, signedIn, limitLogin, limitRegister func(http.Handler) http.Handler) {
	mux.Handle("GET /login", guest(http.HandlerFunc(h.ShowLogin)))
	mux.Handle("POST /login", guest(limitLogin(http.HandlerFunc(h.Login))))
	mux.Handle("POST /register", guest(limitRegister(http.HandlerFunc(h.Register))))
	mux.Handle("POST /logout", signedIn(http.HandlerFunc(h.Logout)))
}

// =============================================================================
// Helpers
// =============================================================================

func (h *AuthHandler) pageData(r *http.Request, mode authpages.Mode) authpages.LoginPageData {
	title := "Entrar"
	if mode == authpages.ModeRegister {
		title = "Criar conta"
	}
	return authpages.LoginPageData{
		Page: shared.Page{
			Title:       title,
			CurrentPath: r.URL.Path,
			CSRFToken:   csrf.Token(r.Context()),
		},
		Mode:   mode,
		Errors: map[string]string{},
	}
}

// renderAuthError re-renders the sign-in page for err. Validation errors
// become per-field messages; anything else goes to the banner.
func (h *AuthHandler) renderAuthError(
	w http.ResponseWriter,
	r *http.Request,
	mode authpages.Mode,
	fill func(*authpages.LoginPageData),
	err error,
) {
	data := h.pageData(r, mode)
	data.Redirect = redirectValue(r.FormValue(auth.RedirectParam))
	if fill != nil {
		fill(&data)
	}

	status := http.StatusUnprocessableEntity
	if fields := domain.FieldErrors(err); fields != nil {
		data.Errors = fields
	} else {
		data.FormError = domain.UserMessage(err, msgAuthFallback)
		status = ErrorCodeToHTTPStatus(domain.ErrorCode(err))
		if status >= http.StatusInternalServerError {
			h.logger.Error("auth request failed", "path", r.URL.Path, "error", err)
		}
	}

	h.renderer.RenderHTTP(w, r, status, h.renderer.Page("auth/login", data))
}

// redirectValue keeps a redirect worth carrying through the form.
func redirectValue(raw string) string {
	if raw == "" {
		return ""
	}
	if safe := auth.SafeRedirect(raw); safe != "/" {
		return safe
	}
	return ""
}

func parseAddr(ip string) netip.Addr {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return netip.Addr{}
	}
	return addr.Unmap()
}
