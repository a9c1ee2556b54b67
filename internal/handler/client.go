// Package handler contains HTTP handlers for the clientdesk application.
//
// This file implements the client list, the create/edit modal and the
// delete-confirmation dialog.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DukeRupert/clientdesk/internal/auth"
	"github.com/DukeRupert/clientdesk/internal/csrf"
	"github.com/DukeRupert/clientdesk/internal/deleteflow"
	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/pagination"
	"github.com/DukeRupert/clientdesk/internal/service"
	pagview "github.com/DukeRupert/clientdesk/internal/templ/components/pagination"
	"github.com/DukeRupert/clientdesk/internal/templ/pages/clients"
	"github.com/DukeRupert/clientdesk/internal/templ/shared"
)

// ClientsChangedEvent is the htmx event that makes the list refetch itself.
const ClientsChangedEvent = "clients-changed"

// Messages shown by the client views.
const (
	msgCreated        = "Cliente criado com sucesso!"
	msgUpdated        = "Cliente atualizado com sucesso!"
	msgCreateFallback = "Erro ao adicionar cliente"
	msgUpdateFallback = "Erro ao atualizar cliente"
	msgListFallback   = "Erro ao carregar clientes"
	msgNotFound       = "Cliente não encontrado"
)

// listConfig binds the list pagination to its URLs.
var listConfig = pagview.Config{
	BaseURL:     "/",
	FragmentURL: "/clients",
	TargetID:    "client-list",
}

// SessionEnder ends the current session after the backend rejected its token.
type SessionEnder interface {
	EndSession(w http.ResponseWriter, r *http.Request)
}

// =============================================================================
// Handler Configuration
// =============================================================================

// ClientHandler handles client-related HTTP requests.
//
// Routes handled (all require a session):
//   - GET  /                        -> Home
//   - GET  /clients                 -> List
//   - GET  /clients/new             -> NewForm
//   - GET  /clients/{id}/edit       -> EditForm
//   - POST /clients                 -> Create
//   - PUT  /clients/{id}            -> Update (POST also accepted)
//   - POST /clients/{id}/delete     -> RequestDelete
//   - POST /clients/delete/confirm  -> ConfirmDelete
//   - POST /clients/delete/cancel   -> CancelDelete
//   - GET  /clients/delete/status   -> DeleteStatus
type ClientHandler struct {
	clientService service.ClientService
	flows         *deleteflow.Registry
	sessions      SessionEnder
	renderer      TemplateRenderer
	logger        *slog.Logger
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(
	clientService service.ClientService,
	flows *deleteflow.Registry,
	sessions SessionEnder,
	renderer TemplateRenderer,
	logger *slog.Logger,
) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		flows:         flows,
		sessions:      sessions,
		renderer:      renderer,
		logger:        logger,
	}
}

// RegisterRoutes registers the client routes behind requireSession.
func (h *ClientHandler) RegisterRoutes(mux *http.ServeMux, requireSession func(http.Handler) http.Handler) {
	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, requireSession(fn))
	}

	route("GET /{$}", h.Home)
	route("GET /clients", h.List)
	route("GET /clients/new", h.NewForm)
	route("GET /clients/{id}/edit", h.EditForm)
	route("POST /clients", h.Create)
	route("PUT /clients/{id}", h.Update)
	route("POST /clients/{id}", h.Update)
	route("POST /clients/{id}/delete", h.RequestDelete)
	route("POST /clients/delete/confirm", h.ConfirmDelete)
	route("POST /clients/delete/cancel", h.CancelDelete)
	route("GET /clients/delete/status", h.DeleteStatus)
}

// =============================================================================
// GET / - Client List Page
// =============================================================================

// Home renders the client list page.
func (h *ClientHandler) Home(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())

	list, ok := h.loadList(w, r, s)
	if !ok {
		return
	}

	data := clients.HomePageData{
		Page: shared.Page{
			Title:       "Clientes",
			CurrentPath: r.URL.Path,
			CSRFToken:   list.CSRFToken,
			User:        shared.NewUserDisplay(s.User),
		},
		List: list,
	}
	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Page("home", data))
}

// =============================================================================
// GET /clients - Client List Fragment
// =============================================================================

// List renders the list fragment. The list refetches itself through this
// route whenever the clients-changed event fires. When the requested page no
// longer exists the page is re-clamped and the address bar follows.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())

	list, ok := h.loadList(w, r, s)
	if !ok {
		return
	}

	if list.Pagination.CurrentPage != requestedPage(r) {
		w.Header().Set("HX-Replace-Url", list.Pagination.PageURL(list.Pagination.CurrentPage))
	}
	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Partial("client_list", list))
}

// loadList fetches one page of clients. A backend failure is rendered into
// the list; a rejected token ends the session and reports false.
func (h *ClientHandler) loadList(w http.ResponseWriter, r *http.Request, s *domain.Session) (clients.ListData, bool) {
	list := clients.ListData{CSRFToken: csrf.Token(r.Context())}

	page, err := h.clientService.List(r.Context(), s.Token, requestedPage(r), service.DefaultPerPage)
	if err != nil {
		if h.handleExpired(w, r, err) {
			return list, false
		}
		h.logger.Error("failed to list clients", "error", err)
		list.Error = domain.UserMessage(err, msgListFallback)
		list.Pagination = pagview.NewView(pagination.New(1, service.DefaultPerPage, 0), listConfig)
		return list, true
	}

	list.Clients = make([]clients.DisplayClient, 0, len(page.Clients))
	for _, c := range page.Clients {
		list.Clients = append(list.Clients, clients.NewDisplayClient(c))
	}
	list.Pagination = pagview.NewView(pagination.New(page.CurrentPage, page.PerPage, page.Total), listConfig)
	return list, true
}

// =============================================================================
// GET /clients/new, GET /clients/{id}/edit - Form Modal
// =============================================================================

// NewForm renders an empty create form.
func (h *ClientHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, clients.FormData{})
}

// EditForm renders the edit form pre-filled from the backend record.
func (h *ClientHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())
	id := domain.ClientID(r.PathValue("id"))

	c, err := h.clientService.Get(r.Context(), s.Token, id)
	if err != nil {
		if h.handleExpired(w, r, err) {
			return
		}
		h.renderForm(w, r, clients.FormData{
			ClientID:  id.String(),
			FormError: domain.UserMessage(err, msgNotFound),
		})
		return
	}

	h.renderForm(w, r, clients.FormData{
		ClientID: id.String(),
		Form:     clients.NewFormValues(domain.InputFromClient(*c)),
	})
}

// =============================================================================
// POST /clients - Create Client
// =============================================================================

// Create processes the client creation form.
//
// Validation errors are shown per field and never reach the backend. A
// backend failure shows its message, or a generic one, above the buttons.
// On success the modal switches to its success state and the list reloads.
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())
	values := formValues(r)

	err := h.clientService.Create(r.Context(), s.Token, values.Input())
	h.finishSave(w, r, clients.FormData{Form: values}, err, msgCreated, msgCreateFallback)
}

// =============================================================================
// PUT /clients/{id} - Update Client
// =============================================================================

// Update processes the client edit form. It behaves like Create.
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())
	id := domain.ClientID(r.PathValue("id"))
	values := formValues(r)

	err := h.clientService.Update(r.Context(), s.Token, id, values.Input())
	h.finishSave(w, r, clients.FormData{ClientID: id.String(), Form: values}, err, msgUpdated, msgUpdateFallback)
}

func (h *ClientHandler) finishSave(w http.ResponseWriter, r *http.Request, data clients.FormData, err error, success, fallback string) {
	if err != nil {
		if h.handleExpired(w, r, err) {
			return
		}
		if fields := domain.FieldErrors(err); fields != nil {
			data.Errors = fields
		} else {
			h.logger.Warn("client save failed", "client_id", data.ClientID, "error", err)
			data.FormError = domain.UserMessage(err, fallback)
		}
		h.renderForm(w, r, data)
		return
	}

	w.Header().Set("HX-Trigger", ClientsChangedEvent)
	h.renderForm(w, r, clients.FormData{
		ClientID:  data.ClientID,
		Succeeded: true,
		Message:   success,
	})
}

func (h *ClientHandler) renderForm(w http.ResponseWriter, r *http.Request, data clients.FormData) {
	data.CSRFToken = csrf.Token(r.Context())
	if data.Errors == nil {
		data.Errors = map[string]string{}
	}
	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Partial("client_form", data))
}

// =============================================================================
// Delete-Confirmation Dialog
// =============================================================================

// RequestDelete opens the confirmation dialog for a client. While another
// delete is in flight the dialog keeps showing that one.
func (h *ClientHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())
	flow := h.flows.For(s.ID)
	id := domain.ClientID(r.PathValue("id"))

	c, err := h.clientService.Get(r.Context(), s.Token, id)
	if err != nil {
		if h.handleExpired(w, r, err) {
			return
		}
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			// Stale row: reload the list instead of opening the dialog.
			w.Header().Set("HX-Trigger", ClientsChangedEvent)
			h.renderDialog(w, r, flow.Snapshot())
			return
		}
		h.renderFlash(w, r, &shared.Flash{Type: "error", Message: domain.UserMessage(err, deleteflow.FeedbackFailed)})
		return
	}

	if err := flow.Request(*c); err != nil && !errors.Is(err, deleteflow.ErrBusy) {
		h.logger.Error("delete request failed", "error", err)
	}
	h.renderDialog(w, r, flow.Snapshot())
}

// ConfirmDelete starts the backend delete for the dialog's target. The call
// outlives this request; the dialog polls DeleteStatus for the outcome.
func (h *ClientHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())
	flow := h.flows.For(s.ID)
	token := s.Token

	err := flow.Confirm(r.Context(), func(ctx context.Context, id domain.ClientID) error {
		return h.clientService.Delete(ctx, token, id)
	})
	if err != nil {
		h.logger.Debug("delete confirm ignored", "status", flow.Snapshot().Status.String())
	}
	h.renderDialog(w, r, flow.Snapshot())
}

// CancelDelete closes the dialog. It is refused while the delete is in
// flight and the dialog stays as it is.
func (h *ClientHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())
	flow := h.flows.For(s.ID)

	if err := flow.Cancel(); err != nil {
		h.logger.Debug("delete cancel refused", "status", flow.Snapshot().Status.String())
	}
	h.renderDialog(w, r, flow.Snapshot())
}

// DeleteStatus reports the dialog state. Once a delete succeeded the first
// poll also tells the list to reload. A delete the backend rejected for an
// expired token ends the session like any other client call.
func (h *ClientHandler) DeleteStatus(w http.ResponseWriter, r *http.Request) {
	s := auth.GetSession(r.Context())
	flow := h.flows.For(s.ID)

	snap, due := flow.Poll()
	if snap.Status == deleteflow.Failed && h.handleExpired(w, r, snap.Err) {
		return
	}
	if due {
		w.Header().Set("HX-Trigger", ClientsChangedEvent)
	}
	h.renderDialog(w, r, snap)
}

func (h *ClientHandler) renderDialog(w http.ResponseWriter, r *http.Request, snap deleteflow.Snapshot) {
	data := clients.NewDeleteDialogData(snap, csrf.Token(r.Context()))
	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Partial("delete_dialog", data))
}

// =============================================================================
// Helpers
// =============================================================================

// handleExpired ends the session when the backend rejected its token and
// sends the visitor to the login page. It reports whether it did.
func (h *ClientHandler) handleExpired(w http.ResponseWriter, r *http.Request, err error) bool {
	if domain.ErrorCode(err) != domain.EUNAUTHORIZED {
		return false
	}
	h.logger.Info("backend rejected session token", "path", r.URL.Path)
	h.sessions.EndSession(w, r)
	auth.Redirect(w, r, expiredLoginURL(auth.CurrentPath(r)))
	return true
}

// renderFlash shows a message in the page flash area instead of the
// request's own target.
func (h *ClientHandler) renderFlash(w http.ResponseWriter, r *http.Request, flash *shared.Flash) {
	w.Header().Set("HX-Retarget", "#flash")
	w.Header().Set("HX-Reswap", "innerHTML")
	h.renderer.RenderHTTP(w, r, http.StatusOK, h.renderer.Partial("flash", flash))
}

func expiredLoginURL(path string) string {
	u := auth.LoginURL(path)
	if strings.Contains(u, "?") {
		return u + "&expired=1"
	}
	return u + "?expired=1"
}

func formValues(r *http.Request) clients.ClientFormValues {
	return clients.ClientFormValues{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		Company: strings.TrimSpace(r.FormValue("company")),
	}
}

// requestedPage reads the page query parameter. Missing or malformed
// values mean page 1.
func requestedPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
