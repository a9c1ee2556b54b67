package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/clientdesk/internal/auth"
	"github.com/DukeRupert/clientdesk/internal/backend"
	"github.com/DukeRupert/clientdesk/internal/deleteflow"
	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/service"
	"github.com/DukeRupert/clientdesk/internal/session"
	"github.com/DukeRupert/clientdesk/internal/validation"
	"github.com/DukeRupert/clientdesk/web"
)

// fakeBackend stands in for the REST backend behind both services.
type fakeBackend struct {
	mu sync.Mutex

	loginErr    error
	registerErr error
	listErr     error
	saveErr     error
	deleteErr   error

	clients   []domain.Client
	logins    int
	registers int
	saves     int
	deletes   []domain.ClientID
}

func (f *fakeBackend) Login(_ context.Context, in domain.LoginInput) (*backend.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &backend.AuthResponse{Token: "backend-token", User: domain.User{Name: "Ana", Email: in.Email}}, nil
}

func (f *fakeBackend) Register(_ context.Context, _ domain.RegisterInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers++
	return f.registerErr
}

func (f *fakeBackend) ListClients(_ context.Context, _ string) ([]domain.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Client(nil), f.clients...), nil
}

func (f *fakeBackend) CreateClient(_ context.Context, _ string, in domain.ClientInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.clients = append(f.clients, domain.Client{ID: domain.ClientID("new"), Name: in.Name, Email: in.Email})
	return nil
}

func (f *fakeBackend) UpdateClient(_ context.Context, _ string, _ domain.ClientID, _ domain.ClientInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	return f.saveErr
}

func (f *fakeBackend) DeleteClient(_ context.Context, _ string, id domain.ClientID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, c := range f.clients {
		if c.ID == id {
			f.clients = append(f.clients[:i], f.clients[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeBackend) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

// recordingLimiter records ResetLogin calls.
type recordingLimiter struct {
	resets int
}

func (l *recordingLimiter) ResetLogin(*http.Request) { l.resets++ }

// testApp wires the handlers to real services over fakes.
type testApp struct {
	backend  *fakeBackend
	store    *session.MemoryStore
	authSvc  service.AuthService
	flows    *deleteflow.Registry
	limiter  *recordingLimiter
	renderer *Renderer
	auth     *AuthHandler
	clients  *ClientHandler
	pages    *PageHandler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := discardLogger()
	renderer, err := NewRenderer(RendererConfig{FS: web.Templates(), Logger: logger})
	require.NoError(t, err)

	fb := &fakeBackend{}
	store := session.NewMemoryStore()
	v := validation.New()
	authSvc := service.NewAuthService(fb, store, v, logger, service.AuthServiceConfig{})
	clientSvc := service.NewClientService(fb, v, logger)
	flows := deleteflow.NewRegistry(deleteflow.Config{
		SuccessDisplay: time.Second,
		FailureDisplay: time.Second,
		ClearDelay:     10 * time.Millisecond,
	})
	limiter := &recordingLimiter{}

	authHandler := NewAuthHandler(authSvc, flows, limiter, renderer, logger, false)
	return &testApp{
		backend:  fb,
		store:    store,
		authSvc:  authSvc,
		flows:    flows,
		limiter:  limiter,
		renderer: renderer,
		auth:     authHandler,
		clients:  NewClientHandler(clientSvc, flows, authHandler, renderer, logger),
		pages:    NewPageHandler(renderer, logger),
	}
}

// signIn creates a stored session and returns it with its cookie value.
func (a *testApp) signIn(t *testing.T) (*domain.Session, string) {
	t.Helper()
	res, err := a.authSvc.Login(context.Background(), domain.LoginInput{Email: "ana@example.com", Password: "secret1"}, domain.SessionMeta{})
	require.NoError(t, err)
	return res.Session, res.RawToken
}

// withSession attaches s and its cookie to r.
func withSession(r *http.Request, s *domain.Session, raw string) *http.Request {
	r.AddCookie(&http.Cookie{Name: session.CookieName, Value: raw})
	return r.WithContext(auth.SetSession(r.Context(), s))
}

func htmx(r *http.Request) *http.Request {
	r.Header.Set("HX-Request", "true")
	return r
}

func sampleClients(n int) []domain.Client {
	out := make([]domain.Client, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, domain.Client{
			ID:    domain.ClientID(uuid.NewString()),
			Name:  "Cliente " + string(rune('A'+i-1)),
			Email: "c" + string(rune('a'+i-1)) + "@example.com",
		})
	}
	return out
}

func serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}
