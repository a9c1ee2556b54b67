package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/DukeRupert/clientdesk/internal/backend"
	"github.com/DukeRupert/clientdesk/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBackend records calls and serves canned answers.
type fakeBackend struct {
	mu sync.Mutex

	loginResp   *backend.AuthResponse
	loginErr    error
	registerErr error

	clients   []domain.Client
	listErr   error
	mutateErr error

	calls []string
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Login(ctx context.Context, in domain.LoginInput) (*backend.AuthResponse, error) {
	f.record("login")
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Register(ctx context.Context, in domain.RegisterInput) error {
	f.record("register")
	return f.registerErr
}

func (f *fakeBackend) ListClients(ctx context.Context, token string) ([]domain.Client, error) {
	f.record("list")
	return f.clients, f.listErr
}

func (f *fakeBackend) CreateClient(ctx context.Context, token string, in domain.ClientInput) error {
	f.record("create")
	return f.mutateErr
}

func (f *fakeBackend) UpdateClient(ctx context.Context, token string, id domain.ClientID, in domain.ClientInput) error {
	f.record("update:" + id.String())
	return f.mutateErr
}

func (f *fakeBackend) DeleteClient(ctx context.Context, token string, id domain.ClientID) error {
	f.record("delete:" + id.String())
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.clients {
		if c.ID == id {
			f.clients = append(f.clients[:i:i], f.clients[i+1:]...)
			break
		}
	}
	return nil
}
