package deleteflow

import (
	"sync"

	"github.com/google/uuid"
)

// Registry holds one Flow per session.
type Registry struct {
	cfg Config

	mu    sync.Mutex
	flows map[uuid.UUID]*Flow
}

// NewRegistry creates an empty registry whose flows use cfg.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:   cfg,
		flows: make(map[uuid.UUID]*Flow),
	}
}

// For returns the flow of sessionID, creating it on first use.
func (r *Registry) For(sessionID uuid.UUID) *Flow {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flows[sessionID]
	if !ok {
		f = New(r.cfg)
		r.flows[sessionID] = f
	}
	return f
}

// Drop forgets the flow of sessionID.
func (r *Registry) Drop(sessionID uuid.UUID) {
	r.mu.Lock()
	f, ok := r.flows[sessionID]
	delete(r.flows, sessionID)
	r.mu.Unlock()

	if ok {
		f.Close()
	}
}

// Len returns the number of tracked flows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
