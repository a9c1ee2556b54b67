// Package service contains the business logic layer.
//
// This file implements the client service. The backend owns client
// records; this service validates input before any network call and pages
// the collection locally.
package service

import (
	"context"
	"log/slog"

	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/metrics"
	"github.com/DukeRupert/clientdesk/internal/pagination"
	"github.com/DukeRupert/clientdesk/internal/validation"
)

const (
	// DefaultPerPage is the number of clients on one list page.
	DefaultPerPage = 6

	// MaxPerPage bounds a per_page query parameter.
	MaxPerPage = 50
)

// ClientBackend is the part of the REST backend the client service needs.
type ClientBackend interface {
	ListClients(ctx context.Context, token string) ([]domain.Client, error)
	CreateClient(ctx context.Context, token string, in domain.ClientInput) error
	UpdateClient(ctx context.Context, token string, id domain.ClientID, in domain.ClientInput) error
	DeleteClient(ctx context.Context, token string, id domain.ClientID) error
}

// ClientService defines the interface for client-related operations.
// Every method takes the session's backend token.
type ClientService interface {
	// List fetches the whole collection and returns one page of it. The
	// requested page is clamped to the available range.
	List(ctx context.Context, token string, page, perPage int) (*domain.ClientPage, error)

	// Get returns a single client.
	// Returns domain.ENOTFOUND if the backend no longer lists it.
	Get(ctx context.Context, token string, id domain.ClientID) (*domain.Client, error)

	// Create creates a client.
	// Returns a *domain.ValidationError without calling the backend when
	// the input is invalid.
	Create(ctx context.Context, token string, in domain.ClientInput) error

	// Update replaces a client's fields. Validation works as in Create.
	Update(ctx context.Context, token string, id domain.ClientID, in domain.ClientInput) error

	// Delete removes a client.
	Delete(ctx context.Context, token string, id domain.ClientID) error
}

type clientService struct {
	backend   ClientBackend
	validator *validation.Validator
	logger    *slog.Logger
}

// NewClientService creates a new ClientService.
func NewClientService(b ClientBackend, v *validation.Validator, logger *slog.Logger) ClientService {
	return &clientService{
		backend:   b,
		validator: v,
		logger:    logger,
	}
}

func (s *clientService) List(ctx context.Context, token string, page, perPage int) (*domain.ClientPage, error) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	clients, err := s.backend.ListClients(ctx, token)
	if err != nil {
		return nil, err
	}

	total := len(clients)
	totalPages := pagination.TotalPages(total, perPage)
	current := pagination.Clamp(page, totalPages)

	return &domain.ClientPage{
		Clients:     pagination.Slice(clients, current, perPage),
		Total:       total,
		CurrentPage: current,
		TotalPages:  totalPages,
		PerPage:     perPage,
	}, nil
}

func (s *clientService) Get(ctx context.Context, token string, id domain.ClientID) (*domain.Client, error) {
	const op = "client.get"

	clients, err := s.backend.ListClients(ctx, token)
	if err != nil {
		return nil, err
	}
	c, ok := domain.FindClient(clients, id)
	if !ok {
		return nil, domain.NotFound(op, "Cliente", id.String())
	}
	return &c, nil
}

func (s *clientService) Create(ctx context.Context, token string, in domain.ClientInput) error {
	const op = "client.create"

	in = in.Normalize()
	if err := s.validator.Struct(op, in); err != nil {
		return err
	}

	err := s.backend.CreateClient(ctx, token, in)
	metrics.ClientMutationsTotal.WithLabelValues("create", metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Warn("client create failed", "code", domain.ErrorCode(err), "error", err)
		return err
	}

	s.logger.Info("client created", "email", in.Email)
	return nil
}

func (s *clientService) Update(ctx context.Context, token string, id domain.ClientID, in domain.ClientInput) error {
	const op = "client.update"

	if id == "" {
		return domain.Invalid(op, "Cliente inválido")
	}
	in = in.Normalize()
	if err := s.validator.Struct(op, in); err != nil {
		return err
	}

	err := s.backend.UpdateClient(ctx, token, id, in)
	metrics.ClientMutationsTotal.WithLabelValues("update", metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Warn("client update failed", "client_id", id, "code", domain.ErrorCode(err), "error", err)
		return err
	}

	s.logger.Info("client updated", "client_id", id)
	return nil
}

func (s *clientService) Delete(ctx context.Context, token string, id domain.ClientID) error {
	const op = "client.delete"

	if id == "" {
		return domain.Invalid(op, "Cliente inválido")
	}

	err := s.backend.DeleteClient(ctx, token, id)
	metrics.ClientMutationsTotal.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.Warn("client delete failed", "client_id", id, "code", domain.ErrorCode(err), "error", err)
		return err
	}

	s.logger.Info("client deleted", "client_id", id)
	return nil
}
