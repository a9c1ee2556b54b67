package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/clientdesk/internal/domain"
)

// ErrNotFound is returned when no session matches a token hash.
var ErrNotFound = errors.New("session not found")

// Store persists sessions keyed by token hash.
type Store interface {
	// Create saves s under tokenHash.
	Create(ctx context.Context, tokenHash string, s *domain.Session) error

	// Get returns the session stored under tokenHash or ErrNotFound.
	// Expired sessions are returned as-is; callers check Expired.
	Get(ctx context.Context, tokenHash string) (*domain.Session, error)

	// Delete removes the session stored under tokenHash. Deleting a
	// missing session is not an error.
	Delete(ctx context.Context, tokenHash string) error

	// DeleteExpired removes every session that expired before now and
	// returns the IDs of the removed sessions.
	DeleteExpired(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}
