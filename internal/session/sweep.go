package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/clientdesk/internal/metrics"
)

// SweepTask deletes expired sessions. It satisfies worker.Task.
type SweepTask struct {
	store  Store
	forget func(sessionID uuid.UUID)
	logger *slog.Logger
	now    func() time.Time
}

// NewSweepTask creates a sweep task over store. forget, if not nil, is
// called with the ID of every swept session so per-session state held
// elsewhere goes with it.
func NewSweepTask(store Store, forget func(sessionID uuid.UUID), logger *slog.Logger) *SweepTask {
	return &SweepTask{store: store, forget: forget, logger: logger, now: time.Now}
}

func (t *SweepTask) Type() string { return "session_sweep" }

func (t *SweepTask) Run(ctx context.Context) error {
	ids, err := t.store.DeleteExpired(ctx, t.now())
	if err != nil {
		return err
	}
	if t.forget != nil {
		for _, id := range ids {
			t.forget(id)
		}
	}
	if len(ids) > 0 {
		metrics.SessionsSwept.Add(float64(len(ids)))
		t.logger.Info("Expired sessions deleted", "count", len(ids))
	}
	return nil
}
