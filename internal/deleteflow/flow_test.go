package deleteflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/session"
)

var testClient = domain.Client{ID: "42", Name: "Ana", Email: "ana@example.com"}

func fastConfig() Config {
	return Config{
		SuccessDisplay: 100 * time.Millisecond,
		FailureDisplay: 150 * time.Millisecond,
		ClearDelay:     10 * time.Millisecond,
	}
}

func TestFlow_RequestOpensDialog(t *testing.T) {
	f := New(fastConfig())

	require.NoError(t, f.Request(testClient))
	s := f.Snapshot()
	assert.Equal(t, Confirming, s.Status)
	assert.True(t, s.Visible)
	require.NotNil(t, s.Target)
	assert.Equal(t, domain.ClientID("42"), s.Target.ID)

	assert.ErrorIs(t, f.Request(testClient), ErrBusy)
}

func TestFlow_Success(t *testing.T) {
	f := New(fastConfig())
	require.NoError(t, f.Request(testClient))

	release := make(chan struct{})
	var deleted atomic.Value
	err := f.Confirm(t.Context(), func(ctx context.Context, id domain.ClientID) error {
		deleted.Store(id)
		<-release
		return nil
	})
	require.NoError(t, err)

	s := f.Snapshot()
	assert.Equal(t, Submitting, s.Status)
	assert.True(t, s.Busy())
	assert.Equal(t, FeedbackSubmitting, s.Feedback)
	assert.NotNil(t, s.Target)

	assert.ErrorIs(t, f.Cancel(), ErrBusy)
	assert.ErrorIs(t, f.Confirm(t.Context(), nil), ErrBusy)

	close(release)
	require.NoError(t, f.Wait(t.Context()))
	assert.Equal(t, domain.ClientID("42"), deleted.Load())

	s, due := f.Poll()
	assert.Equal(t, Succeeded, s.Status)
	assert.Equal(t, FeedbackSucceeded, s.Feedback)
	assert.True(t, due)

	_, due = f.Poll()
	assert.False(t, due, "revalidation is reported once")

	assert.Eventually(t, func() bool {
		s := f.Snapshot()
		return s.Status == Idle && s.Target == nil && !s.Visible
	}, time.Second, 5*time.Millisecond)
}

func TestFlow_FailureShowsBackendMessage(t *testing.T) {
	f := New(fastConfig())
	require.NoError(t, f.Request(testClient))

	require.NoError(t, f.Confirm(t.Context(), func(ctx context.Context, id domain.ClientID) error {
		return domain.Conflict("backend.delete_client", "Cliente possui pedidos")
	}))
	require.NoError(t, f.Wait(t.Context()))

	s, due := f.Poll()
	assert.Equal(t, Failed, s.Status)
	assert.Equal(t, "Cliente possui pedidos", s.Feedback)
	assert.Equal(t, domain.ECONFLICT, domain.ErrorCode(s.Err))
	assert.False(t, due)
	assert.True(t, s.Resolved())

	assert.Eventually(t, func() bool {
		s := f.Snapshot()
		return s.Status == Idle && s.Target == nil && s.Err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestFlow_FailureFallbackMessage(t *testing.T) {
	f := New(fastConfig())
	require.NoError(t, f.Request(testClient))

	require.NoError(t, f.Confirm(t.Context(), func(ctx context.Context, id domain.ClientID) error {
		return errors.New("connection reset")
	}))
	require.NoError(t, f.Wait(t.Context()))

	s := f.Snapshot()
	assert.Equal(t, Failed, s.Status)
	assert.Equal(t, FeedbackFailed, s.Feedback)
}

func TestFlow_FailureStaysLongerThanSuccess(t *testing.T) {
	cfg := Config{SuccessDisplay: 10 * time.Millisecond, FailureDisplay: 200 * time.Millisecond, ClearDelay: 5 * time.Millisecond}
	f := New(cfg)
	require.NoError(t, f.Request(testClient))
	require.NoError(t, f.Confirm(t.Context(), func(ctx context.Context, id domain.ClientID) error {
		return errors.New("boom")
	}))
	require.NoError(t, f.Wait(t.Context()))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, Failed, f.Snapshot().Status)

	assert.Eventually(t, func() bool { return f.Snapshot().Status == Idle }, time.Second, 5*time.Millisecond)
}

func TestFlow_CancelHidesThenClearsTarget(t *testing.T) {
	cfg := fastConfig()
	cfg.ClearDelay = 50 * time.Millisecond
	f := New(cfg)
	require.NoError(t, f.Request(testClient))

	require.NoError(t, f.Cancel())
	s := f.Snapshot()
	assert.Equal(t, Idle, s.Status)
	assert.False(t, s.Visible)
	assert.NotNil(t, s.Target, "target is kept while the dialog closes")

	assert.Eventually(t, func() bool { return f.Snapshot().Target == nil }, time.Second, 5*time.Millisecond)
	assert.NoError(t, f.Cancel())
}

func TestFlow_RequestAfterCancelKeepsNewTarget(t *testing.T) {
	f := New(fastConfig())
	require.NoError(t, f.Request(testClient))
	require.NoError(t, f.Cancel())

	other := domain.Client{ID: "7", Name: "Bruno"}
	require.NoError(t, f.Request(other))

	time.Sleep(30 * time.Millisecond)
	s := f.Snapshot()
	require.NotNil(t, s.Target)
	assert.Equal(t, domain.ClientID("7"), s.Target.ID)
}

func TestFlow_ConfirmRequiresConfirming(t *testing.T) {
	f := New(fastConfig())
	err := f.Confirm(t.Context(), func(ctx context.Context, id domain.ClientID) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, domain.EBUSY, domain.ErrorCode(err))
}

func TestFlow_ConfirmSurvivesRequestCancellation(t *testing.T) {
	f := New(fastConfig())
	require.NoError(t, f.Request(testClient))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.Confirm(ctx, func(ctx context.Context, id domain.ClientID) error {
		time.Sleep(10 * time.Millisecond)
		return ctx.Err()
	}))
	cancel()

	require.NoError(t, f.Wait(t.Context()))
	assert.Equal(t, Succeeded, f.Snapshot().Status)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(fastConfig())
	a, b := uuid.New(), uuid.New()

	fa := r.For(a)
	assert.Same(t, fa, r.For(a))
	assert.NotSame(t, fa, r.For(b))
	assert.Equal(t, 2, r.Len())

	r.Drop(a)
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, fa, r.For(a))
}

func TestRegistry_SweepDropsExpiredSessions(t *testing.T) {
	ctx := t.Context()
	store := session.NewMemoryStore()
	r := NewRegistry(fastConfig())
	now := time.Now()

	for i := range 50 {
		s := &domain.Session{ID: uuid.New(), ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour)}
		require.NoError(t, store.Create(ctx, fmt.Sprintf("expired-%d", i), s))
		r.For(s.ID)
	}
	live := &domain.Session{ID: uuid.New(), ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, store.Create(ctx, "live", live))
	liveFlow := r.For(live.ID)
	require.Equal(t, 51, r.Len())

	task := session.NewSweepTask(store, r.Drop, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, task.Run(ctx))

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, r.Len())
	assert.Same(t, liveFlow, r.For(live.ID))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "submitting", Submitting.String())
	assert.Equal(t, "unknown", Status(99).String())
}
