// Package deleteflow drives the delete-confirmation dialog:
// Idle → Confirming → Submitting → Succeeded | Failed → Idle.
//
// A Flow is owned by one session. The delete call runs in the background so
// the dialog can be polled while it is in flight.
package deleteflow

import (
	"context"
	"sync"
	"time"

	"github.com/DukeRupert/clientdesk/internal/domain"
	"github.com/DukeRupert/clientdesk/internal/metrics"
)

// Status is the stage of the confirmation dialog.
type Status int

const (
	Idle Status = iota
	Confirming
	Submitting
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Confirming:
		return "confirming"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Feedback lines shown in the dialog.
const (
	FeedbackSubmitting = "Excluindo..."
	FeedbackSucceeded  = "Cliente excluído!"
	FeedbackFailed     = "Erro ao excluir cliente"
)

// ErrBusy is returned when an action does not apply to the current stage.
var ErrBusy = &domain.Error{
	Code:    domain.EBUSY,
	Op:      "deleteflow",
	Message: "Aguarde a conclusão da exclusão em andamento",
}

// Deleter performs the backend delete.
type Deleter func(ctx context.Context, id domain.ClientID) error

// Config holds the display timings.
type Config struct {
	// SuccessDisplay is how long the success line stays before the dialog
	// closes. Default: 1.5 seconds
	SuccessDisplay time.Duration

	// FailureDisplay is how long the failure line stays. It is longer than
	// SuccessDisplay so the message can be read. Default: 3 seconds
	FailureDisplay time.Duration

	// ClearDelay is how long the target stays after a cancel, so the
	// closing dialog keeps its text. Default: 300 milliseconds
	ClearDelay time.Duration
}

// DefaultConfig returns the standard timings.
func DefaultConfig() Config {
	return Config{
		SuccessDisplay: 1500 * time.Millisecond,
		FailureDisplay: 3 * time.Second,
		ClearDelay:     300 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SuccessDisplay <= 0 {
		c.SuccessDisplay = d.SuccessDisplay
	}
	if c.FailureDisplay <= 0 {
		c.FailureDisplay = d.FailureDisplay
	}
	if c.ClearDelay <= 0 {
		c.ClearDelay = d.ClearDelay
	}
	return c
}

// Snapshot is a copy of the flow state for rendering.
type Snapshot struct {
	Status   Status
	Target   *domain.Client
	Visible  bool
	Feedback string
	// Err is the backend error of a Failed delete.
	Err error
}

// Busy reports whether the dialog controls are frozen.
func (s Snapshot) Busy() bool {
	return s.Status == Submitting
}

// Resolved reports whether the dialog is showing a result.
func (s Snapshot) Resolved() bool {
	return s.Status == Succeeded || s.Status == Failed
}

// Flow is one delete-confirmation state machine.
type Flow struct {
	cfg Config

	mu         sync.Mutex
	status     Status
	target     *domain.Client
	visible    bool
	feedback   string
	err        error
	revalidate bool
	timer      *time.Timer
	done       chan struct{}
}

// New creates an idle flow.
func New(cfg Config) *Flow {
	return &Flow{cfg: cfg.withDefaults()}
}

// Request opens the dialog for c. It returns ErrBusy unless the flow is
// idle.
func (f *Flow) Request(c domain.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != Idle {
		return ErrBusy
	}
	f.stopTimer()

	target := c
	f.target = &target
	f.visible = true
	f.feedback = ""
	f.transition(Confirming)
	return nil
}

// Confirm starts the delete of the current target. The call runs on a
// context detached from ctx so that it outlives the request that started
// it; ctx values such as the request ID are kept.
func (f *Flow) Confirm(ctx context.Context, del Deleter) error {
	f.mu.Lock()
	if f.status != Confirming || f.target == nil {
		f.mu.Unlock()
		return ErrBusy
	}
	id := f.target.ID
	f.feedback = FeedbackSubmitting
	f.done = make(chan struct{})
	done := f.done
	f.transition(Submitting)
	f.mu.Unlock()

	go func() {
		defer close(done)
		err := del(context.WithoutCancel(ctx), id)
		f.resolve(err)
	}()
	return nil
}

// Cancel closes the dialog from Confirming. The target is cleared after
// ClearDelay. It returns ErrBusy while a delete is in flight or resolved.
func (f *Flow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.status {
	case Idle:
		return nil
	case Confirming:
	default:
		return ErrBusy
	}

	f.visible = false
	f.feedback = ""
	f.transition(Idle)
	f.schedule(f.cfg.ClearDelay, f.clearTarget)
	return nil
}

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// Poll returns the current state and whether the client list should be
// reloaded. The reload flag is reported once.
func (f *Flow) Poll() (Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	due := f.revalidate
	f.revalidate = false
	return f.snapshot(), due
}

// Wait blocks until the in-flight delete, if any, has resolved or ctx is
// done.
func (f *Flow) Wait(ctx context.Context) error {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops pending timers. A delete already in flight still completes.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimer()
}

func (f *Flow) resolve(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err == nil {
		f.feedback = FeedbackSucceeded
		f.revalidate = true
		f.transition(Succeeded)
		f.schedule(f.cfg.SuccessDisplay, f.reset)
		return
	}

	f.feedback = domain.UserMessage(err, FeedbackFailed)
	f.err = err
	f.transition(Failed)
	f.schedule(f.cfg.FailureDisplay, f.reset)
}

// reset returns a resolved flow to Idle. Called with mu held.
func (f *Flow) reset() {
	f.visible = false
	f.feedback = ""
	f.err = nil
	f.target = nil
	f.transition(Idle)
}

// clearTarget drops a cancelled target unless a new request took over.
// Called with mu held.
func (f *Flow) clearTarget() {
	if f.status == Idle {
		f.target = nil
	}
}

// schedule runs fn under mu after d, replacing any pending timer.
// Called with mu held.
func (f *Flow) schedule(d time.Duration, fn func()) {
	f.stopTimer()
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.timer != t {
			return
		}
		f.timer = nil
		fn()
	})
	f.timer = t
}

func (f *Flow) stopTimer() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

func (f *Flow) transition(to Status) {
	f.status = to
	metrics.DeleteFlowTransitions.WithLabelValues(to.String()).Inc()
}

func (f *Flow) snapshot() Snapshot {
	s := Snapshot{
		Status:   f.status,
		Visible:  f.visible,
		Feedback: f.feedback,
		Err:      f.err,
	}
	if f.target != nil {
		t := *f.target
		s.Target = &t
	}
	return s
}
