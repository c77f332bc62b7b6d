package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/deemkeen/nostui/util"
	"github.com/google/uuid"
)

// DefaultShutdownGrace is how long in-flight publishes may keep running
// after Quit.
const DefaultShutdownGrace = 3 * time.Second

var ErrNoPager = errors.New("history is not available")

type Options struct {
	// StopSources cancels timers and input pushes.
	StopSources func()
	// StopPublisher closes the relay connections. It runs once in-flight
	// publishes are done or the grace period is over.
	StopPublisher func()
	// Pager serves LoadOlder commands. Without one they fail.
	Pager Pager
	// Grace bounds the wait for in-flight publishes on shutdown.
	Grace  time.Duration
	Clock  util.Clock
	Logger *slog.Logger
}

// Runner is the single consumer of the Channel and the only writer of
// State. It reduces one event at a time and carries out the resulting
// commands.
type Runner struct {
	reducer   Reducer
	state     State
	ch        *Channel
	publisher Publisher
	renderer  Renderer
	opts      Options
	log       *slog.Logger

	pubCtx    context.Context
	pubCancel context.CancelFunc
	inflight  sync.WaitGroup
	mu        sync.Mutex
	pending   map[uuid.UUID]string
}

func NewRunner(reducer Reducer, state State, ch *Channel, publisher Publisher, renderer Renderer, opts Options) *Runner {
	if opts.Grace <= 0 {
		opts.Grace = DefaultShutdownGrace
	}
	if opts.Clock == nil {
		opts.Clock = util.RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.StopSources == nil {
		opts.StopSources = func() {}
	}
	if opts.StopPublisher == nil {
		opts.StopPublisher = func() {}
	}
	return &Runner{
		reducer:   reducer,
		state:     state,
		ch:        ch,
		publisher: publisher,
		renderer:  renderer,
		opts:      opts,
		log:       opts.Logger.With("component", "runner"),
		pending:   make(map[uuid.UUID]string),
	}
}

// Run processes events until a Shutdown command or until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	r.pubCtx, r.pubCancel = context.WithCancel(context.WithoutCancel(ctx))
	defer r.pubCancel()

	r.log.Info("runner started")
	for {
		ev, err := r.ch.Next(ctx)
		if err != nil {
			r.shutdown()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var cmds []Command
		r.state, cmds = r.reducer.Reduce(r.state, ev)
		for _, cmd := range cmds {
			if _, quit := cmd.(Shutdown); quit {
				r.log.Info("shutdown requested")
				r.shutdown()
				return nil
			}
			r.dispatch(cmd)
		}
	}
}

// State returns the current state. Only safe to call when Run is not
// running.
func (r *Runner) State() State {
	return r.state
}

func (r *Runner) dispatch(cmd Command) {
	switch c := cmd.(type) {
	case Render:
		r.renderer.Render(r.state.Snapshot())
	case SuspendProcess:
		r.log.Info("suspending")
		r.renderer.Suspend()
	case PublishNote, PublishReaction, PublishRepost:
		r.publish(c)
	case LoadOlder:
		r.loadOlder(c)
	default:
		r.log.Warn("unhandled command", "command", Label(cmd))
	}
}

func (r *Runner) publish(cmd Command) {
	id := uuid.New()
	label := Label(cmd)

	r.mu.Lock()
	r.pending[id] = label
	r.mu.Unlock()
	r.inflight.Add(1)

	go func() {
		report, err := r.publisher.Publish(r.pubCtx, cmd)

		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
		r.inflight.Done()

		if err != nil {
			r.log.Warn("publish failed", "id", id, "kind", label, "error", err)
		} else {
			r.log.Info("published", "id", id, "kind", label, "event", report.EventID, "accepted", len(report.Accepted))
		}
		ev := PublishFinished{ID: id, Label: label, Report: report, Err: err}
		if err := r.ch.Push(r.pubCtx, ev); err != nil {
			r.log.Debug("publish result dropped", "id", id, "error", err)
		}
	}()
}

// loadOlder runs a history fetch in the background. Unlike publishes it is
// not waited for on shutdown.
func (r *Runner) loadOlder(cmd LoadOlder) {
	go func() {
		var ev LoadFinished
		if r.opts.Pager == nil {
			ev.Err = ErrNoPager
		} else {
			ev.Count, ev.Err = r.opts.Pager.LoadOlder(r.pubCtx, cmd.Until)
		}
		if ev.Err != nil {
			r.log.Warn("loading older notes failed", "until", cmd.Until, "error", ev.Err)
		}
		if err := r.ch.Push(r.pubCtx, ev); err != nil {
			r.log.Debug("load result dropped", "error", err)
		}
	}()
}

// shutdown stops input and timers, then gives in-flight publishes the grace
// period before closing the publisher and abandoning them.
func (r *Runner) shutdown() {
	r.opts.StopSources()

	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-r.opts.Clock.After(r.opts.Grace):
		r.mu.Lock()
		for id, label := range r.pending {
			r.log.Warn("abandoning publish", "id", id, "kind", label)
		}
		r.mu.Unlock()
	}
	r.opts.StopPublisher()
	r.pubCancel()
	r.renderer.Quit()
}
