package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/util"
	"github.com/nbd-wtf/go-nostr"
)

const dialTimeout = 10 * time.Second

var errSubscriptionClosed = errors.New("subscription closed")

// worker owns one relay connection and its subscription. It reconnects
// with backoff until its context ends.
type worker struct {
	url     string
	sink    Sink
	clock   util.Clock
	backoff Backoff
	filters func(now time.Time) nostr.Filters
	log     *slog.Logger
	open    func(ctx context.Context, url string) *nostr.Relay

	mu       sync.Mutex
	status   domain.RelayStatus
	relay    *nostr.Relay
	attempts int
}

func (w *worker) run(ctx context.Context) {
	w.log.Info("relay worker started")
	defer w.log.Info("relay worker stopped")

	for {
		w.setState(ctx, domain.Connecting, nil)
		err := w.session(ctx)
		if ctx.Err() != nil {
			w.setState(ctx, domain.Disconnected, nil)
			return
		}

		w.mu.Lock()
		w.attempts++
		attempt := w.attempts
		w.mu.Unlock()

		delay := w.backoff.Delay(attempt)
		w.log.Warn("relay connection failed", "attempt", attempt, "retry_in", delay, "error", err)
		w.setState(ctx, domain.Failed, err)

		select {
		case <-ctx.Done():
			w.setState(ctx, domain.Disconnected, nil)
			return
		case <-w.clock.After(delay):
		}
	}
}

// session connects, subscribes and forwards events until the connection
// drops or ctx ends.
func (w *worker) session(ctx context.Context) error {
	open := w.open
	if open == nil {
		open = openRelay
	}
	r := open(ctx, w.url)

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	err := r.Connect(dialCtx)
	cancel()
	if err != nil {
		r.Close()
		return fmt.Errorf("connect: %w", err)
	}
	defer r.Close()

	sub, err := r.Subscribe(ctx, w.filters(w.clock.Now()))
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsub()

	w.mu.Lock()
	w.relay = r
	w.attempts = 0
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.relay = nil
		w.mu.Unlock()
	}()

	w.setState(ctx, domain.Connected, nil)

	eose := sub.EndOfStoredEvents
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.Context().Done():
			return fmt.Errorf("connection lost: %w", context.Cause(r.Context()))
		case reason := <-sub.ClosedReason:
			return fmt.Errorf("closed by relay: %s", reason)
		case <-eose:
			eose = nil
			w.log.Debug("end of stored events")
		case evt, ok := <-sub.Events:
			if !ok {
				return errSubscriptionClosed
			}
			w.handle(ctx, evt)
		}
	}
}

func openRelay(ctx context.Context, url string) *nostr.Relay {
	return nostr.NewRelay(ctx, url)
}

func (w *worker) handle(ctx context.Context, evt *nostr.Event) {
	if err := Validate(evt); err != nil {
		w.log.Warn("dropping event", "id", evt.ID, "error", err)
		return
	}
	events, err := Convert(evt, w.url)
	if err != nil {
		w.log.Warn("dropping event", "id", evt.ID, "kind", evt.Kind, "error", err)
		return
	}
	for _, ev := range events {
		if pr, ok := ev.(app.PostReceived); ok {
			w.log.Debug("post received", "post", pr.Post)
		}
		if err := w.sink.Push(ctx, ev); err != nil {
			return
		}
	}
}

func (w *worker) setState(ctx context.Context, state domain.ConnState, err error) {
	w.mu.Lock()
	w.status.URL = w.url
	w.status.State = state
	w.status.Attempts = w.attempts
	w.status.Since = w.clock.Now()
	if err != nil {
		w.status.LastError = err.Error()
	} else if state == domain.Connected {
		w.status.LastError = ""
	}
	st := w.status
	w.mu.Unlock()

	w.log.Debug("relay state", "state", state)
	if err := w.sink.Push(ctx, app.RelayStatusChanged{Status: st}); err != nil {
		w.log.Debug("relay state not delivered", "error", err)
	}
}

// connected returns the live relay, or nil.
func (w *worker) connected() *nostr.Relay {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.relay
}

func (w *worker) snapshot() domain.RelayStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := w.status
	st.URL = w.url
	return st
}
