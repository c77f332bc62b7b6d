package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/util"
	"github.com/nbd-wtf/go-nostr"
)

const (
	DefaultLookback       = 5 * time.Minute
	DefaultLimit          = 200
	DefaultPublishTimeout = 10 * time.Second
)

var (
	ErrNoRelays = errors.New("no relays connected")
	ErrLostOK   = errors.New("connection lost before OK")
)

// Sink receives relay events. app.Channel is the production sink.
type Sink interface {
	Push(ctx context.Context, ev app.Event) error
}

type Options struct {
	URLs           []string
	Keys           Keys
	Follows        []string // hex public keys; empty means the global feed
	Lookback       time.Duration
	Limit          int
	Backoff        Backoff
	PublishTimeout time.Duration
	Clock          util.Clock
	Logger         *slog.Logger
}

// Pool runs one worker per relay and broadcasts publishes to the relays
// that are connected at the time.
type Pool struct {
	opts    Options
	sink    Sink
	workers []*worker
	log     *slog.Logger
	wg      sync.WaitGroup
}

func NewPool(opts Options, sink Sink) *Pool {
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = DefaultPublishTimeout
	}
	if opts.Clock == nil {
		opts.Clock = util.RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	p := &Pool{
		opts: opts,
		sink: sink,
		log:  opts.Logger.With("component", "relay"),
	}
	seen := map[string]bool{}
	for _, url := range opts.URLs {
		if seen[url] {
			continue
		}
		seen[url] = true
		p.workers = append(p.workers, &worker{
			url:     url,
			sink:    sink,
			clock:   opts.Clock,
			backoff: opts.Backoff,
			filters: p.Filters,
			log:     p.log.With("relay", url),
			status:  domain.RelayStatus{URL: url, State: domain.Disconnected},
		})
	}
	return p
}

// Start launches every worker. They stop when ctx ends; Wait blocks until
// they have.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *worker) {
			defer p.wg.Done()
			w.run(ctx)
		}(w)
	}
}

func (p *Pool) Wait() {
	p.wg.Wait()
}

// Filters is the subscription sent to every relay: recent notes, reposts,
// reactions and zap receipts plus profiles, limited to the follow list when there is one.
func (p *Pool) Filters(now time.Time) nostr.Filters {
	since := nostr.Timestamp(now.Add(-p.opts.Lookback).Unix())
	timeline := p.timelineFilter()
	timeline.Since = &since
	profiles := nostr.Filter{
		Kinds:   []int{KindMetadata},
		Authors: p.authors(),
		Limit:   p.opts.Limit,
	}
	return nostr.Filters{timeline, profiles}
}

func (p *Pool) timelineFilter() nostr.Filter {
	return nostr.Filter{
		Kinds:   []int{KindTextNote, KindRepost, KindReaction, KindZapReceipt},
		Authors: p.authors(),
		Limit:   p.opts.Limit,
	}
}

func (p *Pool) authors() []string {
	if len(p.opts.Follows) == 0 {
		return nil
	}
	return append([]string{p.opts.Keys.Public}, p.opts.Follows...)
}

// LoadOlder asks every connected relay for timeline events created up to
// until and pushes them to the sink. It returns how many distinct events
// were delivered. Relays that fail are logged and skipped; the call fails
// only when none answered.
func (p *Pool) LoadOlder(ctx context.Context, until time.Time) (int, error) {
	filter := p.timelineFilter()
	ts := nostr.Timestamp(until.Unix())
	filter.Until = &ts

	type result struct {
		url    string
		events []*nostr.Event
		err    error
	}
	var targets []*worker
	for _, w := range p.workers {
		if w.connected() != nil {
			targets = append(targets, w)
		}
	}
	if len(targets) == 0 {
		return 0, ErrNoRelays
	}

	results := make(chan result, len(targets))
	for _, w := range targets {
		go func(w *worker) {
			r := w.connected()
			if r == nil {
				results <- result{url: w.url, err: errors.New("disconnected")}
				return
			}
			qctx, cancel := context.WithTimeout(ctx, p.opts.PublishTimeout)
			defer cancel()
			events, err := r.QuerySync(qctx, filter)
			results <- result{url: w.url, events: events, err: err}
		}(w)
	}

	seen := map[string]bool{}
	var errs []error
	for range targets {
		res := <-results
		if res.err != nil {
			p.log.Warn("history query failed", "relay", res.url, "error", res.err)
			errs = append(errs, fmt.Errorf("%s: %w", res.url, res.err))
			continue
		}
		for _, evt := range res.events {
			if seen[evt.ID] {
				continue
			}
			if err := Validate(evt); err != nil {
				p.log.Warn("dropping event", "relay", res.url, "id", evt.ID, "error", err)
				continue
			}
			converted, err := Convert(evt, res.url)
			if err != nil {
				p.log.Warn("dropping event", "relay", res.url, "id", evt.ID, "kind", evt.Kind, "error", err)
				continue
			}
			seen[evt.ID] = true
			for _, ev := range converted {
				if err := p.sink.Push(ctx, ev); err != nil {
					return len(seen), err
				}
			}
		}
	}

	p.log.Info("history loaded", "until", until, "events", len(seen), "failed", len(errs))
	if len(errs) == len(targets) {
		return 0, fmt.Errorf("no relay answered: %w", errors.Join(errs...))
	}
	return len(seen), nil
}

// Statuses returns a copy of every relay's state, sorted by URL.
func (p *Pool) Statuses() []domain.RelayStatus {
	out := make([]domain.RelayStatus, 0, len(p.workers))
	for _, w := range p.workers {
		out = append(out, w.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// Publish signs the event for cmd and sends it to every connected relay
// at once. It succeeds when at least one relay accepts.
func (p *Pool) Publish(ctx context.Context, cmd app.Command) (app.PublishReport, error) {
	evt, err := Build(cmd, p.opts.Clock.Now())
	if err != nil {
		return app.PublishReport{}, err
	}
	if err := evt.Sign(p.opts.Keys.Secret); err != nil {
		return app.PublishReport{}, fmt.Errorf("failed to sign event: %w", err)
	}

	report := app.PublishReport{EventID: evt.ID, Rejected: map[string]string{}}

	type result struct {
		url string
		err error
	}
	var targets []*worker
	for _, w := range p.workers {
		if w.connected() != nil {
			targets = append(targets, w)
		}
	}
	if len(targets) == 0 {
		return report, ErrNoRelays
	}

	results := make(chan result, len(targets))
	for _, w := range targets {
		go func(w *worker) {
			r := w.connected()
			if r == nil {
				results <- result{url: w.url, err: errors.New("disconnected")}
				return
			}
			pubCtx, cancel := context.WithTimeout(ctx, p.opts.PublishTimeout)
			defer cancel()
			results <- result{url: w.url, err: publishTo(pubCtx, r, evt)}
		}(w)
	}

	var errs []error
	for range targets {
		res := <-results
		if res.err != nil {
			report.Rejected[res.url] = res.err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", res.url, res.err))
			continue
		}
		report.Accepted = append(report.Accepted, res.url)
	}
	sort.Strings(report.Accepted)

	p.log.Info("publish finished", "event", evt.ID, "kind", evt.Kind,
		"accepted", len(report.Accepted), "rejected", len(report.Rejected))

	if len(report.Accepted) == 0 {
		return report, fmt.Errorf("no relay accepted the event: %w", errors.Join(errs...))
	}
	return report, nil
}

// publishTo sends evt to one relay. go-nostr reports no error when the
// connection drops while it waits for OK, so a dead connection after a nil
// result counts as a failure.
func publishTo(ctx context.Context, r *nostr.Relay, evt nostr.Event) error {
	err := r.Publish(ctx, evt)
	if err != nil {
		return err
	}
	if r.Context().Err() != nil {
		return fmt.Errorf("%w: %v", ErrLostOK, context.Cause(r.Context()))
	}
	return nil
}
