package app

import "context"

// DefaultCapacity bounds the queue of input and relay events.
const DefaultCapacity = 1024

// Channel merges every event source into one stream with a single consumer.
// Input and relay events are queued in order and never dropped: Push blocks
// while the queue is full. Ticks and frames each have a single slot and are
// dropped while an earlier one is still waiting.
type Channel struct {
	events chan Event
	ticks  chan Event
	frames chan Event
}

func NewChannel(capacity int) *Channel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel{
		events: make(chan Event, capacity),
		ticks:  make(chan Event, 1),
		frames: make(chan Event, 1),
	}
}

// Push queues ev, waiting for room. It fails only when ctx is done.
func (c *Channel) Push(ctx context.Context, ev Event) error {
	select {
	case c.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Offer queues a timer event without waiting. It reports false when the
// event was coalesced into one already pending.
func (c *Channel) Offer(ev Event) bool {
	slot := c.ticks
	if _, ok := ev.(Frame); ok {
		slot = c.frames
	}
	select {
	case slot <- ev:
		return true
	default:
		return false
	}
}

// Next returns the next event from any source.
func (c *Channel) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case ev := <-c.ticks:
		return ev, nil
	case ev := <-c.frames:
		return ev, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports how many input and relay events are waiting.
func (c *Channel) Len() int {
	return len(c.events)
}
