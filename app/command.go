package app

import (
	"context"
	"time"

	"github.com/deemkeen/nostui/domain"
)

// Command is an effect requested by the reducer and carried out by the
// runner.
type Command interface {
	isCommand()
}

// PublishNote publishes a text note, as a reply when ReplyTo is set.
type PublishNote struct {
	Content string
	ReplyTo *domain.Post
}

type PublishReaction struct {
	Target domain.Post
}

type PublishRepost struct {
	Target domain.Post
}

// LoadOlder fetches timeline events created up to Until.
type LoadOlder struct {
	Until time.Time
}

// Render hands the current state to the renderer.
type Render struct{}

type Shutdown struct{}

type SuspendProcess struct{}

func (PublishNote) isCommand()     {}
func (PublishReaction) isCommand() {}
func (PublishRepost) isCommand()   {}
func (LoadOlder) isCommand()       {}
func (Render) isCommand()          {}
func (Shutdown) isCommand()        {}
func (SuspendProcess) isCommand()  {}

// Label names a publish command for status messages and logs.
func Label(cmd Command) string {
	switch c := cmd.(type) {
	case PublishNote:
		if c.ReplyTo != nil {
			return "reply"
		}
		return "note"
	case PublishReaction:
		return "reaction"
	case PublishRepost:
		return "repost"
	default:
		return "command"
	}
}

// PublishReport says which relays took an event.
type PublishReport struct {
	EventID  string
	Accepted []string
	Rejected map[string]string
}

// Publisher signs and broadcasts publish commands.
type Publisher interface {
	Publish(ctx context.Context, cmd Command) (PublishReport, error)
}

// Pager fetches history older than the timeline holds.
type Pager interface {
	LoadOlder(ctx context.Context, until time.Time) (int, error)
}

// Renderer displays snapshots. Implementations must not block the caller
// for long; the runner is the only writer of state.
type Renderer interface {
	Render(Snapshot)
	Suspend()
	Quit()
}
