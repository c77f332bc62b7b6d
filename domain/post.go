package domain

import (
	"log/slog"
	"time"
)

// Post is a text note as received from a relay. Posts are content addressed
// and never change after they are received.
type Post struct {
	ID        string
	Author    string
	CreatedAt time.Time
	Content   string
	ReplyTo   string // empty unless the note replies to another note
	Root      string
	Tags      [][]string
	Relay     string // first relay that delivered the note
	Raw       string // signed event as received, embedded in reposts
}

// Before orders posts by creation time, then by id.
func (p *Post) Before(o *Post) bool {
	if c := p.CreatedAt.Compare(o.CreatedAt); c != 0 {
		return c < 0
	}
	return p.ID < o.ID
}

func (p *Post) IsReply() bool {
	return p.ReplyTo != ""
}

// LogValue keeps log lines short: content is left out.
func (p Post) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", p.ID),
		slog.String("author", p.Author),
		slog.Time("created_at", p.CreatedAt),
		slog.Int("length", len(p.Content)),
	)
}

type RefKind uint

const (
	RefReaction RefKind = iota
	RefRepost
	RefZap
)

func (k RefKind) String() string {
	switch k {
	case RefRepost:
		return "repost"
	case RefZap:
		return "zap"
	default:
		return "reaction"
	}
}

// Ref is a reaction, repost or zap receipt pointing at a post by id.
type Ref struct {
	Kind      RefKind
	ID        string
	Author    string // for zaps, the sender rather than the receipt signer
	Target    string
	Content   string
	Amount    int64 // millisatoshis, zaps only
	CreatedAt time.Time
}

// Profile is the metadata a user publishes about themselves.
type Profile struct {
	PubKey      string
	Name        string
	DisplayName string
	About       string
	Picture     string
	NIP05       string
	CreatedAt   time.Time
}

// Label returns the best human readable name, or "" if none is set.
func (p Profile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}
