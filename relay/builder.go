package relay

import (
	"fmt"
	"time"

	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/nbd-wtf/go-nostr"
)

// NewNote builds an unsigned kind 1 note.
func NewNote(content string, at time.Time) nostr.Event {
	return nostr.Event{
		Kind:      KindTextNote,
		CreatedAt: nostr.Timestamp(at.Unix()),
		Content:   content,
		Tags:      nostr.Tags{},
	}
}

// NewReply builds a kind 1 reply with NIP-10 marked tags. The parent's e
// tags are carried over with its reply marker dropped, then the parent is
// added as root when it starts a thread and as reply otherwise. Everyone
// tagged in the parent stays tagged, plus the parent's author.
func NewReply(content string, parent domain.Post, at time.Time) nostr.Event {
	evt := NewNote(content, at)

	hasE := false
	for _, tag := range parent.Tags {
		if len(tag) < 2 || tag[0] != "e" {
			continue
		}
		hasE = true
		t := nostr.Tag{"e", tag[1], "", ""}
		if len(tag) >= 3 {
			t[2] = tag[2]
		}
		if len(tag) >= 4 && tag[3] != "reply" {
			t[3] = tag[3]
		}
		if t[3] == "" {
			t = t[:3]
		}
		evt.Tags = append(evt.Tags, t)
	}
	// Unmarked positional tags mean the first one is the root.
	if hasE && parent.Root != "" && !hasMarker(evt.Tags, "root") {
		evt.Tags = markRoot(evt.Tags, parent.Root)
	}

	marker := "reply"
	if !hasE {
		marker = "root"
	}
	evt.Tags = append(evt.Tags, nostr.Tag{"e", parent.ID, parent.Relay, marker})

	seen := map[string]bool{}
	for _, tag := range parent.Tags {
		if len(tag) >= 2 && tag[0] == "p" && !seen[tag[1]] {
			seen[tag[1]] = true
			evt.Tags = append(evt.Tags, nostr.Tag{"p", tag[1]})
		}
	}
	if !seen[parent.Author] {
		evt.Tags = append(evt.Tags, nostr.Tag{"p", parent.Author})
	}
	return evt
}

// NewReaction builds a kind 7 "+" reaction.
func NewReaction(target domain.Post, at time.Time) nostr.Event {
	return nostr.Event{
		Kind:      KindReaction,
		CreatedAt: nostr.Timestamp(at.Unix()),
		Content:   "+",
		Tags: nostr.Tags{
			{"e", target.ID, target.Relay},
			{"p", target.Author},
		},
	}
}

// NewRepost builds a kind 6 repost embedding the original event.
func NewRepost(target domain.Post, at time.Time) nostr.Event {
	return nostr.Event{
		Kind:      KindRepost,
		CreatedAt: nostr.Timestamp(at.Unix()),
		Content:   target.Raw,
		Tags: nostr.Tags{
			{"e", target.ID, target.Relay},
			{"p", target.Author},
		},
	}
}

// Build turns a publish command into an unsigned event.
func Build(cmd app.Command, at time.Time) (nostr.Event, error) {
	switch c := cmd.(type) {
	case app.PublishNote:
		if c.ReplyTo != nil {
			return NewReply(c.Content, *c.ReplyTo, at), nil
		}
		return NewNote(c.Content, at), nil
	case app.PublishReaction:
		return NewReaction(c.Target, at), nil
	case app.PublishRepost:
		return NewRepost(c.Target, at), nil
	default:
		return nostr.Event{}, fmt.Errorf("not a publish command: %T", cmd)
	}
}

func hasMarker(tags nostr.Tags, marker string) bool {
	for _, t := range tags {
		if len(t) >= 4 && t[0] == "e" && t[3] == marker {
			return true
		}
	}
	return false
}

func markRoot(tags nostr.Tags, root string) nostr.Tags {
	for i, t := range tags {
		if t[0] != "e" || t[1] != root {
			continue
		}
		if len(t) < 3 {
			t = append(t, "")
		}
		tags[i] = nostr.Tag{"e", t[1], t[2], "root"}
		break
	}
	return tags
}
