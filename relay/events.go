package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/nbd-wtf/go-nostr"
)

// Event kinds this client reads and writes.
const (
	KindMetadata   = 0
	KindTextNote   = 1
	KindRepost     = 6
	KindReaction   = 7
	KindZapReceipt = 9735
)

var ErrInvalidEvent = errors.New("invalid event")

// Validate checks that the id matches the serialized event and that the
// signature verifies against the author key.
func Validate(evt *nostr.Event) error {
	if evt == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if evt.GetID() != evt.ID {
		return fmt.Errorf("%w: id does not match content", ErrInvalidEvent)
	}
	ok, err := evt.CheckSignature()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if !ok {
		return fmt.Errorf("%w: bad signature", ErrInvalidEvent)
	}
	return nil
}

// Convert turns a validated event into the channel events it implies. A
// repost that embeds a valid note yields the note before the repost, so
// the repost attaches at once.
func Convert(evt *nostr.Event, relayURL string) ([]app.Event, error) {
	switch evt.Kind {
	case KindTextNote:
		return []app.Event{app.PostReceived{Relay: relayURL, Post: ToPost(evt, relayURL)}}, nil

	case KindReaction:
		target := lastTag(evt.Tags, "e")
		if target == "" {
			return nil, fmt.Errorf("%w: reaction without e tag", ErrInvalidEvent)
		}
		ref := toRef(evt, domain.RefReaction, target)
		return []app.Event{app.RefReceived{Relay: relayURL, Ref: ref}}, nil

	case KindRepost:
		var out []app.Event
		target := lastTag(evt.Tags, "e")
		if embedded, ok := embeddedNote(evt.Content); ok {
			if target == "" {
				target = embedded.ID
			}
			if embedded.ID == target {
				out = append(out, app.PostReceived{Relay: relayURL, Post: ToPost(embedded, relayURL)})
			}
		}
		if target == "" {
			return nil, fmt.Errorf("%w: repost without target", ErrInvalidEvent)
		}
		ref := toRef(evt, domain.RefRepost, target)
		return append(out, app.RefReceived{Relay: relayURL, Ref: ref}), nil

	case KindZapReceipt:
		ref, err := toZap(evt)
		if err != nil {
			return nil, err
		}
		return []app.Event{app.RefReceived{Relay: relayURL, Ref: ref}}, nil

	case KindMetadata:
		p, err := ToProfile(evt)
		if err != nil {
			return nil, err
		}
		return []app.Event{app.ProfileReceived{Relay: relayURL, Profile: p}}, nil

	default:
		return nil, nil
	}
}

// ToPost converts a kind 1 event. Reply and root ids follow NIP-10: marked
// e tags win; otherwise the first e tag is the root and the last the parent.
func ToPost(evt *nostr.Event, relayURL string) domain.Post {
	p := domain.Post{
		ID:        evt.ID,
		Author:    evt.PubKey,
		CreatedAt: evt.CreatedAt.Time(),
		Content:   evt.Content,
		Relay:     relayURL,
		Raw:       evt.String(),
	}

	var positional []string
	for _, tag := range evt.Tags {
		p.Tags = append(p.Tags, append([]string(nil), tag...))
		if len(tag) < 2 || tag[0] != "e" {
			continue
		}
		marker := ""
		if len(tag) >= 4 {
			marker = tag[3]
		}
		switch marker {
		case "root":
			p.Root = tag[1]
		case "reply":
			p.ReplyTo = tag[1]
		case "mention":
		default:
			positional = append(positional, tag[1])
		}
	}

	if p.Root == "" && p.ReplyTo == "" && len(positional) > 0 {
		p.Root = positional[0]
		p.ReplyTo = positional[len(positional)-1]
	}
	if p.ReplyTo == "" && p.Root != "" {
		p.ReplyTo = p.Root
	}
	return p
}

func toRef(evt *nostr.Event, kind domain.RefKind, target string) domain.Ref {
	content := evt.Content
	if kind == domain.RefRepost {
		content = ""
	}
	return domain.Ref{
		Kind:      kind,
		ID:        evt.ID,
		Author:    evt.PubKey,
		Target:    target,
		Content:   content,
		CreatedAt: evt.CreatedAt.Time(),
	}
}

type metadata struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	About       string `json:"about"`
	Picture     string `json:"picture"`
	NIP05       string `json:"nip05"`
}

// ToProfile parses kind 0 content.
func ToProfile(evt *nostr.Event) (domain.Profile, error) {
	var m metadata
	if err := json.Unmarshal([]byte(evt.Content), &m); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: metadata: %v", ErrInvalidEvent, err)
	}
	return domain.Profile{
		PubKey:      evt.PubKey,
		Name:        m.Name,
		DisplayName: m.DisplayName,
		About:       m.About,
		Picture:     m.Picture,
		NIP05:       m.NIP05,
		CreatedAt:   evt.CreatedAt.Time(),
	}, nil
}

func embeddedNote(content string) (*nostr.Event, bool) {
	if content == "" {
		return nil, false
	}
	var evt nostr.Event
	if err := json.Unmarshal([]byte(content), &evt); err != nil {
		return nil, false
	}
	if evt.Kind != KindTextNote || Validate(&evt) != nil {
		return nil, false
	}
	return &evt, true
}

func lastTag(tags nostr.Tags, name string) string {
	for i := len(tags) - 1; i >= 0; i-- {
		if len(tags[i]) >= 2 && tags[i][0] == name {
			return tags[i][1]
		}
	}
	return ""
}
