package relay

import (
	"errors"
	"testing"
	"time"

	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/nbd-wtf/go-nostr"
)

var testTime = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func signed(t *testing.T, kind int, content string, tags nostr.Tags) nostr.Event {
	t.Helper()
	evt := nostr.Event{
		Kind:      kind,
		CreatedAt: nostr.Timestamp(testTime.Unix()),
		Content:   content,
		Tags:      tags,
	}
	if evt.Tags == nil {
		evt.Tags = nostr.Tags{}
	}
	if err := evt.Sign(testSecret); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return evt
}

func TestValidate(t *testing.T) {
	evt := signed(t, KindTextNote, "hello", nil)
	if err := Validate(&evt); err != nil {
		t.Fatalf("Expected valid event, got %v", err)
	}

	tampered := evt
	tampered.Content = "goodbye"
	if err := Validate(&tampered); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent for changed content, got %v", err)
	}

	other := signed(t, KindTextNote, "other", nil)
	forged := evt
	forged.Sig = other.Sig
	if err := Validate(&forged); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent for foreign signature, got %v", err)
	}

	if err := Validate(nil); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent for nil, got %v", err)
	}
}

func TestConvertNote(t *testing.T) {
	evt := signed(t, KindTextNote, "gm", nostr.Tags{{"t", "gm"}})

	events, err := Convert(&evt, "wss://one")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	pr, ok := events[0].(app.PostReceived)
	if !ok {
		t.Fatalf("Expected PostReceived, got %T", events[0])
	}
	p := pr.Post
	if p.ID != evt.ID || p.Author != evt.PubKey || p.Content != "gm" {
		t.Errorf("Unexpected post %+v", p)
	}
	if !p.CreatedAt.Equal(testTime) {
		t.Errorf("Expected %v, got %v", testTime, p.CreatedAt)
	}
	if p.Relay != "wss://one" || pr.Relay != "wss://one" {
		t.Errorf("Expected relay wss://one, got %s", p.Relay)
	}
	if p.IsReply() {
		t.Errorf("Expected a top level post, got reply to %s", p.ReplyTo)
	}
	if p.Raw == "" {
		t.Error("Expected raw event to be kept")
	}
}

func TestToPostThreading(t *testing.T) {
	tests := []struct {
		name      string
		tags      nostr.Tags
		wantRoot  string
		wantReply string
	}{
		{"no tags", nil, "", ""},
		{"single positional", nostr.Tags{{"e", "r"}}, "r", "r"},
		{"positional", nostr.Tags{{"e", "r"}, {"e", "m"}, {"e", "p"}}, "r", "p"},
		{"marked root only", nostr.Tags{{"e", "r", "", "root"}}, "r", "r"},
		{"marked", nostr.Tags{{"e", "p", "", "reply"}, {"e", "r", "", "root"}}, "r", "p"},
		{"mention ignored", nostr.Tags{{"e", "x", "", "mention"}}, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := nostr.Event{ID: "id", Kind: KindTextNote, Tags: tt.tags}
			p := ToPost(&evt, "")
			if p.Root != tt.wantRoot || p.ReplyTo != tt.wantReply {
				t.Errorf("Expected root %q reply %q, got root %q reply %q", tt.wantRoot, tt.wantReply, p.Root, p.ReplyTo)
			}
		})
	}
}

func TestConvertReaction(t *testing.T) {
	evt := signed(t, KindReaction, "+", nostr.Tags{{"e", "first"}, {"p", "someone"}, {"e", "target"}})

	events, err := Convert(&evt, "wss://one")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	ref := events[0].(app.RefReceived).Ref
	if ref.Kind != domain.RefReaction || ref.Target != "target" || ref.Content != "+" {
		t.Errorf("Unexpected ref %+v", ref)
	}

	bare := signed(t, KindReaction, "+", nil)
	if _, err := Convert(&bare, "wss://one"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent for reaction without target, got %v", err)
	}
}

func TestConvertRepostWithEmbeddedNote(t *testing.T) {
	note := signed(t, KindTextNote, "original", nil)
	repost := signed(t, KindRepost, note.String(), nostr.Tags{{"e", note.ID, "wss://one"}, {"p", note.PubKey}})

	events, err := Convert(&repost, "wss://two")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected post and ref, got %d events", len(events))
	}
	if p := events[0].(app.PostReceived).Post; p.ID != note.ID || p.Content != "original" {
		t.Errorf("Expected embedded note first, got %+v", p)
	}
	ref := events[1].(app.RefReceived).Ref
	if ref.Kind != domain.RefRepost || ref.Target != note.ID || ref.ID != repost.ID {
		t.Errorf("Unexpected ref %+v", ref)
	}
}

func TestConvertRepostIgnoresBadEmbed(t *testing.T) {
	note := signed(t, KindTextNote, "original", nil)
	note.Content = "tampered"
	repost := signed(t, KindRepost, note.String(), nostr.Tags{{"e", note.ID}})

	events, err := Convert(&repost, "wss://two")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected only the ref, got %d events", len(events))
	}
	if _, ok := events[0].(app.RefReceived); !ok {
		t.Errorf("Expected RefReceived, got %T", events[0])
	}
}

func TestConvertProfile(t *testing.T) {
	evt := signed(t, KindMetadata, `{"name":"alice","display_name":"Alice","nip05":"alice@example.com"}`, nil)

	events, err := Convert(&evt, "wss://one")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	p := events[0].(app.ProfileReceived).Profile
	if p.Label() != "Alice" || p.Name != "alice" || p.NIP05 != "alice@example.com" {
		t.Errorf("Unexpected profile %+v", p)
	}

	bad := signed(t, KindMetadata, "not json", nil)
	if _, err := Convert(&bad, "wss://one"); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent, got %v", err)
	}
}

func TestConvertIgnoresOtherKinds(t *testing.T) {
	evt := signed(t, 30023, "long form", nil)
	events, err := Convert(&evt, "wss://one")
	if err != nil || len(events) != 0 {
		t.Errorf("Expected nothing for kind 30023, got %v %v", events, err)
	}
}
