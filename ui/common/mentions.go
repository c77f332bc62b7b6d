package common

import (
	"strings"

	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/util"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
	"github.com/nbd-wtf/go-nostr/nip27"
)

const noteURI = "nostr:note1"

// RenderMentions replaces NIP-27 references in content: profiles become
// @name, events become note:<short id>. Links and anything that does not
// decode are left as written.
func RenderMentions(snap app.Snapshot, content string) string {
	if !strings.Contains(content, "nostr:") {
		return content
	}
	var b strings.Builder
	for block := range nip27.Parse(content) {
		switch p := block.Pointer.(type) {
		case nostr.ProfilePointer:
			b.WriteString("@" + AuthorLabel(snap, p.PublicKey))
		case nostr.EventPointer:
			b.WriteString("note:" + util.ShortID(p.ID))
		default:
			b.WriteString(renderNoteURIs(block.Text))
		}
	}
	return b.String()
}

// renderNoteURIs handles bare nostr:note1 references, which nip27.Parse
// leaves inside text blocks.
func renderNoteURIs(text string) string {
	var b strings.Builder
	for {
		i := strings.Index(text, noteURI)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		end := i + len("nostr:")
		for end < len(text) && isBech32Char(text[end]) {
			end++
		}
		b.WriteString(text[:i])
		if prefix, v, err := nip19.Decode(text[i+len("nostr:") : end]); err == nil && prefix == "note" {
			b.WriteString("note:" + util.ShortID(v.(string)))
		} else {
			b.WriteString(text[i:end])
		}
		text = text[end:]
	}
}

func isBech32Char(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
