package domain

import (
	"strings"
	"unicode/utf8"
)

// ComposeTarget says what a buffer will be published as. An empty ReplyTo
// means a new top level note.
type ComposeTarget struct {
	ReplyTo string
}

func (t ComposeTarget) IsReply() bool {
	return t.ReplyTo != ""
}

type EditOp uint

const (
	EditInsert EditOp = iota
	EditNewline
	EditBackspace
)

// Edit is a literal text change applied to the compose buffer.
type Edit struct {
	Op   EditOp
	Text string
}

// ComposeBuffer exists only while composing.
type ComposeBuffer struct {
	Text   string
	Target ComposeTarget
}

func NewComposeBuffer(target ComposeTarget) *ComposeBuffer {
	return &ComposeBuffer{Target: target}
}

func (b *ComposeBuffer) Apply(e Edit) {
	switch e.Op {
	case EditInsert:
		b.Text += e.Text
	case EditNewline:
		b.Text += "\n"
	case EditBackspace:
		if b.Text == "" {
			return
		}
		_, size := utf8.DecodeLastRuneInString(b.Text)
		b.Text = b.Text[:len(b.Text)-size]
	}
}

// IsBlank reports whether there is nothing worth publishing.
func (b *ComposeBuffer) IsBlank() bool {
	return strings.TrimSpace(b.Text) == ""
}

func (b *ComposeBuffer) Len() int {
	return utf8.RuneCountInString(b.Text)
}
