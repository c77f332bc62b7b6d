package keymap

import (
	"errors"
	"strings"
	"testing"

	"github.com/deemkeen/nostui/domain"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		seq  string
		want domain.Key
	}{
		{"<j>", domain.Key{Name: "j"}},
		{"<G>", domain.Key{Name: "G"}},
		{"<S-g>", domain.Key{Name: "G"}},
		{"<C-c>", domain.Key{Ctrl: true, Name: "c"}},
		{"<ctrl-c>", domain.Key{Ctrl: true, Name: "c"}},
		{"<Ctrl-C>", domain.Key{Ctrl: true, Name: "C"}},
		{"<esc>", domain.Key{Name: "esc"}},
		{"<Esc>", domain.Key{Name: "esc"}},
		{"<M-up>", domain.Key{Alt: true, Name: "up"}},
		{"<alt-enter>", domain.Key{Alt: true, Name: "enter"}},
		{"<f5>", domain.Key{Name: "f5"}},
		{"<->", domain.Key{Name: "-"}},
		{"<C-->", domain.Key{Ctrl: true, Name: "-"}},
		{"<>>", domain.Key{Name: ">"}},
		{"<space>", domain.Key{Name: "space"}},
	}
	for _, tt := range tests {
		got, err := ParseKey(tt.seq)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.seq, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.seq, tt.want, got)
		}
	}
}

func TestParseKeyRejects(t *testing.T) {
	tests := []struct {
		seq  string
		want error
	}{
		{"<g><g>", ErrChord},
		{"<C-x><C-s>", ErrChord},
		{"j", ErrMalformedKey},
		{"<j", ErrMalformedKey},
		{"", ErrMalformedKey},
		{"<hyper-j>", ErrMalformedKey},
		{"<pgup>", ErrMalformedKey},
		{"<j>x", ErrMalformedKey},
	}
	for _, tt := range tests {
		_, err := ParseKey(tt.seq)
		if !errors.Is(err, tt.want) {
			t.Errorf("%q: expected %v, got %v", tt.seq, tt.want, err)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	table, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	a, ok := table.Lookup(domain.Key{Name: "n"})
	if !ok || a != domain.NewTextNote {
		t.Errorf("Expected <n> -> NewTextNote, got %s (%v)", a, ok)
	}
	if table.Len() != len(DefaultBindings()) {
		t.Errorf("Expected %d bindings, got %d", len(DefaultBindings()), table.Len())
	}
}

func TestLoadMergesUserEntries(t *testing.T) {
	table, err := Load(map[string]string{
		"<n>":      "Repost",
		"<ctrl-r>": "ReplyTextNote",
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if a, _ := table.Lookup(domain.Key{Name: "n"}); a != domain.Repost {
		t.Errorf("Expected user entry to replace default, got %s", a)
	}
	if a, _ := table.Lookup(domain.Key{Ctrl: true, Name: "r"}); a != domain.ReplyTextNote {
		t.Errorf("Expected <C-r> -> ReplyTextNote, got %s", a)
	}
	if a, _ := table.Lookup(domain.Key{Name: "j"}); a != domain.ScrollDown {
		t.Errorf("Expected default <j> to survive, got %s", a)
	}
}

func TestLoadRejectsChordNamingEntry(t *testing.T) {
	_, err := Load(map[string]string{"<g><g>": "ScrollToTop"})
	if err == nil {
		t.Fatal("Expected chord entry to be rejected")
	}
	var be *BindingError
	if !errors.As(err, &be) {
		t.Fatalf("Expected *BindingError, got %T", err)
	}
	if be.Sequence != "<g><g>" {
		t.Errorf("Expected offending entry <g><g>, got %s", be.Sequence)
	}
	if !errors.Is(err, ErrChord) {
		t.Errorf("Expected ErrChord, got %v", err)
	}
}

func TestLoadRejectsUnknownAction(t *testing.T) {
	_, err := Load(map[string]string{"<x>": "Explode", "<y>": "scrollup"})
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("Expected ErrUnknownAction, got %v", err)
	}
	if !strings.Contains(err.Error(), "<x>") || !strings.Contains(err.Error(), "<y>") {
		t.Errorf("Expected both entries to be named, got %v", err)
	}
}

func TestLoadRejectsConflictingSpellings(t *testing.T) {
	_, err := Load(map[string]string{"<G>": "ScrollToBottom", "<S-g>": "ScrollToTop"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
}

func TestKeysFor(t *testing.T) {
	table := MustLoad(nil)
	keys := table.KeysFor(domain.Quit)
	want := "<C-c> <C-d> <q>"
	if got := strings.Join(keys, " "); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestTranslateNormalMode(t *testing.T) {
	table := MustLoad(map[string]string{"<n>": "NewTextNote"})

	tr := table.Translate(domain.Key{Name: "n"}, domain.Normal)
	if tr.Kind != Command || tr.Action != domain.NewTextNote {
		t.Errorf("Expected NewTextNote, got %+v", tr)
	}

	tr = table.Translate(domain.Key{Name: "z"}, domain.Normal)
	if tr.Kind != Ignore {
		t.Errorf("Expected unmapped key to be ignored, got %+v", tr)
	}
}

func TestTranslateComposingMode(t *testing.T) {
	table := MustLoad(nil)

	tests := []struct {
		key    domain.Key
		kind   Kind
		action domain.Action
		edit   domain.Edit
	}{
		{domain.Key{Name: "n"}, TextInput, 0, domain.Edit{Op: domain.EditInsert, Text: "n"}},
		{domain.Key{Name: "q"}, TextInput, 0, domain.Edit{Op: domain.EditInsert, Text: "q"}},
		{domain.Key{Name: "space"}, TextInput, 0, domain.Edit{Op: domain.EditInsert, Text: " "}},
		{domain.Key{Name: "enter"}, TextInput, 0, domain.Edit{Op: domain.EditNewline}},
		{domain.Key{Name: "backspace"}, TextInput, 0, domain.Edit{Op: domain.EditBackspace}},
		{domain.Key{Ctrl: true, Name: "s"}, Command, domain.SubmitTextNote, domain.Edit{}},
		{domain.Key{Name: "esc"}, Command, domain.CancelTextNote, domain.Edit{}},
		{domain.Key{Ctrl: true, Name: "c"}, Command, domain.Quit, domain.Edit{}},
		{domain.Key{Ctrl: true, Name: "z"}, Command, domain.Suspend, domain.Edit{}},
		{domain.Key{Name: "up"}, Ignore, 0, domain.Edit{}},
		{domain.Key{Alt: true, Name: "x"}, Ignore, 0, domain.Edit{}},
	}
	for _, tt := range tests {
		tr := table.Translate(tt.key, domain.Composing)
		if tr.Kind != tt.kind || tr.Action != tt.action || tr.Edit != tt.edit {
			t.Errorf("%s: expected {%d %s %+v}, got {%d %s %+v}",
				tt.key, tt.kind, tt.action, tt.edit, tr.Kind, tr.Action, tr.Edit)
		}
	}
}

func TestLoadRejectsReservedKeys(t *testing.T) {
	tests := []struct {
		seq    string
		action string
	}{
		{"<C-c>", "ScrollUp"},
		{"<ctrl-c>", "React"},
		{"<C-z>", "Quit"},
	}
	for _, tt := range tests {
		_, err := Load(map[string]string{tt.seq: tt.action})
		if !errors.Is(err, ErrReserved) {
			t.Errorf("Expected ErrReserved for %s -> %s, got %v", tt.seq, tt.action, err)
			continue
		}
		var be *BindingError
		if !errors.As(err, &be) || be.Sequence != tt.seq {
			t.Errorf("Expected error naming %s, got %v", tt.seq, err)
		}
	}
}

func TestLoadAllowsReservedKeysForTheirOwnAction(t *testing.T) {
	table, err := Load(map[string]string{"<C-c>": "Quit", "<C-z>": "Suspend"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	tr := table.Translate(domain.Key{Ctrl: true, Name: "c"}, domain.Composing)
	if tr.Kind != Command || tr.Action != domain.Quit {
		t.Errorf("Expected <C-c> to quit while composing, got %+v", tr)
	}
}

func TestTranslatePaste(t *testing.T) {
	if tr := TranslatePaste("hello", domain.Normal); tr.Kind != Ignore {
		t.Errorf("Expected paste to be ignored in normal mode, got %+v", tr)
	}
	tr := TranslatePaste("hello", domain.Composing)
	if tr.Kind != TextInput || tr.Edit.Text != "hello" {
		t.Errorf("Expected paste insert, got %+v", tr)
	}
}
