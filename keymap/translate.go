package keymap

import "github.com/deemkeen/nostui/domain"

type Kind uint

const (
	Ignore Kind = iota
	Command
	TextInput
)

// Translation is the outcome of feeding one key to the translator: nothing,
// an Action, or a literal edit of the compose buffer.
type Translation struct {
	Kind   Kind
	Action domain.Action
	Edit   domain.Edit
}

// Keys that keep their meaning regardless of the table.
var (
	QuitKey    = domain.Key{Ctrl: true, Name: "c"}
	SuspendKey = domain.Key{Ctrl: true, Name: "z"}
	SubmitKey  = domain.Key{Ctrl: true, Name: "s"}
	CancelKey  = domain.Key{Name: "esc"}
)

// reserved keys work in both modes; the table may only repeat them.
var reserved = map[domain.Key]domain.Action{
	QuitKey:    domain.Quit,
	SuspendKey: domain.Suspend,
}

func command(a domain.Action) Translation {
	return Translation{Kind: Command, Action: a}
}

func edit(op domain.EditOp, text string) Translation {
	return Translation{Kind: TextInput, Edit: domain.Edit{Op: op, Text: text}}
}

// Translate resolves a key press for the given mode. In Normal mode the
// table decides; unmapped keys are ignored. While composing only the
// reserved submit and cancel keys are commands, everything printable is text.
func (t *Table) Translate(k domain.Key, mode domain.UiMode) Translation {
	k = k.Normalize()
	if a, ok := reserved[k]; ok {
		return command(a)
	}

	if mode == domain.Normal {
		if a, ok := t.Lookup(k); ok {
			return command(a)
		}
		return Translation{}
	}

	switch k {
	case SubmitKey:
		return command(domain.SubmitTextNote)
	case CancelKey:
		return command(domain.CancelTextNote)
	}
	if k.Ctrl || k.Alt {
		return Translation{}
	}
	switch k.Name {
	case "enter":
		return edit(domain.EditNewline, "")
	case "backspace":
		return edit(domain.EditBackspace, "")
	case "space":
		return edit(domain.EditInsert, " ")
	case "tab":
		return edit(domain.EditInsert, "\t")
	}
	if k.IsRune() {
		return edit(domain.EditInsert, k.Name)
	}
	return Translation{}
}

// TranslatePaste turns pasted text into a single insert while composing.
func TranslatePaste(text string, mode domain.UiMode) Translation {
	if mode != domain.Composing || text == "" {
		return Translation{}
	}
	return edit(domain.EditInsert, text)
}
