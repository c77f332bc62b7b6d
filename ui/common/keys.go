package common

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/keymap"
)

var helpText = map[domain.Action]string{
	domain.ScrollDown:     "down",
	domain.ScrollUp:       "up",
	domain.ScrollToTop:    "top",
	domain.ScrollToBottom: "bottom",
	domain.Unselect:       "unselect",
	domain.NewTextNote:    "new note",
	domain.ReplyTextNote:  "reply",
	domain.React:          "like",
	domain.Repost:         "repost",
	domain.LoadMore:       "older",
	domain.Suspend:        "suspend",
	domain.Quit:           "quit",
}

var normalHelp = []domain.Action{
	domain.ScrollDown,
	domain.ScrollUp,
	domain.ScrollToTop,
	domain.ScrollToBottom,
	domain.NewTextNote,
	domain.ReplyTextNote,
	domain.React,
	domain.Repost,
	domain.LoadMore,
	domain.Quit,
}

// HelpBindings returns the bindings worth showing in mode. Actions without
// a key are left out.
func HelpBindings(t *keymap.Table, mode domain.UiMode) []key.Binding {
	if mode == domain.Composing {
		return []key.Binding{
			binding([]string{keymap.SubmitKey.String()}, "publish"),
			binding([]string{keymap.CancelKey.String()}, "cancel"),
		}
	}
	var out []key.Binding
	for _, a := range normalHelp {
		keys := t.KeysFor(a)
		if len(keys) == 0 {
			continue
		}
		out = append(out, binding(keys, helpText[a]))
	}
	return out
}

func binding(keys []string, desc string) key.Binding {
	shown := keys
	if len(shown) > 2 {
		shown = shown[:2]
	}
	labels := make([]string, len(shown))
	for i, k := range shown {
		labels[i] = strings.TrimSuffix(strings.TrimPrefix(k, "<"), ">")
	}
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(labels, "/"), desc),
	)
}

// NewHelp returns a help bubble drawn in the help style.
func NewHelp(s Styles) help.Model {
	h := help.New()
	h.Styles.ShortKey = s.Help.Bold(true)
	h.Styles.ShortDesc = s.Help
	h.Styles.ShortSeparator = s.Help
	h.Styles.Ellipsis = s.Help
	return h
}
