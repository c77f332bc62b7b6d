package domain

import "fmt"

// Action is a user level command. Every Action has a defined, possibly no-op,
// transition in both UiModes.
type Action uint

const (
	ScrollUp Action = iota
	ScrollDown
	ScrollToTop
	ScrollToBottom
	Unselect
	NewTextNote
	ReplyTextNote
	React
	Repost
	LoadMore
	Quit
	Suspend
	SubmitTextNote
	CancelTextNote
)

var actionNames = [...]string{
	ScrollUp:       "ScrollUp",
	ScrollDown:     "ScrollDown",
	ScrollToTop:    "ScrollToTop",
	ScrollToBottom: "ScrollToBottom",
	Unselect:       "Unselect",
	NewTextNote:    "NewTextNote",
	ReplyTextNote:  "ReplyTextNote",
	React:          "React",
	Repost:         "Repost",
	LoadMore:       "LoadMore",
	Quit:           "Quit",
	Suspend:        "Suspend",
	SubmitTextNote: "SubmitTextNote",
	CancelTextNote: "CancelTextNote",
}

// Actions returns every Action variant in declaration order.
func Actions() []Action {
	all := make([]Action, len(actionNames))
	for i := range actionNames {
		all[i] = Action(i)
	}
	return all
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint(a))
}

// ParseAction resolves a case-sensitive action name.
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

type UiMode uint

const (
	Normal UiMode = iota
	Composing
)

func (m UiMode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Composing:
		return "composing"
	default:
		return fmt.Sprintf("UiMode(%d)", uint(m))
	}
}
