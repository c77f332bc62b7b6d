package keymap

import (
	"errors"
	"fmt"
	"sort"

	"github.com/deemkeen/nostui/domain"
)

var (
	ErrConflict = errors.New("key is bound twice")
	ErrReserved = errors.New("key is reserved")
)

// BindingError names the config entry that failed to load.
type BindingError struct {
	Sequence string
	Action   string
	Err      error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("keybinding %q -> %q: %v", e.Sequence, e.Action, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// Binding is one resolved entry of a Table.
type Binding struct {
	Key    domain.Key
	Action domain.Action
}

// Table maps single keys to actions. It is built once by Load and never
// modified afterwards, so it can be shared without locking.
type Table struct {
	bindings map[domain.Key]domain.Action
}

// DefaultBindings returns the built-in key sequences.
func DefaultBindings() map[string]string {
	return map[string]string{
		"<q>":    domain.Quit.String(),
		"<C-c>":  domain.Quit.String(),
		"<C-d>":  domain.Quit.String(),
		"<C-z>":  domain.Suspend.String(),
		"<j>":    domain.ScrollDown.String(),
		"<down>": domain.ScrollDown.String(),
		"<k>":    domain.ScrollUp.String(),
		"<up>":   domain.ScrollUp.String(),
		"<g>":    domain.ScrollToTop.String(),
		"<home>": domain.ScrollToTop.String(),
		"<G>":    domain.ScrollToBottom.String(),
		"<end>":  domain.ScrollToBottom.String(),
		"<esc>":  domain.Unselect.String(),
		"<n>":    domain.NewTextNote.String(),
		"<r>":    domain.ReplyTextNote.String(),
		"<l>":    domain.React.String(),
		"<t>":    domain.Repost.String(),
		"<m>":    domain.LoadMore.String(),
	}
}

// Load builds a Table from user entries merged over the defaults. A user
// entry replaces the default bound to the same key. Every invalid entry is
// reported as a *BindingError.
func Load(user map[string]string) (*Table, error) {
	t := &Table{bindings: make(map[domain.Key]domain.Action)}
	if err := t.add(DefaultBindings()); err != nil {
		return nil, fmt.Errorf("default keybindings: %w", err)
	}
	if err := t.add(user); err != nil {
		return nil, err
	}
	return t, nil
}

// MustLoad is Load for tables known to be valid.
func MustLoad(user map[string]string) *Table {
	t, err := Load(user)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) add(entries map[string]string) error {
	seqs := make([]string, 0, len(entries))
	for seq := range entries {
		seqs = append(seqs, seq)
	}
	sort.Strings(seqs)

	var errs []error
	claimed := make(map[domain.Key]string)
	for _, seq := range seqs {
		name := entries[seq]
		key, err := ParseKey(seq)
		if err != nil {
			errs = append(errs, &BindingError{Sequence: seq, Action: name, Err: err})
			continue
		}
		action, ok := domain.ParseAction(name)
		if !ok {
			errs = append(errs, &BindingError{Sequence: seq, Action: name, Err: ErrUnknownAction})
			continue
		}
		if want, ok := reserved[key]; ok && action != want {
			errs = append(errs, &BindingError{Sequence: seq, Action: name,
				Err: fmt.Errorf("%w for %s", ErrReserved, want)})
			continue
		}
		if prev, dup := claimed[key]; dup && entries[prev] != name {
			errs = append(errs, &BindingError{Sequence: seq, Action: name,
				Err: fmt.Errorf("%w: %q also maps %s", ErrConflict, prev, key)})
			continue
		}
		claimed[key] = seq
		t.bindings[key] = action
	}
	return errors.Join(errs...)
}

// Lookup returns the action bound to k.
func (t *Table) Lookup(k domain.Key) (domain.Action, bool) {
	a, ok := t.bindings[k.Normalize()]
	return a, ok
}

// Bindings lists all entries ordered by action, then key.
func (t *Table) Bindings() []Binding {
	out := make([]Binding, 0, len(t.bindings))
	for k, a := range t.bindings {
		out = append(out, Binding{Key: k, Action: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Action != out[j].Action {
			return out[i].Action < out[j].Action
		}
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

// KeysFor returns the keys bound to a, in bracket notation.
func (t *Table) KeysFor(a domain.Action) []string {
	var keys []string
	for _, b := range t.Bindings() {
		if b.Action == a {
			keys = append(keys, b.Key.String())
		}
	}
	return keys
}

func (t *Table) Len() int {
	return len(t.bindings)
}
