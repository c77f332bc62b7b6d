package app

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/keymap"
	"github.com/deemkeen/nostui/util"
)

// Reducer turns one event into a new state and the commands it implies. It
// holds only immutable configuration and reads no clock, so the same state
// and event always produce the same result.
type Reducer struct {
	Keys *keymap.Table
	Self string // local user's public key
}

// Reduce applies ev to s and returns the next state. It is deterministic
// but not pure: s.Timeline is updated in place and shared with the result,
// so a State passed to Reduce must not be used again. Everything else in s
// is replaced rather than mutated. Take a Snapshot to keep a view of an
// earlier state.
func (r Reducer) Reduce(s State, ev Event) (State, []Command) {
	switch ev := ev.(type) {
	case KeyPressed:
		return r.translated(s, r.Keys.Translate(ev.Key, s.Mode))
	case TextPasted:
		return r.translated(s, keymap.TranslatePaste(ev.Text, s.Mode))
	case Invoke:
		return r.Apply(s, ev.Action)
	case Resumed:
		s.Dirty = true
		return s, nil
	case PostReceived:
		if s.Timeline.Insert(ev.Post) {
			s.Dirty = true
		}
		return s, nil
	case RefReceived:
		if s.Timeline.AddRef(ev.Ref) == domain.RefAttached {
			s.Dirty = true
		}
		return s, nil
	case ProfileReceived:
		return r.profile(s, ev.Profile), nil
	case RelayStatusChanged:
		relays := make(map[string]domain.RelayStatus, len(s.Relays)+1)
		for k, v := range s.Relays {
			relays[k] = v
		}
		relays[ev.Status.URL] = ev.Status
		s.Relays = relays
		s.Dirty = true
		return s, nil
	case PublishFinished:
		s.Status = publishStatus(ev)
		s.Dirty = true
		return s, nil
	case LoadFinished:
		s.LoadingMore = false
		s.Status = loadStatus(ev)
		s.Dirty = true
		return s, nil
	case Tick:
		if s.Stats.App.Observe(ev.At) {
			s.Dirty = true
		}
		return s, nil
	case Frame:
		if !s.Dirty {
			return s, nil
		}
		s.Stats.Render.Observe(ev.At)
		s.Dirty = false
		return s, []Command{Render{}}
	default:
		slog.Warn("unhandled event", "event", fmt.Sprintf("%T", ev))
		return s, nil
	}
}

func (r Reducer) translated(s State, tr keymap.Translation) (State, []Command) {
	switch tr.Kind {
	case keymap.Command:
		return r.Apply(s, tr.Action)
	case keymap.TextInput:
		if s.Compose == nil {
			return s, nil
		}
		buf := *s.Compose
		buf.Apply(tr.Edit)
		s.Compose = &buf
		s.Dirty = true
		return s, nil
	default:
		return s, nil
	}
}

// Apply runs one Action. Every (mode, action) pair has an outcome; pairs
// without a transition leave the state unchanged.
func (r Reducer) Apply(s State, a domain.Action) (State, []Command) {
	switch a {
	case domain.Quit:
		return s, []Command{Shutdown{}}
	case domain.Suspend:
		return s, []Command{SuspendProcess{}}
	}
	if s.Mode == domain.Composing {
		return r.applyComposing(s, a)
	}
	return r.applyNormal(s, a)
}

func (r Reducer) applyNormal(s State, a domain.Action) (State, []Command) {
	switch a {
	case domain.ScrollUp:
		s.Timeline.SelectPrev()
	case domain.ScrollDown:
		s.Timeline.SelectNext()
	case domain.ScrollToTop:
		s.Timeline.SelectTop()
	case domain.ScrollToBottom:
		s.Timeline.SelectBottom()
	case domain.Unselect:
		s.Timeline.ClearSelection()
	case domain.NewTextNote:
		s.Mode = domain.Composing
		s.Compose = domain.NewComposeBuffer(domain.ComposeTarget{})
	case domain.ReplyTextNote:
		sel, ok := s.Timeline.Selected()
		if !ok {
			return s, nil
		}
		s.Mode = domain.Composing
		s.Compose = domain.NewComposeBuffer(domain.ComposeTarget{ReplyTo: sel.ID})
	case domain.React:
		sel, ok := s.Timeline.Selected()
		if !ok {
			return s, nil
		}
		switch {
		case sel.Author == r.Self:
			s.Status = "You cannot react to your own note"
		case s.Timeline.Engagement(sel.ID).Reacted:
			s.Status = "Already reacted to " + util.ShortID(sel.ID)
		default:
			s.Status = "Sending reaction..."
			s.Dirty = true
			return s, []Command{PublishReaction{Target: sel}}
		}
	case domain.Repost:
		sel, ok := s.Timeline.Selected()
		if !ok {
			return s, nil
		}
		switch {
		case sel.Author == r.Self:
			s.Status = "You cannot repost your own note"
		case s.Timeline.Engagement(sel.ID).Reposted:
			s.Status = "Already reposted " + util.ShortID(sel.ID)
		default:
			s.Status = "Sending repost..."
			s.Dirty = true
			return s, []Command{PublishRepost{Target: sel}}
		}
	case domain.LoadMore:
		if s.LoadingMore {
			return s, nil
		}
		oldest, ok := s.Timeline.Oldest()
		if !ok {
			return s, nil
		}
		s.LoadingMore = true
		s.Status = "Loading older notes..."
		s.Dirty = true
		return s, []Command{LoadOlder{Until: oldest.CreatedAt}}
	case domain.SubmitTextNote, domain.CancelTextNote:
		return s, nil
	default:
		return s, nil
	}
	s.Dirty = true
	return s, nil
}

func (r Reducer) applyComposing(s State, a domain.Action) (State, []Command) {
	switch a {
	case domain.SubmitTextNote:
		buf := s.Compose
		s.Mode = domain.Normal
		s.Compose = nil
		s.Dirty = true
		if buf == nil || buf.IsBlank() {
			s.Status = "Empty note discarded"
			return s, nil
		}
		cmd := PublishNote{Content: strings.TrimSpace(buf.Text)}
		if buf.Target.IsReply() {
			parent, ok := s.Timeline.Get(buf.Target.ReplyTo)
			if !ok {
				s.Status = "Reply target is gone; note discarded"
				return s, nil
			}
			cmd.ReplyTo = &parent
		}
		s.Status = "Publishing " + Label(cmd) + "..."
		return s, []Command{cmd}
	case domain.CancelTextNote:
		s.Mode = domain.Normal
		s.Compose = nil
		s.Dirty = true
		return s, nil
	case domain.ScrollUp, domain.ScrollDown, domain.ScrollToTop, domain.ScrollToBottom,
		domain.Unselect, domain.NewTextNote, domain.ReplyTextNote, domain.React, domain.Repost,
		domain.LoadMore:
		return s, nil
	default:
		return s, nil
	}
}

func (r Reducer) profile(s State, p domain.Profile) State {
	if cur, ok := s.Profiles.Get(p.PubKey); ok && !p.CreatedAt.After(cur.CreatedAt) {
		return s
	}
	profiles := s.Profiles.Copy()
	profiles.Set(p.PubKey, p)
	s.Profiles = profiles
	s.Dirty = true
	return s
}

func publishStatus(ev PublishFinished) string {
	if ev.Err != nil {
		return fmt.Sprintf("Failed to publish %s: %v", ev.Label, ev.Err)
	}
	total := len(ev.Report.Accepted) + len(ev.Report.Rejected)
	return fmt.Sprintf("Published %s %s (%d/%d relays)",
		ev.Label, util.ShortID(ev.Report.EventID), len(ev.Report.Accepted), total)
}

func loadStatus(ev LoadFinished) string {
	switch {
	case ev.Err != nil:
		return fmt.Sprintf("Failed to load older notes: %v", ev.Err)
	case ev.Count == 0:
		return "No older notes"
	default:
		return fmt.Sprintf("Loaded %d older events", ev.Count)
	}
}
