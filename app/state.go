package app

import (
	"sort"
	"time"

	"github.com/deemkeen/nostui/domain"
	"github.com/tidwall/btree"
)

// State is owned by the runner. The reducer is the only code that changes it.
type State struct {
	Mode     domain.UiMode
	Compose  *domain.ComposeBuffer // non-nil exactly when Mode is Composing
	Timeline *domain.Timeline
	Profiles *btree.Map[string, domain.Profile]
	Relays   map[string]domain.RelayStatus
	Status   string
	Stats    Stats

	// LoadingMore is set while older history is being fetched.
	LoadingMore bool

	// Dirty is set when something visible changed since the last render.
	Dirty bool
}

// NewState returns the initial state: Normal mode, empty timeline.
func NewState(self string, pendingLimit int) State {
	return State{
		Mode:     domain.Normal,
		Timeline: domain.NewTimeline(self, pendingLimit),
		Profiles: btree.NewMap[string, domain.Profile](0),
		Relays:   make(map[string]domain.RelayStatus),
		Dirty:    true,
	}
}

// WithRelays lists relays before they report, so every configured relay
// shows up from the first frame.
func (s State) WithRelays(statuses []domain.RelayStatus) State {
	relays := make(map[string]domain.RelayStatus, len(s.Relays)+len(statuses))
	for k, v := range s.Relays {
		relays[k] = v
	}
	for _, st := range statuses {
		if _, ok := relays[st.URL]; !ok {
			relays[st.URL] = st
		}
	}
	s.Relays = relays
	s.Dirty = true
	return s
}

// Snapshot is an immutable copy of State for the renderer.
type Snapshot struct {
	Mode      domain.UiMode
	Compose   domain.ComposeBuffer
	ReplyTo   *domain.Post
	Timeline  domain.TimelineView
	Profiles  *btree.Map[string, domain.Profile]
	Relays    []domain.RelayStatus
	Status    string
	AppFPS    float64
	RenderFPS float64
}

// Snapshot copies the parts of s the renderer reads. The timeline and
// profile trees are copy-on-write, so the copy is cheap.
func (s State) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:      s.Mode,
		Timeline:  s.Timeline.View(),
		Profiles:  s.Profiles.Copy(),
		Relays:    make([]domain.RelayStatus, 0, len(s.Relays)),
		Status:    s.Status,
		AppFPS:    s.Stats.App.Rate,
		RenderFPS: s.Stats.Render.Rate,
	}
	if s.Compose != nil {
		snap.Compose = *s.Compose
		if s.Compose.Target.IsReply() {
			if p, ok := s.Timeline.Get(s.Compose.Target.ReplyTo); ok {
				snap.ReplyTo = &p
			}
		}
	}
	for _, st := range s.Relays {
		snap.Relays = append(snap.Relays, st)
	}
	sort.Slice(snap.Relays, func(i, j int) bool {
		return snap.Relays[i].URL < snap.Relays[j].URL
	})
	return snap
}

// Profile returns the known profile for a public key.
func (s Snapshot) Profile(pubkey string) (domain.Profile, bool) {
	if s.Profiles == nil {
		return domain.Profile{}, false
	}
	return s.Profiles.Get(pubkey)
}

// ConnectedRelays counts relays currently connected.
func (s Snapshot) ConnectedRelays() int {
	n := 0
	for _, r := range s.Relays {
		if r.State == domain.Connected {
			n++
		}
	}
	return n
}

// Stats holds the measured tick and render rates.
type Stats struct {
	App    RateCounter
	Render RateCounter
}

// RateCounter measures events per second over one second windows.
type RateCounter struct {
	Rate  float64
	start time.Time
	count int
}

// Observe records one event and reports whether Rate was recomputed.
func (c *RateCounter) Observe(at time.Time) bool {
	if c.start.IsZero() {
		c.start = at
	}
	c.count++
	elapsed := at.Sub(c.start)
	if elapsed < time.Second {
		return false
	}
	c.Rate = float64(c.count) / elapsed.Seconds()
	c.start = at
	c.count = 0
	return true
}
