package domain

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/tidwall/btree"
)

// DefaultPendingLimit bounds how many reactions and reposts may wait for a
// post that has not arrived yet.
const DefaultPendingLimit = 10000

// Engagement counts the reactions, reposts and zaps attached to a post.
type Engagement struct {
	Reactions int
	Reposts   int
	Zaps      int
	ZapMsats  int64
	Reacted   bool // by the local user
	Reposted  bool // by the local user
	Zapped    bool // by the local user
}

func (e *Engagement) add(r Ref, self string) {
	switch r.Kind {
	case RefReaction:
		if r.Content != "-" {
			e.Reactions++
		}
		if r.Author == self {
			e.Reacted = true
		}
	case RefRepost:
		e.Reposts++
		if r.Author == self {
			e.Reposted = true
		}
	case RefZap:
		e.Zaps++
		e.ZapMsats += r.Amount
		if r.Author == self {
			e.Zapped = true
		}
	}
}

type RefOutcome uint

const (
	RefAttached RefOutcome = iota
	RefPending
	RefDuplicate
)

func (o RefOutcome) String() string {
	switch o {
	case RefAttached:
		return "attached"
	case RefPending:
		return "pending"
	default:
		return "duplicate"
	}
}

type entry struct {
	post *Post
	eng  Engagement
}

func entryLess(a, b entry) bool {
	return a.post.Before(b.post)
}

type pendingKey struct {
	target string
	id     string
}

// Timeline is the deduplicated set of posts ordered by (CreatedAt, ID), with a
// selection cursor. It is not safe for concurrent use; readers on other
// goroutines work on a View.
type Timeline struct {
	self    string
	entries *btree.BTreeG[entry]
	byID    map[string]*Post
	cursor  int

	refs         map[string]struct{}
	pending      map[string][]Ref
	queue        []pendingKey
	npending     int
	pendingLimit int

	log *slog.Logger
}

// NewTimeline returns an empty timeline. self is the local user's public key,
// used to flag the user's own reactions and reposts.
func NewTimeline(self string, pendingLimit int) *Timeline {
	if pendingLimit <= 0 {
		pendingLimit = DefaultPendingLimit
	}
	return &Timeline{
		self:         self,
		entries:      btree.NewBTreeGOptions(entryLess, btree.Options{NoLocks: true}),
		byID:         make(map[string]*Post),
		cursor:       -1,
		refs:         make(map[string]struct{}),
		pending:      make(map[string][]Ref),
		pendingLimit: pendingLimit,
		log:          slog.Default().With("component", "timeline"),
	}
}

func (t *Timeline) Len() int {
	return t.entries.Len()
}

// Insert adds a post and reports whether it was new. Reactions and reposts
// that arrived earlier for this post are attached to it.
func (t *Timeline) Insert(p Post) bool {
	if _, ok := t.byID[p.ID]; ok {
		return false
	}
	post := &p
	e := entry{post: post}
	if refs, ok := t.pending[p.ID]; ok {
		for _, r := range refs {
			e.eng.add(r, t.self)
		}
		t.npending -= len(refs)
		delete(t.pending, p.ID)
	}

	shift := false
	if sel, ok := t.selectedEntry(); ok && post.Before(sel.post) {
		shift = true
	}
	if _, replaced := t.entries.Set(e); replaced {
		violated("timeline: post %s replaced an existing entry", p.ID)
	}
	t.byID[p.ID] = post
	if shift {
		t.cursor++
	}
	t.check()
	return true
}

// AddRef attaches a reaction or repost to its target, or parks it until the
// target arrives. When the parked set is full the oldest parked ref is
// dropped.
func (t *Timeline) AddRef(r Ref) RefOutcome {
	if _, seen := t.refs[r.ID]; seen {
		return RefDuplicate
	}
	t.refs[r.ID] = struct{}{}

	if post, ok := t.byID[r.Target]; ok {
		e, _ := t.entries.Get(entry{post: post})
		e.eng.add(r, t.self)
		t.entries.Set(e)
		return RefAttached
	}

	t.pending[r.Target] = append(t.pending[r.Target], r)
	t.queue = append(t.queue, pendingKey{target: r.Target, id: r.ID})
	t.npending++
	for t.npending > t.pendingLimit {
		t.evictOldest()
	}
	if len(t.queue) > 2*t.pendingLimit {
		t.compactQueue()
	}
	return RefPending
}

func (t *Timeline) evictOldest() {
	for len(t.queue) > 0 {
		k := t.queue[0]
		t.queue = t.queue[1:]
		refs := t.pending[k.target]
		for i, r := range refs {
			if r.ID != k.id {
				continue
			}
			refs = append(refs[:i], refs[i+1:]...)
			if len(refs) == 0 {
				delete(t.pending, k.target)
			} else {
				t.pending[k.target] = refs
			}
			delete(t.refs, k.id)
			t.npending--
			t.log.Debug("dropped pending ref", "ref", k.id, "target", k.target)
			return
		}
	}
}

// compactQueue forgets queue entries whose refs were already attached.
func (t *Timeline) compactQueue() {
	live := t.queue[:0]
	for _, k := range t.queue {
		if _, ok := t.pending[k.target]; ok {
			live = append(live, k)
		}
	}
	t.queue = live
}

// PendingLen returns how many refs are waiting for their target.
func (t *Timeline) PendingLen() int {
	return t.npending
}

func (t *Timeline) Get(id string) (Post, bool) {
	p, ok := t.byID[id]
	if !ok {
		return Post{}, false
	}
	return *p, true
}

func (t *Timeline) Engagement(id string) Engagement {
	p, ok := t.byID[id]
	if !ok {
		return Engagement{}
	}
	e, _ := t.entries.Get(entry{post: p})
	return e.eng
}

func (t *Timeline) At(i int) (Post, Engagement, bool) {
	e, ok := t.entries.GetAt(i)
	if !ok {
		return Post{}, Engagement{}, false
	}
	return *e.post, e.eng, true
}

// Oldest returns the earliest post.
func (t *Timeline) Oldest() (Post, bool) {
	p, _, ok := t.At(0)
	return p, ok
}

// Cursor returns the selected index, if any.
func (t *Timeline) Cursor() (int, bool) {
	return t.cursor, t.cursor >= 0
}

func (t *Timeline) Selected() (Post, bool) {
	e, ok := t.selectedEntry()
	if !ok {
		return Post{}, false
	}
	return *e.post, true
}

func (t *Timeline) selectedEntry() (entry, bool) {
	if t.cursor < 0 {
		return entry{}, false
	}
	return t.entries.GetAt(t.cursor)
}

// SelectNext moves the cursor one post towards the newest. With nothing
// selected it selects the newest post.
func (t *Timeline) SelectNext() {
	n := t.Len()
	switch {
	case n == 0:
		return
	case t.cursor < 0:
		t.cursor = n - 1
	case t.cursor < n-1:
		t.cursor++
	}
	t.check()
}

// SelectPrev moves the cursor one post towards the oldest. With nothing
// selected it selects the newest post.
func (t *Timeline) SelectPrev() {
	n := t.Len()
	switch {
	case n == 0:
		return
	case t.cursor < 0:
		t.cursor = n - 1
	case t.cursor > 0:
		t.cursor--
	}
	t.check()
}

func (t *Timeline) SelectTop() {
	if t.Len() > 0 {
		t.cursor = 0
	}
	t.check()
}

func (t *Timeline) SelectBottom() {
	if n := t.Len(); n > 0 {
		t.cursor = n - 1
	}
	t.check()
}

func (t *Timeline) ClearSelection() {
	t.cursor = -1
}

// View returns a read-only copy that may be used from another goroutine.
// Copying is constant time; the underlying tree is copy-on-write.
func (t *Timeline) View() TimelineView {
	return TimelineView{entries: t.entries.Copy(), cursor: t.cursor}
}

// Validate checks ordering, uniqueness, index consistency and cursor bounds.
func (t *Timeline) Validate() error {
	var errs []error
	var prev *Post
	count := 0
	t.entries.Scan(func(e entry) bool {
		count++
		if prev != nil && !prev.Before(e.post) {
			errs = append(errs, fmt.Errorf("post %s is not ordered after %s", e.post.ID, prev.ID))
		}
		if p, ok := t.byID[e.post.ID]; !ok || p != e.post {
			errs = append(errs, fmt.Errorf("post %s missing from index", e.post.ID))
		}
		prev = e.post
		return true
	})
	if count != len(t.byID) {
		errs = append(errs, fmt.Errorf("index holds %d posts, tree holds %d", len(t.byID), count))
	}
	if t.cursor < -1 || t.cursor >= count {
		errs = append(errs, fmt.Errorf("cursor %d out of bounds for %d posts", t.cursor, count))
	}
	return errors.Join(errs...)
}

func (t *Timeline) check() {
	if !debugInvariants {
		return
	}
	if err := t.Validate(); err != nil {
		violated("timeline: %v", err)
	}
}

// TimelineView is an immutable snapshot of a Timeline.
type TimelineView struct {
	entries *btree.BTreeG[entry]
	cursor  int
}

func (v TimelineView) Len() int {
	if v.entries == nil {
		return 0
	}
	return v.entries.Len()
}

func (v TimelineView) At(i int) (Post, Engagement, bool) {
	if v.entries == nil {
		return Post{}, Engagement{}, false
	}
	e, ok := v.entries.GetAt(i)
	if !ok {
		return Post{}, Engagement{}, false
	}
	return *e.post, e.eng, true
}

func (v TimelineView) Cursor() (int, bool) {
	if v.entries == nil {
		return -1, false
	}
	return v.cursor, v.cursor >= 0
}
