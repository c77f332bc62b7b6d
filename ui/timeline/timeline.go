package timeline

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/ui/common"
	"github.com/deemkeen/nostui/util"
	"github.com/dustin/go-humanize"
)

type Model struct {
	Width  int
	Height int
	Styles common.Styles
	// Now is the reference for relative times. Defaults to time.Now.
	Now  func() time.Time
	snap app.Snapshot
}

func InitialModel(width, height int, styles common.Styles) Model {
	return Model{
		Width:  width,
		Height: height,
		Styles: styles,
		Now:    time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(common.SnapshotMsg); ok {
		m.snap = msg.Snapshot
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	total := m.snap.Timeline.Len()
	if total == 0 {
		s.WriteString(m.Styles.Time.Italic(true).Render(" No notes yet. Waiting for relays…"))
		return s.String()
	}

	now := time.Now()
	if m.Now != nil {
		now = m.Now()
	}

	rows := m.Height / common.PostHeight
	if rows < 1 {
		rows = 1
	}
	cursor, selected := m.snap.Timeline.Cursor()
	start, end := common.VisibleRange(total, rows, cursor, selected)

	for i := start; i < end; i++ {
		post, eng, ok := m.snap.Timeline.At(i)
		if !ok {
			break
		}
		var entry string
		if selected && i == cursor {
			entry = m.Styles.Selected.Width(m.Width).Render(m.renderPost(common.Styles{}, post, eng, now))
		} else {
			entry = m.renderPost(m.Styles, post, eng, now)
		}
		s.WriteString(entry)
		if i < end-1 {
			s.WriteString("\n")
		}
	}
	return s.String()
}

// renderPost draws one entry in st. The selected entry is drawn with zero
// styles so the highlight covers it evenly.
func (m Model) renderPost(st common.Styles, post domain.Post, eng domain.Engagement, now time.Time) string {
	head := []string{
		st.Author.Render(common.AuthorLabel(m.snap, post.Author)),
		st.Time.Render(formatTime(post.CreatedAt, now)),
	}
	if post.IsReply() {
		head = append(head, st.Reply.Render("↳ reply"))
	}
	if e := formatEngagement(eng); e != "" {
		head = append(head, st.Engagement.Render(e))
	}

	content := util.NormalizeInput(common.RenderMentions(m.snap, post.Content))
	if content == "" {
		content = "(empty)"
	}

	width := m.Width
	if width <= 0 {
		width = 80
	}
	line1 := ansi.Truncate(" "+strings.Join(head, " · "), width, "…")
	line2 := ansi.Truncate("   "+st.Content.Render(content), width, "…")
	return line1 + "\n" + line2
}

// formatEngagement shows reaction and repost counts and zapped sats. A filled symbol marks
// the ones made by the local user.
func formatEngagement(e domain.Engagement) string {
	var parts []string
	if e.Reactions > 0 || e.Reacted {
		sym := "♡"
		if e.Reacted {
			sym = "♥"
		}
		parts = append(parts, fmt.Sprintf("%s %d", sym, e.Reactions))
	}
	if e.Reposts > 0 || e.Reposted {
		sym := "☆"
		if e.Reposted {
			sym = "★"
		}
		parts = append(parts, fmt.Sprintf("%s %d", sym, e.Reposts))
	}
	if e.Zaps > 0 {
		sym := "ϟ"
		if e.Zapped {
			sym = "⚡"
		}
		parts = append(parts, fmt.Sprintf("%s %s sats", sym, humanize.Comma(e.ZapMsats/1000)))
	}
	return strings.Join(parts, " ")
}

func formatTime(t, now time.Time) string {
	if now.Sub(t) < time.Minute && now.Sub(t) > -time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
