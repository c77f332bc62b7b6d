package compose

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/ui/common"
)

// Model shows the compose buffer held by the runner. Keys never reach the
// textarea directly; its content is replaced from every snapshot.
type Model struct {
	Textarea textarea.Model
	Styles   common.Styles
	width    int
	caption  string
	count    int
	active   bool
}

func InitialNote(width int, styles common.Styles) Model {
	ti := textarea.New()
	ti.Placeholder = "enter your message"
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = 0
	ti.Prompt = ""
	ti.Focus()

	m := Model{Textarea: ti, Styles: styles}
	m.SetWidth(width)
	return m
}

func (m *Model) SetWidth(width int) {
	m.width = width
	w := width - 4
	if w < 10 {
		w = 10
	}
	m.Textarea.SetWidth(w)
	m.Textarea.SetHeight(common.ComposeHeight - 3)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetWidth(msg.Width)
	case common.SnapshotMsg:
		m.apply(msg.Snapshot)
	}
	return m, nil
}

func (m *Model) apply(snap app.Snapshot) {
	m.active = snap.Mode == domain.Composing
	if !m.active {
		m.caption = ""
		m.count = 0
		if m.Textarea.Value() != "" {
			m.Textarea.Reset()
		}
		return
	}
	m.caption = Caption(snap)
	m.count = snap.Compose.Len()
	if m.Textarea.Value() != snap.Compose.Text {
		m.Textarea.SetValue(snap.Compose.Text)
	}
}

// Caption names what the buffer will be published as.
func Caption(snap app.Snapshot) string {
	if !snap.Compose.Target.IsReply() {
		return "new note"
	}
	if snap.ReplyTo != nil {
		return "reply to " + common.AuthorLabel(snap, snap.ReplyTo.Author)
	}
	return "reply"
}

func (m Model) Active() bool {
	return m.active
}

func (m Model) View() string {
	if !m.active {
		return ""
	}
	caption := m.Styles.Compose.Bold(true).Render(m.caption) +
		m.Styles.Time.Render(fmt.Sprintf("  %d chars", m.count))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.Styles.Compose.GetForeground()).
		Render(m.Textarea.View())

	return lipgloss.JoinVertical(lipgloss.Left, caption, box)
}
