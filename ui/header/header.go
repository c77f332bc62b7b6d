package header

import (
	"fmt"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/ui/common"
	"github.com/deemkeen/nostui/util"
	"github.com/dustin/go-humanize"
)

type Model struct {
	Width  int
	NPub   string
	Styles common.Styles
	snap   app.Snapshot
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
	case common.SnapshotMsg:
		m.snap = msg.Snapshot
	}
	return m, nil
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.titleLine(), m.relayLine())
}

func (m Model) titleLine() string {
	parts := []string{
		util.GetNameAndVersion(),
		util.ShortKey(m.NPub),
		fmt.Sprintf("relays %d/%d", m.snap.ConnectedRelays(), len(m.snap.Relays)),
		fmt.Sprintf("%d notes", m.snap.Timeline.Len()),
		fmt.Sprintf("app %s/s render %s/s",
			humanize.FtoaWithDigits(m.snap.AppFPS, 1),
			humanize.FtoaWithDigits(m.snap.RenderFPS, 1)),
	}
	line := " " + strings.Join(parts, " │ ")
	if m.Width > 0 {
		line = ansi.Truncate(line, m.Width, "…")
		return m.Styles.Header.Width(m.Width).Render(line)
	}
	return m.Styles.Header.Render(line)
}

func (m Model) relayLine() string {
	if len(m.snap.Relays) == 0 {
		return m.Styles.Time.Render(" no relays")
	}
	cells := make([]string, 0, len(m.snap.Relays))
	for _, r := range m.snap.Relays {
		cells = append(cells, m.relayCell(r))
	}
	line := " " + strings.Join(cells, "  ")
	if m.Width > 0 {
		line = ansi.Truncate(line, m.Width, "…")
	}
	return line
}

func (m Model) relayCell(r domain.RelayStatus) string {
	host := r.URL
	if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
		host = u.Host
	}
	switch r.State {
	case domain.Connected:
		return m.Styles.RelayConnected.Render("● " + host)
	case domain.Failed:
		label := "✗ " + host
		if r.Attempts > 0 {
			label += fmt.Sprintf(" (retry %d)", r.Attempts)
		}
		return m.Styles.RelayFailed.Render(label)
	default:
		return m.Styles.Time.Render("○ " + host + " " + r.State.String())
	}
}
