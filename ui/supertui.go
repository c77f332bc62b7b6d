package ui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/deemkeen/nostui/keymap"
	"github.com/deemkeen/nostui/ui/common"
	"github.com/deemkeen/nostui/ui/compose"
	"github.com/deemkeen/nostui/ui/header"
	"github.com/deemkeen/nostui/ui/timeline"
	"github.com/deemkeen/nostui/util"
)

// MainModel draws snapshots from the runner and feeds terminal input back
// to it. It holds no application state of its own.
type MainModel struct {
	ctx    context.Context
	ch     *app.Channel
	keys   *keymap.Table
	styles common.Styles
	log    *slog.Logger

	width         int
	height        int
	snap          app.Snapshot
	headerModel   header.Model
	timelineModel timeline.Model
	composeModel  compose.Model
	helpModel     help.Model
}

type Config struct {
	// Ctx bounds input pushes; cancel it to unblock the terminal reader on
	// shutdown.
	Ctx     context.Context
	Channel *app.Channel
	Keys    *keymap.Table
	Styles  common.Styles
	NPub    string
	Logger  *slog.Logger
}

func NewModel(c Config) MainModel {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Ctx == nil {
		c.Ctx = context.Background()
	}
	width, height := 80, 24
	m := MainModel{
		ctx:           c.Ctx,
		ch:            c.Channel,
		keys:          c.Keys,
		styles:        c.Styles,
		log:           c.Logger.With("component", "ui"),
		width:         width,
		height:        height,
		headerModel:   header.Model{Width: width, NPub: c.NPub, Styles: c.Styles},
		timelineModel: timeline.InitialModel(width, height, c.Styles),
		composeModel:  compose.InitialNote(width, c.Styles),
		helpModel:     common.NewHelp(c.Styles),
	}
	m.helpModel.Width = width
	return m
}

func (m MainModel) Init() tea.Cmd {
	return nil
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel, _ = m.headerModel.Update(msg)
		m.composeModel, _ = m.composeModel.Update(msg)
		m.timelineModel.Width = msg.Width
		m.helpModel.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Paste {
			m.push(app.TextPasted{Text: string(msg.Runes)})
			return m, nil
		}
		if k, ok := KeyFromMsg(msg); ok {
			m.push(app.KeyPressed{Key: k})
		}
		return m, nil

	case tea.ResumeMsg:
		m.log.Info("resumed")
		m.push(app.Resumed{})
		return m, nil

	case common.SnapshotMsg:
		m.snap = msg.Snapshot
		m.headerModel, _ = m.headerModel.Update(msg)
		m.timelineModel, _ = m.timelineModel.Update(msg)
		m.composeModel, _ = m.composeModel.Update(msg)
		return m, nil

	case common.SuspendMsg:
		return m, tea.Suspend

	case common.QuitMsg:
		return m, tea.Quit
	}
	return m, nil
}

// push hands an event to the runner, waiting while the channel is full.
func (m MainModel) push(ev app.Event) {
	if err := m.ch.Push(m.ctx, ev); err != nil {
		m.log.Debug("input dropped", "error", err)
	}
}

func (m MainModel) View() string {
	composing := m.snap.Mode == domain.Composing

	tlHeight := common.TimelineHeight(m.height, composing)
	m.timelineModel.Height = tlHeight
	tl := lipgloss.NewStyle().
		Height(tlHeight).
		MaxHeight(tlHeight).
		Render(m.timelineModel.View())

	parts := []string{m.headerModel.View(), tl}
	if composing {
		parts = append(parts, m.composeModel.View())
	}

	status := util.NormalizeInput(m.snap.Status)
	if status == "" {
		status = " "
	}
	parts = append(parts, m.styles.Status.Render(ansi.Truncate(" "+status, m.width, "…")))

	helpLine := m.helpModel.ShortHelpView(common.HelpBindings(m.keys, m.snap.Mode))
	parts = append(parts, " "+helpLine)

	return strings.Join(parts, "\n")
}
