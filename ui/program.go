package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/ui/common"
)

// Sender is the part of *tea.Program the forwarder needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Program adapts a bubbletea program to app.Renderer. Snapshots go through a
// single replace-latest slot, so Render never blocks the runner; a
// forwarder goroutine hands them to the program.
type Program struct {
	program *tea.Program
	fwd     *Forwarder
}

// NewProgram sets up the full screen program for m.
func NewProgram(m MainModel, opts ...tea.ProgramOption) *Program {
	opts = append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}, opts...)
	p := tea.NewProgram(m, opts...)
	return &Program{program: p, fwd: NewForwarder(p)}
}

// Run blocks until the program exits.
func (p *Program) Run() error {
	go p.fwd.Run()
	defer p.fwd.Stop()
	_, err := p.program.Run()
	return err
}

func (p *Program) Render(s app.Snapshot) { p.fwd.Render(s) }
func (p *Program) Suspend()              { p.fwd.Suspend() }
func (p *Program) Quit()                 { p.fwd.Quit() }

// Forwarder implements app.Renderer over any Sender.
type Forwarder struct {
	to      Sender
	slot    chan app.Snapshot
	suspend chan struct{}
	quit    chan struct{}
	stop    chan struct{}

	mu       sync.Mutex
	quitOnce sync.Once
	stopOnce sync.Once
}

func NewForwarder(to Sender) *Forwarder {
	return &Forwarder{
		to:      to,
		slot:    make(chan app.Snapshot, 1),
		suspend: make(chan struct{}, 1),
		quit:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
}

// Render replaces any snapshot not yet delivered.
func (f *Forwarder) Render(s app.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.slot:
	default:
	}
	f.slot <- s
}

func (f *Forwarder) Suspend() {
	select {
	case f.suspend <- struct{}{}:
	default:
	}
}

func (f *Forwarder) Quit() {
	f.quitOnce.Do(func() { close(f.quit) })
}

// Stop ends Run without telling the program anything.
func (f *Forwarder) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })
}

// Run delivers messages until Quit or Stop. A snapshot pending at Quit is
// delivered first.
func (f *Forwarder) Run() {
	for {
		select {
		case <-f.stop:
			return
		case <-f.quit:
			select {
			case s := <-f.slot:
				f.to.Send(common.SnapshotMsg{Snapshot: s})
			default:
			}
			f.to.Send(common.QuitMsg{})
			return
		case <-f.suspend:
			f.to.Send(common.SuspendMsg{})
		case s := <-f.slot:
			f.to.Send(common.SnapshotMsg{Snapshot: s})
		}
	}
}
