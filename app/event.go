package app

import (
	"time"

	"github.com/deemkeen/nostui/domain"
	"github.com/google/uuid"
)

// Event is anything that travels on the Channel. The set of events is closed;
// only this package can add variants.
type Event interface {
	isEvent()
}

// KeyPressed is a raw key from the terminal, translated by the runner
// against the mode current at the time it is processed.
type KeyPressed struct {
	Key domain.Key
}

// TextPasted is a bracketed paste from the terminal.
type TextPasted struct {
	Text string
}

// Invoke delivers an Action directly, bypassing key translation.
type Invoke struct {
	Action domain.Action
}

// Resumed is sent after the process continues from a suspend.
type Resumed struct{}

type PostReceived struct {
	Relay string
	Post  domain.Post
}

type RefReceived struct {
	Relay string
	Ref   domain.Ref
}

type ProfileReceived struct {
	Relay   string
	Profile domain.Profile
}

type RelayStatusChanged struct {
	Status domain.RelayStatus
}

// PublishFinished reports the outcome of a publish command.
type PublishFinished struct {
	ID     uuid.UUID
	Label  string
	Report PublishReport
	Err    error
}

// LoadFinished reports the outcome of a LoadOlder command.
type LoadFinished struct {
	Count int
	Err   error
}

type Tick struct {
	At time.Time
}

type Frame struct {
	At time.Time
}

func (KeyPressed) isEvent()         {}
func (TextPasted) isEvent()         {}
func (Invoke) isEvent()             {}
func (Resumed) isEvent()            {}
func (PostReceived) isEvent()       {}
func (RefReceived) isEvent()        {}
func (ProfileReceived) isEvent()    {}
func (RelayStatusChanged) isEvent() {}
func (PublishFinished) isEvent()    {}
func (LoadFinished) isEvent()       {}
func (Tick) isEvent()               {}
func (Frame) isEvent()              {}
