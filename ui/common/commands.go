package common

import "github.com/deemkeen/nostui/app"

// SnapshotMsg carries a new frame of state from the runner.
type SnapshotMsg struct {
	Snapshot app.Snapshot
}

// SuspendMsg asks the program to suspend to the shell.
type SuspendMsg struct{}

// QuitMsg asks the program to exit.
type QuitMsg struct{}
