package domain

import (
	"fmt"
	"time"
)

type ConnState uint

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	Failed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("ConnState(%d)", uint(s))
	}
}

// RelayStatus is a read-only view of one relay connection.
type RelayStatus struct {
	URL       string
	State     ConnState
	Attempts  int
	LastError string
	Since     time.Time
}
