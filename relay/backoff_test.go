package relay

import (
	"testing"
	"time"
)

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 60 * time.Second}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{6, 32 * time.Second},
		{7, 60 * time.Second},
		{100, 60 * time.Second},
	}
	for _, tt := range tests {
		if got := b.Delay(tt.attempt); got != tt.want {
			t.Errorf("attempt %d: Expected %v, got %v", tt.attempt, tt.want, got)
		}
	}
}

func TestBackoffDefaults(t *testing.T) {
	var b Backoff
	if got := b.Delay(1); got != DefaultBackoffInitial {
		t.Errorf("Expected %v, got %v", DefaultBackoffInitial, got)
	}
	if got := b.Delay(50); got != DefaultBackoffMax {
		t.Errorf("Expected %v, got %v", DefaultBackoffMax, got)
	}
}

func TestBackoffInitialAboveMax(t *testing.T) {
	b := Backoff{Initial: 5 * time.Second, Max: 2 * time.Second}
	if got := b.Delay(1); got != 2*time.Second {
		t.Errorf("Expected delay capped at 2s, got %v", got)
	}
}
