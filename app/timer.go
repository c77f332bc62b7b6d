package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deemkeen/nostui/util"
)

// Interval converts a rate in events per second into a ticker period.
func Interval(rate float64) (time.Duration, error) {
	if rate <= 0 {
		return 0, fmt.Errorf("rate must be positive, got %v", rate)
	}
	d := time.Duration(float64(time.Second) / rate)
	if d <= 0 {
		return 0, fmt.Errorf("rate %v is too high", rate)
	}
	return d, nil
}

// RunTimers feeds Tick and Frame events into ch until ctx is done. The two
// clocks are independent; a slow consumer loses ticks, never blocks them.
func RunTimers(ctx context.Context, ch *Channel, clock util.Clock, tickRate, frameRate float64) error {
	tickEvery, err := Interval(tickRate)
	if err != nil {
		return fmt.Errorf("tick rate: %w", err)
	}
	frameEvery, err := Interval(frameRate)
	if err != nil {
		return fmt.Errorf("frame rate: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		runTicker(ctx, clock, tickEvery, func(at time.Time) { ch.Offer(Tick{At: at}) })
	}()
	go func() {
		defer wg.Done()
		runTicker(ctx, clock, frameEvery, func(at time.Time) { ch.Offer(Frame{At: at}) })
	}()
	wg.Wait()
	return nil
}

func runTicker(ctx context.Context, clock util.Clock, every time.Duration, fire func(time.Time)) {
	ticker := clock.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case at := <-ticker.C:
			fire(at)
		}
	}
}
