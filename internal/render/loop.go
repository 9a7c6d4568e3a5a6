package render

import (
	"context"
	"time"
)

// Loop calls tick at fps until ctx is done. The wait after each tick is shortened
// by the time the tick took so the cadence does not drift.
func Loop(ctx context.Context, fps int, tick func(now time.Time)) {
	if fps <= 0 {
		fps = DefaultFPS
	}
	frame := time.Second / time.Duration(fps)
	timer := time.NewTimer(frame)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			t := time.Now()
			tick(t)
			delta := frame - time.Since(t)
			if delta < time.Millisecond {
				delta = time.Millisecond
			}
			timer.Reset(delta)
		}
	}
}
