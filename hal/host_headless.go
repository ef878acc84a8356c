//go:build !tinygo

package hal

import (
	"context"
	"time"
)

// HeadlessConfig controls the windowless host runner.
type HeadlessConfig struct {
	Enabled bool
	// Hz is the display tick rate; 0 or negative means 60.
	Hz int
	// Ticks stops the run after that many display ticks; 0 runs forever.
	Ticks uint64
}

// RunHeadless runs the system without a window, stepping the display
// timebase on a wall-clock ticker. It returns when the context is
// canceled, the tick budget is spent, or the app's step function fails.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}

	h := New().(*hostHAL)
	step := newApp(h)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Hz))
	defer ticker.Stop()

	for n := uint64(0); ; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			h.time.step()
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			n++
			if cfg.Ticks > 0 && n >= cfg.Ticks {
				return nil
			}
		}
	}
}
