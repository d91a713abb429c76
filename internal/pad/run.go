package pad

import (
	"context"
	"errors"
	"fmt"

	"inkpad/internal/platform"
	"inkpad/pkg/ink"
)

// ErrTooManyFrames stops a window that never asks to close.
var ErrTooManyFrames = errors.New("pad: frame limit reached")

// Run drives p from win until the window closes: every poll is applied and
// followed by one presented frame. Command errors are logged and skipped.
// maxFrames <= 0 means no limit.
func Run(ctx context.Context, win platform.Window, p *Pad, maxFrames int) (frames int, err error) {
	w, h := win.SizePx()
	p.Resize(w, h)
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		closed := false
		for _, ev := range win.PollEvents() {
			done, err := p.HandleEvent(ev)
			if err != nil {
				ink.Logger().Warn("pad: command failed", "key", ev.Key, "err", err)
			}
			if done {
				closed = true
				break
			}
		}
		if closed {
			return frames, nil
		}
		if err := win.Present(p.Frame()); err != nil {
			return frames, fmt.Errorf("present frame %d: %w", frames, err)
		}
		frames++
		if maxFrames > 0 && frames >= maxFrames {
			return frames, ErrTooManyFrames
		}
	}
}
