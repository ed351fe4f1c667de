// Package tracelog feeds recorded or live pointer traces into a session.
package tracelog

import (
	"context"
	"log/slog"
	"time"

	"github.com/dasdy/softkeys/logging"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/model"
	"github.com/dasdy/softkeys/tracelog/parser"
	"github.com/schollz/progressbar/v3"
)

var logCtx = logging.PackageCtx("tracelog")

// DefaultTail lets timers started by the last samples fire.
const DefaultTail = time.Second

// Handler consumes pointer events. *session.Session implements it.
type Handler interface {
	HandlePointer(ev model.PointerEvent)
}

type Stats struct {
	Lines   int
	Samples int
	// Skipped counts lines that looked like samples but did not parse.
	Skipped int
	// Reordered counts samples older than their predecessor; they are replayed at the
	// predecessor's time.
	Reordered int
}

type ReplayOptions struct {
	Tail     time.Duration
	Progress bool
	Verbose  bool
}

// Replay runs a trace against target on clock. Sample offsets are relative to the
// clock's time when Replay starts, and timers fire as the clock reaches them.
func Replay(ctx context.Context, lines <-chan string, target Handler, clock *loop.Manual,
	opts ReplayOptions,
) (Stats, error) {
	var (
		stats Stats
		bar   *progressbar.ProgressBar
	)

	if opts.Progress {
		bar = progressbar.Default(-1, "Replaying trace...")
	}

	base := clock.Now()

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case line, ok := <-lines:
			if !ok {
				clock.Advance(opts.Tail)
				finish(bar)

				slog.InfoContext(logCtx, "Replay done", "lines", stats.Lines, "samples", stats.Samples,
					"skipped", stats.Skipped, "reordered", stats.Reordered)

				return stats, nil
			}

			stats.Lines++

			if bar != nil {
				if err := bar.Add(1); err != nil {
					slog.ErrorContext(logCtx, "could not update progress bar", "error", err)
				}
			}

			sample, err := parser.ParseLine(line)
			if err != nil {
				slog.WarnContext(logCtx, "Skipping malformed sample", "line", line, "error", err)

				stats.Skipped++

				continue
			}

			if sample == nil {
				continue
			}

			ev := sample.Event(base)
			if ev.Time.Before(clock.Now()) {
				stats.Reordered++
				ev.Time = clock.Now()
			}

			if opts.Verbose {
				slog.InfoContext(logCtx, "Sample", "sample", sample)
			}

			clock.AdvanceTo(ev.Time)
			target.HandlePointer(ev)

			stats.Samples++
		}
	}
}

func finish(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}

	if err := bar.Finish(); err != nil {
		slog.ErrorContext(logCtx, "could not finish progress bar", "error", err)
	}
}

// TrackLoop feeds live lines to target on l. Samples are stamped with the loop's clock
// on arrival. It returns when lines is closed or ctx is done.
func TrackLoop(ctx context.Context, lines <-chan string, l *loop.Loop, target Handler, verbose bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				slog.InfoContext(logCtx, "Trace source closed")

				return nil
			}

			sample, err := parser.ParseLine(line)
			if err != nil {
				slog.WarnContext(logCtx, "Got warning", "line", line, "error", err)

				continue
			}

			if sample == nil {
				continue
			}

			if verbose {
				slog.InfoContext(logCtx, "Event!", "sample", sample)
			}

			l.Post(func() {
				ev := sample.Event(time.Time{})
				ev.Time = l.Now()
				target.HandlePointer(ev)
			})
		}
	}
}
