package softkeys

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/session"
	"github.com/dasdy/softkeys/tracelog"
	"github.com/dasdy/softkeys/tracelog/ports"
	"github.com/spf13/cobra"
)

var (
	traceFiles    []string
	replayJournal bool
	replayTail    time.Duration
	showProgress  bool
)

// replayCmd represents the replay command.
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Resolve a recorded pointer trace",
	Long: `Feed recorded trace files (or stdin) through the layout on a simulated clock and print
what the keyboard would have produced. Files are replayed one after another.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		prefs, doc, err := loadPreferences()
		if err != nil {
			return err
		}

		clock := loop.NewManual(time.Now())
		out := &printer{w: cmd.OutOrStdout()}

		s, err := session.New(doc, prefs.SessionOptions(clock, out))
		if err != nil {
			return err
		}

		if replayJournal {
			j, err := openJournal(prefs.Storage, false)
			if err != nil {
				return err
			}
			defer j.storage.Close()

			s.Observe(j.recorder(clock.Now))
		}

		opts := tracelog.ReplayOptions{Tail: replayTail, Progress: showProgress, Verbose: verbose}

		if len(traceFiles) == 0 {
			slog.InfoContext(logCtx, "Reading trace from stdin")

			_, err := tracelog.Replay(cmd.Context(), ports.ReadFile(os.Stdin), s, clock, opts)

			return err
		}

		var total tracelog.Stats

		for _, path := range traceFiles {
			stats, err := replayFile(cmd, path, s, clock, opts)
			if err != nil {
				return err
			}

			total.Lines += stats.Lines
			total.Samples += stats.Samples
			total.Skipped += stats.Skipped
			total.Reordered += stats.Reordered
		}

		slog.InfoContext(logCtx, "All traces replayed", "files", len(traceFiles), "stats", fmt.Sprintf("%+v", total))

		return nil
	},
}

func replayFile(cmd *cobra.Command, path string, s *session.Session, clock *loop.Manual,
	opts tracelog.ReplayOptions,
) (tracelog.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return tracelog.Stats{}, fmt.Errorf("could not open trace %s: %w", path, err)
	}
	defer f.Close()

	slog.InfoContext(logCtx, "Replaying", "path", path)

	return tracelog.Replay(cmd.Context(), ports.ReadFile(f), s, clock, opts)
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringSliceVarP(&traceFiles, "file", "f", []string{},
		"Trace files to replay; stdin when empty")
	replayCmd.Flags().BoolVar(&replayJournal, "journal", false,
		"If provided, resolved keys are written to the storage")
	replayCmd.Flags().DurationVar(&replayTail, "tail", tracelog.DefaultTail,
		"Time the clock runs on after the last sample so pending timers fire")
	replayCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar")
}
