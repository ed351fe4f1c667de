package softkeys

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/loop"
	"github.com/dasdy/softkeys/session"
	"github.com/dasdy/softkeys/tracelog"
	"github.com/dasdy/softkeys/tracelog/ports"
	"github.com/dasdy/softkeys/web"
	"github.com/dasdy/softkeys/web/routes"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	deviceFiles      []string
	baudRate         int
	monitorDevices   bool
	disableInterface bool
)

// trackCmd represents the track command.
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Follow a live touch controller and journal what is typed",
	Long: `Read pointer samples from serial devices, a monitored device directory or stdin, resolve
them in real time and log the result to a sqlite file. Optionally runs the web interface
on the same journal.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		prefs, doc, err := loadPreferences()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		lines, closer, err := openTrackSource(ctx)
		if err != nil {
			return err
		}
		defer closer()

		j, err := openJournal(prefs.Storage, false)
		if err != nil {
			return err
		}
		defer j.storage.Close()

		l := loop.New(64)

		s, err := session.New(doc, prefs.SessionOptions(l, &printer{w: cmd.OutOrStdout()}))
		if err != nil {
			return err
		}

		s.Observe(j.recorder(l.Now))

		layouts := routes.NewLayouts(doc, prefs.Width, prefs.Height, prefs.KeyboardOptions())

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			return l.Run(ctx)
		})

		g.Go(func() error {
			// a closed source ends tracking
			defer cancel()

			return tracelog.TrackLoop(ctx, lines, l, s, verbose)
		})

		if !disableInterface {
			handler := &routes.ServerHandler{
				Storage:         j.storage,
				ComboTracker:    j.combos,
				NeighborTracker: j.neighbors,
				Layouts:         layouts,
			}

			g.Go(func() error {
				return web.StartServer(ctx, prefs.Port, handler, dev)
			})
		}

		if watchLayout {
			g.Go(func() error {
				return watch(ctx, prefs, func(doc *layout.Document) {
					layouts.SetDocument(doc)
					l.Post(func() {
						if err := s.Reload(doc); err != nil {
							slog.ErrorContext(logCtx, "Could not reload session", "error", err)
						}
					})
				})
			})
		}

		return ignoreCanceled(g.Wait())
	},
}

func openTrackSource(ctx context.Context) (<-chan string, func(), error) {
	switch {
	case monitorDevices:
		reader := ports.DefaultMonitoringDeviceReader(baudRate)

		return reader.Channel(ctx.Done()), func() {
			if err := reader.Close(); err != nil {
				slog.ErrorContext(logCtx, "Could not close devices", "error", err)
			}
		}, nil

	case len(deviceFiles) > 0:
		ch, closer, err := ports.OpenFiles(baudRate, deviceFiles...)
		if err == nil {
			return ch, closer, nil
		}

		names, errInner := ports.GetAvailableDevices()
		if errInner != nil {
			return nil, nil, fmt.Errorf("could not open file: %w; Could not suggest devices: %w", err, errInner)
		}

		if len(names) > 0 {
			return nil, nil, fmt.Errorf("error opening files: %w. Maybe try instead: %+v", err, names)
		}

		return nil, nil, fmt.Errorf("error opening files: %w. It does not seem like any touch controller is connected", err)

	default:
		names, err := ports.GetAvailableDevices()
		if err != nil {
			slog.WarnContext(logCtx, "Could not list devices", "error", err)
		}

		slog.InfoContext(logCtx, "Will proceed to read from stdin...", "suggested", names)

		return ports.ReadFile(os.Stdin), func() {}, nil
	}
}

func init() {
	rootCmd.AddCommand(trackCmd)

	trackCmd.Flags().StringSliceVarP(&deviceFiles, "file", "f", []string{},
		"Serial devices to read samples from")
	trackCmd.Flags().IntVar(&baudRate, "baud-rate", ports.DefaultBaudRate, "Serial baud rate")
	trackCmd.Flags().BoolVar(&monitorDevices, "monitor", false,
		"Watch /dev for touch controllers and read from every one that appears")
	trackCmd.Flags().BoolVar(&disableInterface, "no-interface", false,
		"If provided, no web server will be run with visualization")

	addServerFlags(trackCmd)
}
