package softkeys

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dasdy/softkeys/config"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/web"
	"github.com/dasdy/softkeys/web/routes"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	dev         bool
	watchLayout bool
	noJournal   bool
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Show collected statistics",
	Long: `Use the journal collected by track or replay to show a web interface with a heatmap,
combo and neighbor statistics. Without a journal only the layout preview is served.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		prefs, doc, err := loadPreferences()
		if err != nil {
			return err
		}

		layouts := routes.NewLayouts(doc, prefs.Width, prefs.Height, prefs.KeyboardOptions())
		handler := &routes.ServerHandler{Layouts: layouts}

		if !noJournal {
			if _, err := os.Stat(prefs.Storage); err != nil {
				slog.WarnContext(logCtx, "No journal found, serving the layout only", "path", prefs.Storage)
			} else {
				j, err := openJournal(prefs.Storage, true)
				if err != nil {
					return err
				}
				defer j.storage.Close()

				handler.Storage = j.storage
				handler.ComboTracker = j.combos
				handler.NeighborTracker = j.neighbors
			}
		}

		g, ctx := errgroup.WithContext(cmd.Context())

		g.Go(func() error {
			return web.StartServer(ctx, prefs.Port, handler, dev)
		})

		if watchLayout {
			g.Go(func() error {
				return watch(ctx, prefs, layouts.SetDocument)
			})
		}

		return ignoreCanceled(g.Wait())
	},
}

// watch reloads the layout file on change until ctx is done.
func watch(ctx context.Context, prefs config.Preferences, onReload func(*layout.Document)) error {
	w := layout.NewWatcher(prefs.LayoutFile, func(doc *layout.Document) {
		slog.InfoContext(logCtx, "Layout reloaded", "path", prefs.LayoutFile, "keyboards", len(doc.Keyboards))
		onReload(doc)
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-w.Errors():
				slog.WarnContext(logCtx, "Layout watcher", "error", err)
			}
		}
	}()

	return w.Watch(ctx)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("port", "p", config.Defaults().Port,
		"Port on which server should be watching")
	cmd.Flags().BoolVar(&dev, "dev", false, "Enable developer mode")
	cmd.Flags().BoolVar(&watchLayout, "watch", false, "Reload the layout file when it changes")
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addServerFlags(serveCmd)
	serveCmd.Flags().BoolVar(&noJournal, "no-journal", false, "Serve the layout preview only")
}
