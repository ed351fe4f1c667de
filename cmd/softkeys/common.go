package softkeys

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dasdy/softkeys/config"
	"github.com/dasdy/softkeys/db"
	"github.com/dasdy/softkeys/layout"
	"github.com/dasdy/softkeys/model"
	"github.com/spf13/viper"
)

func loadPreferences() (config.Preferences, *layout.Document, error) {
	prefs, err := config.Load(viper.GetViper())
	if err != nil {
		return prefs, nil, err
	}

	doc, err := layout.LoadFile(prefs.LayoutFile)
	if err != nil {
		return prefs, nil, fmt.Errorf("could not load layout %s: %w", prefs.LayoutFile, err)
	}

	return prefs, doc, nil
}

// journal bundles a storage with the trackers built from its history.
type journal struct {
	storage   *db.SQLiteStorage
	combos    *db.ComboTracker
	neighbors *db.NeighborCounter
}

func openJournal(path string, readOnly bool) (*journal, error) {
	slog.InfoContext(logCtx, "Opening journal", "path", path, "readOnly", readOnly)

	storage, err := db.NewStorageFromPath(path, readOnly)
	if err != nil {
		return nil, fmt.Errorf("could not open %s as sqlite file: %w", path, err)
	}

	combos, err := db.NewComboTrackerFromDB(storage)
	if err != nil {
		storage.Close()

		return nil, fmt.Errorf("could not create combo tracker: %w", err)
	}

	neighbors, err := db.NewNeighborCounterFromDB(storage)
	if err != nil {
		storage.Close()

		return nil, fmt.Errorf("could not create neighbor tracker: %w", err)
	}

	return &journal{storage: storage, combos: combos, neighbors: neighbors}, nil
}

func (j *journal) recorder(now func() time.Time) *db.Journal {
	r := db.NewJournal(j.storage, now, j.combos, j.neighbors)
	r.Verbose = verbose

	return r
}

// printer writes resolved output one line per action.
type printer struct {
	w    io.Writer
	lock sync.Mutex
}

func (p *printer) printf(format string, args ...any) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if _, err := fmt.Fprintf(p.w, format+"\n", args...); err != nil {
		slog.ErrorContext(logCtx, "Could not write output", "error", err)
	}
}

func (p *printer) OnPress(model.KeyCode)   {}
func (p *printer) OnRelease(model.KeyCode) {}

func (p *printer) OnKey(code model.KeyCode, mask model.Modifier) {
	if mask == model.ModNone {
		p.printf("key\t%s", code.DefaultLabel())

		return
	}

	p.printf("key\t%s+%s", code.DefaultLabel(), mask)
}

func (p *printer) OnEvent(ev *model.Event) {
	switch {
	case ev.Commit != "":
		p.printf("commit\t%s", ev.Commit)
	case ev.Select != "":
		p.printf("select\t%s", ev.Select)
	default:
		p.printf("event\t%s", ev.PreviewLabel())
	}
}

func (p *printer) OnText(text string) {
	p.printf("text\t%q", text)
}
