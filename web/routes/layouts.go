package routes

import (
	"fmt"
	"sync"

	"github.com/dasdy/softkeys/keyboard"
	"github.com/dasdy/softkeys/layout"
	lru "github.com/hashicorp/golang-lru"
)

const keyboardCacheSize = 32

// Layouts builds keyboards of a document at a fixed size. The document can be swapped
// while requests are served.
type Layouts struct {
	doc    *layout.Document
	width  int
	height int
	opts   keyboard.Options
	cache  *lru.Cache
	lock   sync.RWMutex
}

func NewLayouts(doc *layout.Document, width, height int, opts keyboard.Options) *Layouts {
	// only fails for a non-positive size
	cache, _ := lru.New(keyboardCacheSize)

	return &Layouts{
		doc:    doc,
		width:  width,
		height: height,
		opts:   opts,
		cache:  cache,
	}
}

// SetDocument replaces the document and drops built keyboards.
func (l *Layouts) SetDocument(doc *layout.Document) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.doc = doc
	l.cache.Purge()
}

func (l *Layouts) Names() []string {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.doc.Names()
}

func (l *Layouts) DefaultName() string {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.doc.DefaultName()
}

func (l *Layouts) Keyboard(name string) (*keyboard.Keyboard, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	if kb, ok := l.cache.Get(name); ok {
		return kb.(*keyboard.Keyboard), nil
	}

	res, err := layout.Build(l.doc, name, l.width, l.height, false)
	if err != nil {
		return nil, fmt.Errorf("could not build keyboard %s: %w", name, err)
	}

	opts := l.opts
	if def, ok := l.doc.Keyboard(name); ok && def.LabelUppercase {
		opts.LabelUppercase = true
	}

	kb := keyboard.New(name, res, opts)
	l.cache.Add(name, kb)

	return kb, nil
}
