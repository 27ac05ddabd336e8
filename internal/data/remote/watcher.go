package remote

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const defaultDebounce = 150 * time.Millisecond

// Change describes an external edit to the remote document.
type Change struct {
	Path    string
	Removed bool
}

// Watcher reports edits to the remote document made by other processes.
// It watches the parent directory so editors that replace the file by
// rename are still seen.
type Watcher struct {
	store    *FileStore
	fs       afero.Fs
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      zerolog.Logger

	events chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long the watcher waits for writes to settle.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.debounce = d }
}

// NewWatcher starts watching the document of store. The store filesystem is
// used to read the document back when filtering our own writes; fsnotify
// itself always watches the OS filesystem.
func NewWatcher(store *FileStore, fs afero.Fs, log zerolog.Logger, opts ...WatcherOption) (*Watcher, error) {
	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{
		store:    store,
		fs:       fs,
		watcher:  fw,
		debounce: defaultDebounce,
		log:      log.With().Str("component", "remote-watcher").Logger(),
		events:   make(chan Change, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Events returns the channel of debounced changes. It is closed by Close.
func (w *Watcher) Events() <-chan Change {
	return w.events
}

// Close stops watching and closes the events channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.events)
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	target := filepath.Clean(w.store.Path())

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending Change
	)

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			pending = Change{Path: target, Removed: event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.emit(pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("fsnotify error")
		}
	}
}

func (w *Watcher) emit(c Change) {
	data, err := afero.ReadFile(w.fs, c.Path)
	switch {
	case err == nil:
		c.Removed = false
		if w.store.IsOwnWrite(data) {
			return
		}
	case os.IsNotExist(err):
		c.Removed = true
	default:
		w.log.Debug().Err(err).Str("path", c.Path).Msg("read changed document")
	}

	w.log.Debug().Str("path", c.Path).Bool("removed", c.Removed).Msg("remote document changed")

	// Coalesce: a pending, unread change already covers this one.
	select {
	case w.events <- c:
	default:
	}
}
