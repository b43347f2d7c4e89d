package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mezzoeditor/mezzo-sub000/internal/log"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 100 * time.Millisecond

// Change is the content of the watched file after it changed.
type Change struct {
	Path    string
	Content string
	Err     error // set when the file could not be read
}

// Config holds watcher configuration options.
type Config struct {
	Debounce time.Duration
	Logger   *log.Logger
}

// Watcher reports changes of one file. It never touches a document
// itself: the goroutine owning the document receives Changes and applies
// them with Apply.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	debounce  time.Duration
	log       *log.Logger
	changes   chan Change
	done      chan struct{}
	stopped   chan struct{}
}

// New creates a watcher for path.
func New(path string, cfg Config) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	return &Watcher{
		fsWatcher: fsw,
		path:      abs,
		debounce:  cfg.Debounce,
		log:       cfg.Logger.WithComponent("watch").WithField("path", abs),
		changes:   make(chan Change),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Start begins watching. The directory is watched rather than the file so
// editors that save by renaming a temporary file are followed.
func (w *Watcher) Start() (<-chan Change, error) {
	dir := filepath.Dir(w.path)
	if err := w.fsWatcher.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	go w.loop()
	return w.changes, nil
}

// Stop terminates the watcher and releases resources. The change channel
// is closed once the loop exits.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	<-w.stopped
	return err
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	defer close(w.changes)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			w.log.Debug("event %s", event.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if !w.send(w.read()) {
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (w *Watcher) read() Change {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn("reading changed file: %v", err)
		return Change{Path: w.path, Err: err}
	}
	return Change{Path: w.path, Content: string(data)}
}

// send delivers c unless the watcher is stopping.
func (w *Watcher) send(c Change) bool {
	select {
	case w.changes <- c:
		return true
	case <-w.done:
		return false
	}
}

// isRelevantEvent checks if the event concerns the watched file.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
