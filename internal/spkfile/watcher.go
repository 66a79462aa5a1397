package spkfile

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // manifest written or created
	ChangeRemoved                    // manifest deleted or renamed away
)

func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// Change is one debounced event for a watched manifest.
type Change struct {
	Kind ChangeKind
	File string // as passed to NewWatcher
}

// Watcher reports edits to a fixed set of manifest files. Editors often
// save by writing a temp file and renaming it over the original, so the
// parent directories are watched rather than the files themselves.
type Watcher struct {
	Files   []string
	Changes <-chan Change

	changes  chan Change
	stop     chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	byPath   map[string]string // cleaned absolute path -> caller's path
	debounce time.Duration
}

// NewWatcher creates a watcher for the given manifest paths.
func NewWatcher(paths ...string) (*Watcher, error) {
	byPath := make(map[string]string, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		byPath[abs] = p
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan Change, 16)
	return &Watcher{
		Files:    paths,
		Changes:  ch,
		changes:  ch,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		byPath:   byPath,
		debounce: 100 * time.Millisecond,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for abs := range w.byPath {
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel. Changes not yet
// delivered are dropped, so Stop returns even when nobody reads Changes.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			file, watched := w.byPath[filepath.Clean(event.Name)]
			if !watched {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[file] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) < w.debounce {
					continue
				}
				if !w.emit(file) {
					return
				}
				delete(pending, file)
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next event retries.
		}
	}
}

// emit delivers one change, or reports false once the watcher is stopping.
func (w *Watcher) emit(file string) bool {
	kind := ChangeModified
	if _, err := os.Stat(file); err != nil {
		kind = ChangeRemoved
	}
	select {
	case w.changes <- Change{Kind: kind, File: file}:
		return true
	case <-w.stop:
		return false
	}
}
