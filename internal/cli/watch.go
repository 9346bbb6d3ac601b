package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind describes the type of file change detected.
type ChangeKind int

const (
	ChangeModified ChangeKind = iota // Scenario or golden file edited or created
	ChangeRemoved                    // File deleted or renamed away
)

func (k ChangeKind) String() string {
	if k == ChangeRemoved {
		return "removed"
	}
	return "modified"
}

// ScenarioChange is one debounced change under the watched directory.
type ScenarioChange struct {
	Kind ChangeKind
	File string
}

// watchDebounce is how long a file must stay quiet before its change is
// reported. Editors often write a file several times per save.
const watchDebounce = 100 * time.Millisecond

// ScenarioWatcher reports changes to scenario and golden files in a
// directory and its golden/ subdirectory.
type ScenarioWatcher struct {
	Dir     string
	Changes <-chan ScenarioChange // Read-only external channel

	changes chan ScenarioChange // Internal write channel
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewScenarioWatcher creates a watcher for dir. Call Start to begin.
func NewScenarioWatcher(dir string) (*ScenarioWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ch := make(chan ScenarioChange, 16)
	return &ScenarioWatcher{
		Dir:     dir,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching.
func (w *ScenarioWatcher) Start() error {
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	golden := filepath.Join(w.Dir, "golden")
	if info, err := os.Stat(golden); err == nil && info.IsDir() {
		if err := w.watcher.Add(golden); err != nil {
			return err
		}
	}

	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *ScenarioWatcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *ScenarioWatcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.emit(file)
				}
				return
			}
			if !isWatchedFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= watchDebounce {
					w.emit(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func isWatchedFile(name string) bool {
	return isScenarioFile(name) || filepath.Ext(name) == ".golden"
}

func (w *ScenarioWatcher) emit(file string) {
	kind := ChangeModified
	if _, err := os.Stat(file); os.IsNotExist(err) {
		kind = ChangeRemoved
	}
	select {
	case w.changes <- ScenarioChange{Kind: kind, File: file}:
	default:
		// Full: a rerun is already queued.
	}
}
