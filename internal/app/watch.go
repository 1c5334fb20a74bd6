package app

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("settings watcher closed")

// settingsWatcher signals when the watched settings file is written. It
// watches the parent directory so editors that replace the file on save
// are still noticed. It never touches the session: the owner drains
// Changed from the UI loop.
type settingsWatcher struct {
	fs      *fsnotify.Watcher
	changed chan struct{}
	onError func(error)
	done    chan struct{}

	mu     sync.Mutex
	path   string
	dir    string
	closed bool
}

func newSettingsWatcher(onError func(error)) (*settingsWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &settingsWatcher{
		fs:      fw,
		changed: make(chan struct{}, 1),
		onError: onError,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch switches the watcher to path.
func (w *settingsWatcher) Watch(path string) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if dir != w.dir {
		if w.dir != "" {
			_ = w.fs.Remove(w.dir)
		}
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		w.dir = dir
	}
	w.path = path
	return nil
}

// Changed delivers one signal per burst of writes.
func (w *settingsWatcher) Changed() <-chan struct{} { return w.changed }

func (w *settingsWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}

func (w *settingsWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			match := filepath.Clean(ev.Name) == w.path
			w.mu.Unlock()
			if !match {
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}
