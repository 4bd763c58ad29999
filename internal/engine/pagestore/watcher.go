package pagestore

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/hexstorm/internal/log"
)

// sourceWatcher flags out-of-band changes to the backing file as they
// happen, so a change is noticed even when no page load occurs. The
// directory is watched rather than the file itself so deletes and
// renames over the file are seen too.
type sourceWatcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

func (w *sourceWatcher) watch(s *Store) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(s.path)); err != nil {
		fsw.Close()
		return err
	}
	w.fsw = fsw
	w.done = make(chan struct{})
	go w.loop(s)
	return nil
}

func (w *sourceWatcher) loop(s *Store) {
	logger := log.Get("pagestore")
	target := filepath.Clean(s.path)
	const ops = fsnotify.Write | fsnotify.Remove | fsnotify.Rename | fsnotify.Create
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == target && ev.Op&ops != 0 {
				if !s.changed.Swap(true) {
					logger.Warnf("backing file %s changed outside the session (%s)", s.path, ev.Op)
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Debugf("source watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *sourceWatcher) stop() {
	if w.fsw != nil {
		close(w.done)
		w.fsw.Close()
	}
}
