package template

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/killallgit/scribe/pkg/logger"
)

// Watcher reloads a TemplateSet's members when their backing files
// change on disk.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching the set's template directory (and the
// conversations subdirectory, when present) for changes to .md files.
// Callers must Close the returned watcher.
func (s *TemplateSet) Watch() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(s.baseDir); err != nil {
		fsw.Close()
		return nil, err
	}
	// Optional; the subdirectory may not exist.
	if err := fsw.Add(filepath.Join(s.baseDir, conversationsDir)); err != nil {
		logger.Debug("not watching conversations directory: %v", err)
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	go w.run(s)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) run(s *TemplateSet) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Ext(event.Name) != ".md" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			s.reload(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("template watcher error: %v", err)
		}
	}
}
