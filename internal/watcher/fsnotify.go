package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/livesass/internal/logging"
)

// FSNotifySource is a Source backed by fsnotify. fsnotify watches single
// directories, so every directory below the root is added at subscribe time
// and directories created later are added as they appear.
//
// fsnotify reports a rename as Rename on the old name followed by Create on
// the new one. The source emits Renamed(old, "") for the first half and
// Created(new) for the second, which the normalizer handles in the same order
// as a paired rename.
type FSNotifySource struct {
	logger logging.Logger
}

// NewFSNotifySource creates an fsnotify-backed source.
func NewFSNotifySource(logger logging.Logger) *FSNotifySource {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &FSNotifySource{logger: logger.WithComponent("source")}
}

// skippedDirs are never watched. They can hold thousands of directories and
// never contain sources of interest.
var skippedDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

type fsnotifySubscription struct {
	watcher *fsnotify.Watcher
	root    string
	filter  NameFilter
	sink    Sink
	logger  logging.Logger

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Subscribe implements Source.
func (s *FSNotifySource) Subscribe(root string, filter NameFilter, sink Sink) (Subscription, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	sub := &fsnotifySubscription{
		watcher: w,
		root:    filepath.Clean(root),
		filter:  filter,
		sink:    sink,
		logger:  s.logger.With("root", root),
		done:    make(chan struct{}),
	}

	if err := sub.addRecursive(sub.root, false); err != nil {
		_ = w.Close()
		return nil, err
	}

	sub.wg.Add(1)
	go sub.watchLoop()

	return sub, nil
}

// addRecursive adds root and every directory below it. With emit set, files
// found on the way are reported as created; this covers directories moved
// into the tree, whose contents produce no events of their own.
func (s *fsnotifySubscription) addRecursive(root string, emit bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn(context.Background(), err, "failed to access path", "path", path)
			return nil
		}

		if !d.IsDir() {
			if emit && s.filter(d.Name()) {
				s.emit(Created(path))
			}
			return nil
		}

		if path != root && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}

		if err := s.watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			s.logger.Warn(context.Background(), err, "failed to add watch", "path", path)
			return nil
		}
		s.logger.Debug(context.Background(), "added watch", "path", path)
		return nil
	})
}

func (s *fsnotifySubscription) watchLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			s.handleFsnotifyEvent(event)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			// Log error but continue watching
			s.logger.Warn(context.Background(), err, "file watcher error")
		}
	}
}

func (s *fsnotifySubscription) handleFsnotifyEvent(event fsnotify.Event) {
	path := event.Name
	if path == "" {
		return
	}
	name := filepath.Base(path)

	switch {
	case event.Has(fsnotify.Remove):
		if s.filter(name) {
			s.emit(Deleted(path))
		}
	case event.Has(fsnotify.Rename):
		if s.filter(name) {
			s.emit(Renamed(path, ""))
		}
	case event.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			if skippedDirs[name] {
				return
			}
			if err := s.addRecursive(path, true); err != nil {
				s.logger.Warn(context.Background(), err, "failed to watch new directory", "path", path)
			}
			return
		}
		if s.filter(name) {
			s.emit(Created(path))
		}
	case event.Has(fsnotify.Write):
		if s.filter(name) {
			s.emit(Changed(path))
		}
	}
}

func (s *fsnotifySubscription) emit(ev RawEvent) {
	select {
	case <-s.done:
	default:
		s.sink(ev)
	}
}

// Close implements Subscription.
func (s *fsnotifySubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}
