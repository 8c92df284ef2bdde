package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/conneroisu/livesass/internal/errors"
	"github.com/conneroisu/livesass/internal/logging"
)

// Tracker decides whether a change notification represents new work. It keeps
// the time each path was last compiled and only compiles a path again when
// its last-write time is newer than that.
//
// The recorded time is the wall clock after the compile returns, not the
// file's write time. Bursts of notifications for one edit therefore collapse
// into a single compile; a write that lands inside the same instant as the
// recorded time is not seen as new.
type Tracker struct {
	fs       afero.Fs
	compiler Compiler
	now      func() time.Time
	logger   logging.Logger

	mutex sync.RWMutex
	table map[string]time.Time
	locks *pathLocks
}

// NewTracker creates a tracker reading last-write times from fs.
func NewTracker(fs afero.Fs, compiler Compiler, logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Tracker{
		fs:       fs,
		compiler: compiler,
		now:      time.Now,
		logger:   logger.WithComponent("tracker"),
		table:    make(map[string]time.Time),
		locks:    newPathLocks(),
	}
}

// HandleChanged compiles path if it is stale. A path that cannot be stat'ed
// (typically because it vanished after the notification) is skipped. Only a
// compile failure is returned; the table is left untouched in that case so
// the next notification retries.
func (t *Tracker) HandleChanged(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	unlock := t.locks.lock(path)
	defer unlock()

	info, err := t.fs.Stat(path)
	if err != nil {
		t.logger.Debug(ctx, "skipping change, last-write time unavailable",
			"path", path,
			"cause", errors.NewTransientError(errors.ErrCodeStatFailed, "stat failed", err).Error())
		return nil
	}
	if info.IsDir() {
		return nil
	}

	lastWrite := info.ModTime()
	if processed, ok := t.LastProcessed(path); ok && !processed.Before(lastWrite) {
		t.logger.Debug(ctx, "duplicate change ignored", "path", path)
		return nil
	}

	if err := t.compiler.Compile(ctx, path); err != nil {
		return err
	}

	t.mutex.Lock()
	t.table[path] = t.now()
	t.mutex.Unlock()

	return nil
}

// LastProcessed returns the recorded compile time for path.
func (t *Tracker) LastProcessed(path string) (time.Time, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	ts, ok := t.table[path]
	return ts, ok
}

// Forget drops the entry for path. It is called when the source file is
// removed or renamed away, so a file later restored under the same name with
// an older write time is compiled again. Apart from this and the reset on
// Start, entries are never expired.
func (t *Tracker) Forget(path string) {
	unlock := t.locks.lock(path)
	defer unlock()

	t.mutex.Lock()
	delete(t.table, path)
	t.mutex.Unlock()
}

func (t *Tracker) reset() {
	t.mutex.Lock()
	clear(t.table)
	t.mutex.Unlock()
}

// Len returns the number of tracked paths.
func (t *Tracker) Len() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.table)
}

// pathLocks hands out one mutex per path, dropping it once nobody holds it.
type pathLocks struct {
	mutex sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	sync.Mutex
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*pathLock)}
}

func (p *pathLocks) lock(path string) func() {
	p.mutex.Lock()
	l, ok := p.locks[path]
	if !ok {
		l = &pathLock{}
		p.locks[path] = l
	}
	l.refs++
	p.mutex.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		p.mutex.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, path)
		}
		p.mutex.Unlock()
	}
}
