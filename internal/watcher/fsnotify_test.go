package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mutex  sync.Mutex
	events []RawEvent
}

func (l *eventLog) sink(ev RawEvent) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) has(kind EventKind, path string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	for _, ev := range l.events {
		if ev.Kind != kind {
			continue
		}
		if ev.Path == path || (kind == EventRenamed && ev.OldPath == path) {
			return true
		}
	}
	return false
}

func (l *eventLog) hasPath(path string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	for _, ev := range l.events {
		if ev.Path == path || ev.OldPath == path {
			return true
		}
	}
	return false
}

func scssOnly(name string) bool {
	return filepath.Ext(name) == ".scss"
}

func subscribeTemp(t *testing.T) (string, *eventLog) {
	t.Helper()

	root := t.TempDir()
	log := &eventLog{}
	sub, err := NewFSNotifySource(nil).Subscribe(root, scssOnly, log.sink)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })
	return root, log
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 10*time.Millisecond)
}

func TestFSNotifySource_CreateWriteRemove(t *testing.T) {
	root, log := subscribeTemp(t)
	path := filepath.Join(root, "main.scss")

	require.NoError(t, os.WriteFile(path, []byte("a { color: red; }"), 0o644))
	eventually(t, func() bool { return log.has(EventCreated, path) })

	require.NoError(t, os.WriteFile(path, []byte("a { color: blue; }"), 0o644))
	eventually(t, func() bool { return log.has(EventChanged, path) })

	require.NoError(t, os.Remove(path))
	eventually(t, func() bool { return log.has(EventDeleted, path) })
}

func TestFSNotifySource_Rename(t *testing.T) {
	root, log := subscribeTemp(t)
	oldPath := filepath.Join(root, "a.scss")
	newPath := filepath.Join(root, "b.scss")
	require.NoError(t, os.WriteFile(oldPath, []byte("a{}"), 0o644))
	eventually(t, func() bool { return log.has(EventCreated, oldPath) })

	require.NoError(t, os.Rename(oldPath, newPath))

	eventually(t, func() bool { return log.has(EventRenamed, oldPath) })
	eventually(t, func() bool { return log.has(EventCreated, newPath) })
}

func TestFSNotifySource_FiltersNames(t *testing.T) {
	root, log := subscribeTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	sentinel := filepath.Join(root, "sentinel.scss")
	require.NoError(t, os.WriteFile(sentinel, []byte("a{}"), 0o644))

	eventually(t, func() bool { return log.has(EventCreated, sentinel) })
	assert.False(t, log.hasPath(filepath.Join(root, "notes.txt")))
}

func TestFSNotifySource_Subdirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o755))

	log := &eventLog{}
	sub, err := NewFSNotifySource(nil).Subscribe(root, scssOnly, log.sink)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	existing := filepath.Join(root, "pages", "home.scss")
	require.NoError(t, os.WriteFile(existing, []byte("a{}"), 0o644))
	eventually(t, func() bool { return log.has(EventCreated, existing) })

	// Files in a directory created after subscribing are reported too.
	dir := filepath.Join(root, "components")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	later := filepath.Join(dir, "button.scss")
	eventually(t, func() bool {
		if log.hasPath(later) {
			return true
		}
		_ = os.WriteFile(later, []byte("a{}"), 0o644)
		return false
	})
}

func TestFSNotifySource_DirectoryMovedIn(t *testing.T) {
	outside := t.TempDir()
	moved := filepath.Join(outside, "theme")
	require.NoError(t, os.MkdirAll(moved, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(moved, "dark.scss"), []byte("a{}"), 0o644))

	root, log := subscribeTemp(t)
	target := filepath.Join(root, "theme")
	require.NoError(t, os.Rename(moved, target))

	eventually(t, func() bool { return log.has(EventCreated, filepath.Join(target, "dark.scss")) })
}

func TestFSNotifySource_SkippedDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "pkg"), 0o755))

	log := &eventLog{}
	sub, err := NewFSNotifySource(nil).Subscribe(root, scssOnly, log.sink)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	ignored := filepath.Join(root, "node_modules", "pkg", "lib.scss")
	require.NoError(t, os.WriteFile(ignored, []byte("a{}"), 0o644))
	sentinel := filepath.Join(root, "sentinel.scss")
	require.NoError(t, os.WriteFile(sentinel, []byte("a{}"), 0o644))

	eventually(t, func() bool { return log.has(EventCreated, sentinel) })
	assert.False(t, log.hasPath(ignored))
}

func TestFSNotifySource_InvalidRoot(t *testing.T) {
	_, err := NewFSNotifySource(nil).Subscribe(filepath.Join(t.TempDir(), "missing"), scssOnly, func(RawEvent) {})
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.scss")
	require.NoError(t, os.WriteFile(file, []byte("a{}"), 0o644))
	_, err = NewFSNotifySource(nil).Subscribe(file, scssOnly, func(RawEvent) {})
	assert.Error(t, err)
}

func TestFSNotifySource_NoEventsAfterClose(t *testing.T) {
	root := t.TempDir()
	log := &eventLog{}
	sub, err := NewFSNotifySource(nil).Subscribe(root, scssOnly, log.sink)
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	path := filepath.Join(root, "late.scss")
	require.NoError(t, os.WriteFile(path, []byte("a{}"), 0o644))
	time.Sleep(50 * time.Millisecond)
	assert.False(t, log.hasPath(path))
}
