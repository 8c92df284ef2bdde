package watcher

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"sync"
)

// recordingCompiler records every Compile call. Paths listed in failing fail;
// names starting with "_" are excluded.
type recordingCompiler struct {
	mutex   sync.Mutex
	calls   []string
	failing map[string]bool
	hook    func(path string)
}

func newRecordingCompiler() *recordingCompiler {
	return &recordingCompiler{failing: make(map[string]bool)}
}

func (r *recordingCompiler) Compile(_ context.Context, path string) error {
	r.mutex.Lock()
	r.calls = append(r.calls, path)
	fail := r.failing[path]
	hook := r.hook
	r.mutex.Unlock()

	if hook != nil {
		hook(path)
	}
	if fail {
		return stderrors.New("syntax error in " + path)
	}
	return nil
}

func (r *recordingCompiler) IsExcluded(name string) bool {
	return strings.HasPrefix(name, "_")
}

func (r *recordingCompiler) setFailing(path string, fail bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.failing[path] = fail
}

func (r *recordingCompiler) Calls() []string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recordingCompiler) count(path string) int {
	n := 0
	for _, c := range r.Calls() {
		if c == path {
			n++
		}
	}
	return n
}

// memorySource is a Source driven by the test.
type memorySource struct {
	mutex  sync.Mutex
	root   string
	filter NameFilter
	sink   Sink
	subs   int
	err    error
}

func (m *memorySource) Subscribe(root string, filter NameFilter, sink Sink) (Subscription, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.root = root
	m.filter = filter
	m.sink = sink
	m.subs++
	return &memorySubscription{source: m}, nil
}

// emit delivers ev if its file name passes the subscription filter.
func (m *memorySource) emit(ev RawEvent) {
	m.mutex.Lock()
	sink, filter := m.sink, m.filter
	m.mutex.Unlock()
	if sink == nil {
		return
	}

	name := filepath.Base(ev.Path)
	if ev.Path == "" {
		name = filepath.Base(ev.OldPath)
	}
	if filter != nil && !filter(name) {
		return
	}
	sink(ev)
}

func (m *memorySource) active() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.sink != nil
}

type memorySubscription struct {
	source *memorySource
}

func (s *memorySubscription) Close() error {
	s.source.mutex.Lock()
	defer s.source.mutex.Unlock()
	s.source.sink = nil
	return nil
}
