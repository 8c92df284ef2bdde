package errors

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// CompileFailure records one failed compile for a path.
type CompileFailure struct {
	Path      string
	Message   string
	Timestamp time.Time
}

// Error implements the error interface
func (cf *CompileFailure) Error() string {
	return fmt.Sprintf("%s: %s", cf.Path, cf.Message)
}

// ErrorCollector collects compile failures and general errors reported while
// the watcher runs. Failures are keyed by path so that a later successful
// compile of the same file can clear them.
type ErrorCollector struct {
	failures map[string]CompileFailure
	order    []string
	errors   []error
	mutex    sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		failures: make(map[string]CompileFailure),
		order:    make([]string, 0),
		errors:   make([]error, 0),
	}
}

// AddError adds an error to the collector. Compile errors are recorded
// against their path, anything else is kept as a general error.
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}

	var we *WatchError
	if errors.As(err, &we) && we.Type == ErrorTypeCompile && we.Path != "" {
		ec.addFailure(we.Path, err.Error())
		return
	}

	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

func (ec *ErrorCollector) addFailure(path, message string) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	if _, exists := ec.failures[path]; !exists {
		ec.order = append(ec.order, path)
	}
	ec.failures[path] = CompileFailure{
		Path:      path,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Resolve drops the recorded failure for path, if any.
func (ec *ErrorCollector) Resolve(path string) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()

	if _, exists := ec.failures[path]; !exists {
		return
	}
	delete(ec.failures, path)
	for i, p := range ec.order {
		if p == path {
			ec.order = append(ec.order[:i], ec.order[i+1:]...)
			break
		}
	}
}

// GetFailures returns the outstanding compile failures in the order they were
// first reported.
func (ec *ErrorCollector) GetFailures() []CompileFailure {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	result := make([]CompileFailure, 0, len(ec.order))
	for _, path := range ec.order {
		result = append(result, ec.failures[path])
	}
	return result
}

// GetFailure returns the outstanding failure for path.
func (ec *ErrorCollector) GetFailure(path string) (CompileFailure, bool) {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	f, ok := ec.failures[path]
	return f, ok
}

// GetAllErrors returns all collected errors (compile failures and general)
func (ec *ErrorCollector) GetAllErrors() []error {
	failures := ec.GetFailures()

	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	allErrors := make([]error, 0, len(failures)+len(ec.errors))
	for i := range failures {
		allErrors = append(allErrors, &failures[i])
	}
	allErrors = append(allErrors, ec.errors...)

	return allErrors
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.failures) > 0 || len(ec.errors) > 0
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	clear(ec.failures)
	ec.order = ec.order[:0]
	ec.errors = ec.errors[:0]
}
