package watcher

// NameFilter reports whether a file name (not a path) is of interest.
type NameFilter func(name string) bool

// Sink receives notifications. It must not block for long; the controller's
// sink only enqueues.
type Sink func(ev RawEvent)

// Source is a filesystem notification source. Subscribe starts delivering
// notifications for files below root (recursively) whose name passes filter.
type Source interface {
	Subscribe(root string, filter NameFilter, sink Sink) (Subscription, error)
}

// Subscription is a live subscription. Close stops delivery; after it returns
// the sink is not called again.
type Subscription interface {
	Close() error
}
