package watcher

import "fmt"

// EventKind represents the type of a raw filesystem notification
type EventKind int

const (
	EventCreated EventKind = iota
	EventChanged
	EventRenamed
	EventDeleted
)

// String returns the string representation of the EventKind
func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventChanged:
		return "changed"
	case EventRenamed:
		return "renamed"
	case EventDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// RawEvent is one notification as emitted by a Source. Path is the affected
// path; for renames Path is the new path and OldPath the previous one. Paths
// are absolute.
type RawEvent struct {
	Kind    EventKind
	Path    string
	OldPath string
}

// Created builds a creation notification.
func Created(path string) RawEvent { return RawEvent{Kind: EventCreated, Path: path} }

// Changed builds a modification notification.
func Changed(path string) RawEvent { return RawEvent{Kind: EventChanged, Path: path} }

// Deleted builds a deletion notification.
func Deleted(path string) RawEvent { return RawEvent{Kind: EventDeleted, Path: path} }

// Renamed builds a rename notification. newPath may be empty when the source
// only knows the old name.
func Renamed(oldPath, newPath string) RawEvent {
	return RawEvent{Kind: EventRenamed, Path: newPath, OldPath: oldPath}
}

func (e RawEvent) String() string {
	if e.Kind == EventRenamed {
		return fmt.Sprintf("%s: %s -> %s", e.Kind, e.OldPath, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Path)
}
