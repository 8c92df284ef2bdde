package watcher

import (
	"context"
	stderrors "errors"
)

// Normalizer turns raw notifications into calls on the tracker and the
// artifact manager.
type Normalizer struct {
	tracker   *Tracker
	artifacts *ArtifactManager
}

// NewNormalizer wires a normalizer.
func NewNormalizer(tracker *Tracker, artifacts *ArtifactManager) *Normalizer {
	return &Normalizer{tracker: tracker, artifacts: artifacts}
}

// Dispatch handles one notification. Created and changed files go to the
// tracker, deleted files to the artifact manager, and a rename is a removal of
// the old path followed by a change of the new one, in that order. Empty paths
// are dropped. The returned error joins any compile failures.
func (n *Normalizer) Dispatch(ctx context.Context, ev RawEvent) error {
	switch ev.Kind {
	case EventCreated, EventChanged:
		return n.changed(ctx, ev.Path)
	case EventDeleted:
		return n.removed(ctx, ev.Path)
	case EventRenamed:
		removeErr := n.removed(ctx, ev.OldPath)
		changeErr := n.changed(ctx, ev.Path)
		return stderrors.Join(removeErr, changeErr)
	default:
		return nil
	}
}

func (n *Normalizer) changed(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	return n.tracker.HandleChanged(ctx, path)
}

func (n *Normalizer) removed(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	n.tracker.Forget(path)
	return n.artifacts.HandleRemoved(ctx, path)
}
