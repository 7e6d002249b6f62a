package driven

import "context"

// FileOp describes what happened to a watched file.
type FileOp int

const (
	// FileCreated signals a new file appeared in the watched directory.
	FileCreated FileOp = iota

	// FileModified signals an existing file was written to.
	FileModified

	// FileRemoved signals a file was deleted or moved away.
	FileRemoved
)

// String returns a human-readable operation name.
func (op FileOp) String() string {
	switch op {
	case FileCreated:
		return "created"
	case FileModified:
		return "modified"
	case FileRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// FileEvent is one observed change in a watched directory.
type FileEvent struct {
	// Path is the absolute path of the affected file.
	Path string

	// Op is what happened to it.
	Op FileOp
}

// FileWatcher monitors a directory for document changes, feeding
// automatic ingestion.
type FileWatcher interface {
	// Watch starts monitoring dir and emits events until ctx is
	// cancelled. The returned channel is closed on shutdown.
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)

	// Stop shuts the watcher down and releases OS resources.
	Stop() error
}
