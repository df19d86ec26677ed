package catalog

import (
	"context"

	"brecimport/internal/recording"
)

// SessionRef identifies a broadcast session in the catalog.
type SessionRef struct {
	// ID is the catalog's surrogate id; zero while Pending.
	ID  int64
	Key string
	// Pending marks a session the backend will create together with its first part.
	Pending bool
}

// Checker answers the read-only questions asked before any write.
type Checker interface {
	RoomExists(ctx context.Context, roomID string) (bool, error)
	PartExists(ctx context.Context, containerPath string) (bool, error)
}

// Writer appends sessions and parts. ResolveOrCreateSession is idempotent per
// session key; descriptive fields are written only when the session is new.
type Writer interface {
	ResolveOrCreateSession(ctx context.Context, candidate recording.Candidate) (SessionRef, error)
	CreatePart(ctx context.Context, session SessionRef, candidate recording.Candidate) error
}

// Backend is the full catalog port.
type Backend interface {
	Checker
	Writer
	Close() error
}

// Transactional backends can run one file's writes atomically.
type Transactional interface {
	Atomically(ctx context.Context, fn func(Writer) error) error
}

// SelfTimed backends apply their own deadline to every request they make.
// Callers must not bound a whole operation with a single timeout, since one
// operation may fan out into many requests.
type SelfTimed interface {
	BoundsOwnCalls() bool
}

// BoundsOwnCalls reports whether backend implements SelfTimed and opts in.
func BoundsOwnCalls(backend Backend) bool {
	timed, ok := backend.(SelfTimed)
	return ok && timed.BoundsOwnCalls()
}

// WithinFile runs fn inside a transaction when the backend supports one and
// directly otherwise.
func WithinFile(ctx context.Context, backend Backend, fn func(Writer) error) error {
	if tx, ok := backend.(Transactional); ok {
		return tx.Atomically(ctx, fn)
	}
	return fn(backend)
}
