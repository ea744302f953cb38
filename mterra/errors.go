package mterra

import "github.com/pkg/errors"

// Per spec.md §7: only catastrophic conditions are surfaced as host-level
// errors. Per-creature failures (allocation failure, template-match
// failure) steer the reaper via the flag bit and never reach here.

// InvariantError marks a violated core invariant (spec.md §3). It is
// produced for alive-count underflow (Genotype.creatureDied). Iterate
// stops and returns it when handleDeath reports one; World keeps no record
// of it, so a later Iterate call runs again.
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string { return "invariant violation: " + e.msg }

func newInvariantError(format string, args ...interface{}) error {
	return &InvariantError{msg: errors.Errorf(format, args...).Error()}
}

// ArchiveError marks a malformed or unreadable saved-world archive
// (spec.md §7). The engine is never partially constructed when this is
// returned — RestoreWorld either succeeds completely or not at all.
type ArchiveError struct {
	msg   string
	cause error
}

func (e *ArchiveError) Error() string { return "archive error: " + e.msg }
func (e *ArchiveError) Unwrap() error { return e.cause }

func newArchiveError(cause error, msg string) error {
	return &ArchiveError{msg: msg, cause: errors.WithStack(cause)}
}

// ErrSoupOverflow is returned by InsertCreature when the requested region
// is not free.
var ErrSoupOverflow = errors.New("soup: requested region is not free")
