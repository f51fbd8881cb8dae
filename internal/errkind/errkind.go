// Package errkind defines the sentinel error taxonomy shared by the
// metalog and gc packages. Errors are distinguished with errors.Is against
// the sentinels below; callers that need to act on a specific kind should
// never string-match an error's text.
package errkind

import "github.com/cockroachdb/errors"

// Metalog header / reader errors. Fatal at reader construction: the caller
// (typically range-server startup) cannot proceed with this log file.
var (
	// ErrBadRsHeader indicates the file is missing, or too short to
	// contain, the "RSML" prefix.
	ErrBadRsHeader = errors.New("metalog: bad rsml header")

	// ErrVersionMismatch indicates the on-disk version field does not
	// match the version this reader understands.
	ErrVersionMismatch = errors.New("metalog: version mismatch")
)

// Codec / entry decode errors.
var (
	// ErrShortBuffer is returned when a decode requests more bytes than
	// remain in the cursor. Wrapped by ErrMetalogEntryBadPayload at the
	// entry level.
	ErrShortBuffer = errors.New("metalog: short buffer")

	// ErrMetalogEntryBadPayload wraps any codec-level failure while
	// decoding a framed record's payload.
	ErrMetalogEntryBadPayload = errors.New("metalog: bad entry payload")
)

// Fold (replay) errors. Raising this aborts the whole replay: the log is
// unusable once an ordering invariant is violated.
var ErrMetalogEntryBadOrder = errors.New("metalog: entry out of order")

// ErrUnimplemented marks an operation the implementation does not support:
// the folder returns it for an entry type with no fold rule (the move and
// split trios both have one), and cloud/aws.S3StatProxy returns it from
// Read and Write.
var ErrUnimplemented = errors.New("metalog: unimplemented")

// Filesystem errors, caught per-file by the reaper and logged, never
// propagated out of a GC cycle.
var (
	ErrFileNotFound = errors.New("dfs: file not found")
	ErrFsError      = errors.New("dfs: filesystem error")
)

// ErrInvalidFixture indicates a gc.FixtureTable dump line could not be
// parsed — cmd/mastergc reports this and exits rather than silently
// skipping rows a live scan would have seen.
var ErrInvalidFixture = errors.New("gc: invalid fixture line")

// ErrMutatorFailed indicates a METADATA mutator's flush did not converge
// after retrying failed cells, per the retry(timeout)/get_failed() contract
// in spec.md §5. Unlike per-file FS errors, this aborts the GC cycle rather
// than being swallowed, since an un-applied row/cell deletion leaves
// METADATA state inconsistent with the files_map it was scanned from.
var ErrMutatorFailed = errors.New("gc: mutator flush failed")

// Wrap annotates err with msg and marks it as belonging to the kind sentinel,
// so that errors.Is(wrapped, kind) succeeds while the message stays
// specific to the call site.
func Wrap(err error, kind error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), kind)
}

// Wrapf is Wrap with printf-style formatting.
func Wrapf(err error, kind error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), kind)
}

// Newf builds a fresh error of the given kind, for call sites with no
// underlying cause to wrap.
func Newf(kind error, format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), kind)
}
