package findings

import "fmt"

// The sync layer performs no retries and no silent recovery: every error
// below aborts the current operation for that one finding and is surfaced to
// the caller. A search with zero matches is a nil result, not an error.

// ValidationError reports a primary-key component that cannot be embedded
// safely in a tracker query. Caller's fault, never retried.
type ValidationError struct {
    Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IntegrityError reports more than one open issue for one primary key, which
// indicates corrupted tracker data rather than a resolvable conflict.
type IntegrityError struct {
    Key   string
    Count int
}

func (e *IntegrityError) Error() string {
    return fmt.Sprintf("expected at most one open finding for %s, found %d", e.Key, e.Count)
}

// ConsistencyError reports a decoded issue whose primary key does not match
// the key it was looked up by, guarding against field-mapping drift silently
// returning the wrong record.
type ConsistencyError struct {
    Queried string
    Decoded string
}

func (e *ConsistencyError) Error() string {
    return fmt.Sprintf("issue primary key mismatch: queried %s, decoded %s", e.Queried, e.Decoded)
}

// FormatError reports a stored field blob that cannot be parsed per its
// declared shape.
type FormatError struct {
    Field string
    Msg   string
}

func (e *FormatError) Error() string { return fmt.Sprintf("field %s: %s", e.Field, e.Msg) }
