// Package errs defines the error taxonomy shared across the segment and
// tablet subsystems. Sentinel errors are wrapped with errors.Is-compatible
// context so callers can both branch on kind and recover diagnostic detail
// (segment id, column, page index) without string-matching error text.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Callers should compare with errors.Is, never ==, since
// every constructor below wraps one of these.
var (
	ErrSchemaMismatch    = errors.New("schema mismatch")
	ErrCorruptData       = errors.New("corrupt data")
	ErrDecode            = errors.New("decode error")
	ErrVersionHole       = errors.New("version hole")
	ErrDuplicateVersion  = errors.New("duplicate version")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrIO                = errors.New("io error")
)

// SchemaMismatchError reports a value/arity disagreement with a schema, or a
// segment whose schema digest diverges from the expected schema.
type SchemaMismatchError struct {
	Context string
	Want    any
	Got     any
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s (want %v, got %v)", e.Context, e.Want, e.Got)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

func NewSchemaMismatch(context string, want, got any) error {
	return &SchemaMismatchError{Context: context, Want: want, Got: got}
}

// CorruptDataError carries enough location information to diagnose a CRC or
// framing failure without retrying: segment id, column index and page index
// are populated wherever known by the caller.
type CorruptDataError struct {
	SegmentID string
	Column    int
	PageIndex int
	Reason    string
}

func (e *CorruptDataError) Error() string {
	return fmt.Sprintf("corrupt data: segment=%s column=%d page=%d: %s",
		e.SegmentID, e.Column, e.PageIndex, e.Reason)
}

func (e *CorruptDataError) Unwrap() error { return ErrCorruptData }

func NewCorruptData(segmentID string, column, pageIndex int, reason string) error {
	return &CorruptDataError{SegmentID: segmentID, Column: column, PageIndex: pageIndex, Reason: reason}
}

// DecodeError reports valid framing whose codec could not produce the
// stated row count.
type DecodeError struct {
	Column int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error: column=%d: %s", e.Column, e.Reason)
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

func NewDecode(column int, reason string) error {
	return &DecodeError{Column: column, Reason: reason}
}

// VersionHoleError reports that no path covers the requested version range;
// Missing is the highest version reachable from the query's lower bound
// whose out-edges cannot advance further.
type VersionHoleError struct {
	Missing int64
}

func (e *VersionHoleError) Error() string {
	return fmt.Sprintf("version hole at %d", e.Missing)
}

func (e *VersionHoleError) Unwrap() error { return ErrVersionHole }

func NewVersionHole(missing int64) error {
	return &VersionHoleError{Missing: missing}
}

// Simple wraps for the remaining kinds, which need no extra structure beyond
// a human-readable message.

func NewDuplicateVersion(start, end int64) error {
	return fmt.Errorf("%w: [%d,%d]", ErrDuplicateVersion, start, end)
}

func NewNotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func NewAlreadyExists(what string) error {
	return fmt.Errorf("%w: %s", ErrAlreadyExists, what)
}

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func NewResourceExhausted(msg string) error {
	return fmt.Errorf("%w: %s", ErrResourceExhausted, msg)
}

// WrapIO wraps an external blob-layer failure unchanged in kind, adding no
// retry semantics, per spec propagation policy.
func WrapIO(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}
