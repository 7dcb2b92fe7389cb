// Package hashfs implements a minimal append-oriented filesystem over a
// raw, fixed-size block device. Files are identified by a 32-bit handle
// derived from a user-visible name, and their contents are scattered
// across the device by open-addressing hash probing — no in-memory
// index is kept; every lookup re-derives its probe path from the
// handle.
package hashfs

import "fmt"

// Kind classifies the outcome of a filesystem operation.
type Kind int

const (
	// OK indicates success.
	OK Kind = iota
	// FileNotFound indicates the handle wasn't present — the probe hit
	// a free block before finding it.
	FileNotFound
	// NoSpace indicates the probe exhausted the ring without finding
	// either the target or a free slot.
	NoSpace
	// BadFilename indicates the name length wasn't in 1..23.
	BadFilename
	// Exists indicates a create_file target was already present.
	Exists
	// WrongSegmentType indicates a block's type tag disagreed with the
	// requested view (segment-0 vs. data segment).
	WrongSegmentType
	// InvalidArgument indicates a disallowed input, such as
	// replace_segment with n == 0.
	InvalidArgument
	// MissingSegment indicates an expected data segment in a file's
	// chain was free at read time.
	MissingSegment
	// IoError indicates the BlockDevice collaborator reported failure.
	IoError
	// CardError indicates the superblock is inconsistent with the
	// device (e.g. bucket_count exceeds the device's block count).
	CardError
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case FileNotFound:
		return "FileNotFound"
	case NoSpace:
		return "NoSpace"
	case BadFilename:
		return "BadFilename"
	case Exists:
		return "Exists"
	case WrongSegmentType:
		return "WrongSegmentType"
	case InvalidArgument:
		return "InvalidArgument"
	case MissingSegment:
		return "MissingSegment"
	case IoError:
		return "IoError"
	case CardError:
		return "CardError"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Status is the error type every hashfs operation returns. It pairs a
// Kind with optional context, mirroring the teacher library's
// H5Error{Context, Cause}/WrapError pair so callers can both compare
// Kinds and read a human message.
type Status struct {
	Kind    Kind
	Context string
	Cause   error
}

// Error implements the error interface.
func (s *Status) Error() string {
	if s == nil {
		return "<nil>"
	}
	switch {
	case s.Cause != nil && s.Context != "":
		return fmt.Sprintf("%s: %s: %v", s.Kind, s.Context, s.Cause)
	case s.Context != "":
		return fmt.Sprintf("%s: %s", s.Kind, s.Context)
	default:
		return s.Kind.String()
	}
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/errors.As.
func (s *Status) Unwrap() error {
	if s == nil {
		return nil
	}
	return s.Cause
}

// newStatus builds a *Status for kind with no further context. Success
// (OK) is always represented as a nil error, never a *Status{Kind: OK}.
func newStatus(kind Kind) error {
	if kind == OK {
		return nil
	}
	return &Status{Kind: kind}
}

// wrapIoError builds an IoError Status carrying context and the device's
// reported error code.
func wrapIoError(context string, deviceErrorCode uint8) error {
	return &Status{
		Kind:    IoError,
		Context: context,
		Cause:   fmt.Errorf("device error code %d", deviceErrorCode),
	}
}

// KindOf extracts the Kind from err, treating a nil error as OK and any
// non-*Status error as IoError (an unexpected, unclassified failure).
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var s *Status
	if as, ok := err.(*Status); ok {
		s = as
		return s.Kind
	}
	return IoError
}

// Is reports whether err's Kind matches kind, so callers can write
// hashfs.Is(err, hashfs.FileNotFound) instead of comparing strings.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
