package ofs

import "fmt"

// Code is one of the stable, signed 32-bit error codes from spec.md §7.
type Code int32

const (
	Success           Code = 0
	NotFound          Code = -1
	PermissionDenied  Code = -2
	IOError           Code = -3
	InvalidPath       Code = -4
	FileExists        Code = -5
	NoSpace           Code = -6
	InvalidConfig     Code = -7
	NotImplemented    Code = -8
	InvalidSession    Code = -9
	DirectoryNotEmpty Code = -10
	InvalidOperation  Code = -11
)

// String renders the human-readable message for a code, the Go analogue of
// the original's get_error_message(code).
func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	case IOError:
		return "I/O error"
	case InvalidPath:
		return "invalid path"
	case FileExists:
		return "file exists"
	case NoSpace:
		return "no space left"
	case InvalidConfig:
		return "invalid configuration"
	case NotImplemented:
		return "not implemented"
	case InvalidSession:
		return "invalid session"
	case DirectoryNotEmpty:
		return "directory not empty"
	case InvalidOperation:
		return "invalid operation"
	default:
		return fmt.Sprintf("unknown error (%d)", int32(c))
	}
}

// codedError pairs a Code with context, the way cmd/vorteil wraps sentinel
// errors with fmt.Errorf("...: %w", err) instead of inventing a new error
// type per call site.
type codedError struct {
	code Code
	msg  string
}

func (e *codedError) Error() string {
	if e.msg == "" {
		return e.code.String()
	}
	return fmt.Sprintf("%s: %s", e.code.String(), e.msg)
}

// Is lets errors.Is(err, ofs.ErrNotFound) work by comparing codes, so any
// error carrying the same Code matches the bare sentinel built by asError.
func (e *codedError) Is(target error) bool {
	c, ok := CodeOf(target)
	return ok && c == e.code
}

// Err builds an error carrying code, with optional formatted context.
func Err(code Code, format string, args ...interface{}) error {
	return &codedError{code: code, msg: fmt.Sprintf(format, args...)}
}

// asError allows a bare Code to be returned as an error directly (the
// zero-context case), e.g. `return ofs.NotFound` reads oddly so call sites
// use ofs.Err(ofs.NotFound, "...") or the bare sentinel errors below.
func (c Code) asError() error { return &codedError{code: c} }

var (
	ErrNotFound          = NotFound.asError()
	ErrPermissionDenied  = PermissionDenied.asError()
	ErrIOError           = IOError.asError()
	ErrInvalidPath       = InvalidPath.asError()
	ErrFileExists        = FileExists.asError()
	ErrNoSpace           = NoSpace.asError()
	ErrInvalidConfig     = InvalidConfig.asError()
	ErrNotImplemented    = NotImplemented.asError()
	ErrInvalidSession    = InvalidSession.asError()
	ErrDirectoryNotEmpty = DirectoryNotEmpty.asError()
	ErrInvalidOperation  = InvalidOperation.asError()
)

// CodeOf extracts the Code carried by err, walking wrapped errors the way
// errors.As would. Returns (Success, true) for a nil err and (IOError,
// false) for an error this package didn't originate (callers of the
// dispatcher should treat "false" as "render as IOError").
func CodeOf(err error) (Code, bool) {
	if err == nil {
		return Success, true
	}
	for {
		if c, ok := err.(*codedError); ok {
			return c.code, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return IOError, false
		}
		err = u.Unwrap()
		if err == nil {
			return IOError, false
		}
	}
}
