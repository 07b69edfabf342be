// Package device abstracts the byte-stream sources BGZF reads and writes:
// local files with random access, and sequential pipes (stdin/stdout) that
// cannot seek. Remote transports (FTP/HTTP) are explicitly out of scope --
// only this interface is specified for them.
package device

import (
	"errors"
	"io"
	"os"
	"strings"
)

// IoErrorKind enumerates the closed set of device-layer failure kinds.
type IoErrorKind int

const (
	// NotFound means the requested path does not exist.
	NotFound IoErrorKind = iota
	// PermissionDenied means the OS refused the requested access.
	PermissionDenied
	// UnexpectedEof means fewer bytes were available than requested.
	UnexpectedEof
	// NotRandomAccess means Tell/Seek was attempted on a sequential-only device.
	NotRandomAccess
	// Other covers any failure not covered by the above kinds.
	Other
)

func (k IoErrorKind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case PermissionDenied:
		return "PermissionDenied"
	case UnexpectedEof:
		return "UnexpectedEof"
	case NotRandomAccess:
		return "NotRandomAccess"
	default:
		return "Other"
	}
}

// IoError is the structured error type this package raises.
type IoError struct {
	Path string
	Kind IoErrorKind
	Err  error
}

func (e *IoError) Error() string {
	if e.Err != nil {
		return "device: " + e.Path + ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "device: " + e.Path + ": " + e.Kind.String()
}

func (e *IoError) Unwrap() error { return e.Err }

func classify(path string, err error) error {
	if err == nil {
		return nil
	}
	kind := Other
	switch {
	case os.IsNotExist(err):
		kind = NotFound
	case os.IsPermission(err):
		kind = PermissionDenied
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		kind = UnexpectedEof
	}
	return &IoError{Path: path, Kind: kind, Err: err}
}

// Mode selects how Open treats the target.
type Mode int

const (
	// ReadMode opens the device for reading.
	ReadMode Mode = iota
	// WriteMode opens (creating/truncating) the device for writing.
	WriteMode
)

// Device is an abstract byte stream with optional random access. All
// methods return an *IoError on failure.
type Device interface {
	io.ReadWriteCloser

	// Tell returns the current logical byte position.
	Tell() (int64, error)
	// Seek repositions the device; whence is one of io.SeekStart/Current/End.
	Seek(offset int64, whence int) (int64, error)
	// IsRandomAccess reports whether Tell/Seek are supported.
	IsRandomAccess() bool
}

// Open resolves a device URL per the grammar: "-", "stdin", or "stdout" name
// a pipe bound to the process's standard streams; a string carrying a
// "scheme://" prefix is rejected with an IoError of kind Other; any other
// string is a plain local file path. Remote transports are an out-of-scope
// collaborator.
func Open(url string, mode Mode) (Device, error) {
	if i := strings.Index(url, "://"); i > 0 {
		return nil, &IoError{Path: url, Kind: Other, Err: errors.New("unsupported device scheme " + url[:i])}
	}
	switch strings.ToLower(url) {
	case "-":
		if mode == ReadMode {
			return NewStdioPipe(os.Stdin), nil
		}
		return NewStdioPipe(os.Stdout), nil
	case "stdin":
		return NewStdioPipe(os.Stdin), nil
	case "stdout":
		return NewStdioPipe(os.Stdout), nil
	default:
		return OpenLocalFile(url, mode)
	}
}
