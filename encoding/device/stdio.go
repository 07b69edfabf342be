package device

import (
	"io"
)

// StdioPipe is a sequential-only Device wrapping a process standard stream.
// Tell and Seek always fail with NotRandomAccess.
type StdioPipe struct {
	rw io.ReadWriteCloser
}

// NewStdioPipe wraps rwc (typically os.Stdin or os.Stdout) as a Device.
func NewStdioPipe(rwc interface {
	io.Reader
	io.Writer
	io.Closer
}) *StdioPipe {
	return &StdioPipe{rw: rwc}
}

func (p *StdioPipe) Read(b []byte) (int, error)  { return p.rw.Read(b) }
func (p *StdioPipe) Write(b []byte) (int, error) { return p.rw.Write(b) }
func (p *StdioPipe) Close() error                { return p.rw.Close() }

func (p *StdioPipe) Tell() (int64, error) {
	return 0, &IoError{Path: "<pipe>", Kind: NotRandomAccess}
}

func (p *StdioPipe) Seek(offset int64, whence int) (int64, error) {
	return 0, &IoError{Path: "<pipe>", Kind: NotRandomAccess}
}

func (p *StdioPipe) IsRandomAccess() bool { return false }
