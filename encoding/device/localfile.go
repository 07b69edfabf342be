package device

import (
	"io"
	"os"
)

// LocalFile is a random-access Device backed by an *os.File.
type LocalFile struct {
	path string
	f    *os.File
}

// OpenLocalFile opens path for reading or writing (creating/truncating on
// WriteMode).
func OpenLocalFile(path string, mode Mode) (*LocalFile, error) {
	var f *os.File
	var err error
	if mode == WriteMode {
		f, err = os.Create(path)
	} else {
		f, err = os.Open(path)
	}
	if err != nil {
		return nil, classify(path, err)
	}
	return &LocalFile{path: path, f: f}, nil
}

func (l *LocalFile) Read(p []byte) (int, error) {
	n, err := l.f.Read(p)
	if err != nil && err != io.EOF {
		return n, classify(l.path, err)
	}
	return n, err
}

func (l *LocalFile) Write(p []byte) (int, error) {
	n, err := l.f.Write(p)
	if err != nil {
		return n, classify(l.path, err)
	}
	return n, nil
}

func (l *LocalFile) Close() error {
	return classify(l.path, l.f.Close())
}

func (l *LocalFile) Tell() (int64, error) {
	n, err := l.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, classify(l.path, err)
	}
	return n, nil
}

func (l *LocalFile) Seek(offset int64, whence int) (int64, error) {
	n, err := l.f.Seek(offset, whence)
	if err != nil {
		return 0, classify(l.path, err)
	}
	return n, nil
}

func (l *LocalFile) IsRandomAccess() bool { return true }
