package bti

import (
	"encoding/binary"
	"io"

	"github.com/ngsbio/bamtk/encoding/bgzf"
)

var magic = [4]byte{'B', 'T', 'I', 1}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeI32(w io.Writer, v int32) error { return writeU32(w, uint32(v)) }

func writeU64(w io.Writer, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// WriteIndex writes idx in the fixed BTI wire format: magic, version,
// block_size, the reference count, then per reference an entry count
// followed by its flat entry list. Like bai's, the stream is uncompressed.
func WriteIndex(w io.Writer, idx *Index) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeU32(w, CurrentVersion); err != nil {
		return err
	}
	blockSize := idx.BlockSize
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	if err := writeU32(w, blockSize); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(idx.References))); err != nil {
		return err
	}
	for _, ref := range idx.References {
		if err := writeU32(w, uint32(len(ref.Entries))); err != nil {
			return err
		}
		for _, e := range ref.Entries {
			if err := writeI32(w, e.MaxEndPos); err != nil {
				return err
			}
			if err := writeU64(w, uint64(e.StartVOffset)); err != nil {
				return err
			}
			if err := writeI32(w, e.StartPos); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadIndex parses a BTI file from r. A version below CurrentVersion is
// refused with StaleVersion rather than interpreted, since earlier
// versions used an incompatible entry layout.
func ReadIndex(r io.Reader) (*Index, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, newError(Corrupt, "%v", err)
	}
	if got != magic {
		return nil, newError(BadMagic, "got %q", got[:])
	}
	version, err := readU32(r)
	if err != nil {
		return nil, newError(Corrupt, "%v", err)
	}
	if version < CurrentVersion {
		return nil, newError(StaleVersion, "index version %d older than %d", version, CurrentVersion)
	}
	blockSize, err := readU32(r)
	if err != nil {
		return nil, newError(Corrupt, "%v", err)
	}
	nRef, err := readU32(r)
	if err != nil {
		return nil, newError(Corrupt, "%v", err)
	}
	idx := &Index{References: make([]*Reference, nRef), BlockSize: blockSize}
	for i := range idx.References {
		n, err := readU32(r)
		if err != nil {
			return nil, newError(Corrupt, "%v", err)
		}
		ref := &Reference{Entries: make([]Entry, n)}
		for j := range ref.Entries {
			maxEnd, err := readI32(r)
			if err != nil {
				return nil, newError(Corrupt, "%v", err)
			}
			voff, err := readU64(r)
			if err != nil {
				return nil, newError(Corrupt, "%v", err)
			}
			startPos, err := readI32(r)
			if err != nil {
				return nil, newError(Corrupt, "%v", err)
			}
			ref.Entries[j] = Entry{MaxEndPos: maxEnd, StartVOffset: bgzf.Offset(voff), StartPos: startPos}
		}
		idx.References[i] = ref
	}
	return idx, nil
}
