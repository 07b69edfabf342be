package bai

import (
	"encoding/binary"
	"io"

	"github.com/ngsbio/bamtk/encoding/bgzf"
)

var magic = [4]byte{'B', 'A', 'I', 1}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

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

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// WriteIndex writes idx in the fixed BAI wire format: magic, per-reference
// bin map (with the reserved metadata pseudo-bin appended last) and linear
// index.
func WriteIndex(w io.Writer, idx *Index) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeU32(w, uint32(len(idx.References))); err != nil {
		return err
	}
	for _, ref := range idx.References {
		bins := ref.sortedBins()
		nBin := uint32(len(bins))
		if ref.Meta.MappedCount > 0 || ref.Meta.UnmappedCount > 0 {
			nBin++
		}
		if err := writeU32(w, nBin); err != nil {
			return err
		}
		for _, be := range bins {
			if err := writeU32(w, be.bin); err != nil {
				return err
			}
			if err := writeU32(w, uint32(len(be.chunks))); err != nil {
				return err
			}
			for _, c := range be.chunks {
				if err := writeU64(w, uint64(c.Begin)); err != nil {
					return err
				}
				if err := writeU64(w, uint64(c.End)); err != nil {
					return err
				}
			}
		}
		if ref.Meta.MappedCount > 0 || ref.Meta.UnmappedCount > 0 {
			if err := writeU32(w, metaBin); err != nil {
				return err
			}
			if err := writeU32(w, 2); err != nil {
				return err
			}
			if err := writeU64(w, uint64(ref.Meta.UnmappedBegin)); err != nil {
				return err
			}
			if err := writeU64(w, uint64(ref.Meta.UnmappedEnd)); err != nil {
				return err
			}
			if err := writeU64(w, ref.Meta.MappedCount); err != nil {
				return err
			}
			if err := writeU64(w, ref.Meta.UnmappedCount); err != nil {
				return err
			}
		}
		if err := writeU32(w, uint32(len(ref.Intervals))); err != nil {
			return err
		}
		for _, off := range ref.Intervals {
			if err := writeU64(w, uint64(off)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadIndex parses a BAI file from r.
func ReadIndex(r io.Reader) (*Index, error) {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, newError(Corrupt, "%v", err)
	}
	if got != magic {
		return nil, newError(BadMagic, "got %q", got[:])
	}
	nRef, err := readU32(r)
	if err != nil {
		return nil, newError(Corrupt, "%v", err)
	}
	idx := &Index{References: make([]*Reference, nRef)}
	for i := range idx.References {
		ref := &Reference{}
		nBin, err := readU32(r)
		if err != nil {
			return nil, newError(Corrupt, "%v", err)
		}
		for j := uint32(0); j < nBin; j++ {
			binID, err := readU32(r)
			if err != nil {
				return nil, newError(Corrupt, "%v", err)
			}
			nChunk, err := readU32(r)
			if err != nil {
				return nil, newError(Corrupt, "%v", err)
			}
			if binID == metaBin {
				if nChunk != 2 {
					return nil, newError(Corrupt, "metadata pseudo-bin has %d chunks, want 2", nChunk)
				}
				ub, err := readU64(r)
				if err != nil {
					return nil, newError(Corrupt, "%v", err)
				}
				ue, err := readU64(r)
				if err != nil {
					return nil, newError(Corrupt, "%v", err)
				}
				mc, err := readU64(r)
				if err != nil {
					return nil, newError(Corrupt, "%v", err)
				}
				uc, err := readU64(r)
				if err != nil {
					return nil, newError(Corrupt, "%v", err)
				}
				ref.Meta = Metadata{
					UnmappedBegin: bgzf.Offset(ub),
					UnmappedEnd:   bgzf.Offset(ue),
					MappedCount:   mc,
					UnmappedCount: uc,
				}
				continue
			}
			chunks := make([]Chunk, nChunk)
			for k := range chunks {
				begin, err := readU64(r)
				if err != nil {
					return nil, newError(Corrupt, "%v", err)
				}
				end, err := readU64(r)
				if err != nil {
					return nil, newError(Corrupt, "%v", err)
				}
				chunks[k] = Chunk{Begin: bgzf.Offset(begin), End: bgzf.Offset(end)}
			}
			ref.setBin(binID, chunks)
		}
		nIntv, err := readU32(r)
		if err != nil {
			return nil, newError(Corrupt, "%v", err)
		}
		ref.Intervals = make([]bgzf.Offset, nIntv)
		for k := range ref.Intervals {
			v, err := readU64(r)
			if err != nil {
				return nil, newError(Corrupt, "%v", err)
			}
			ref.Intervals[k] = bgzf.Offset(v)
		}
		idx.References[i] = ref
	}
	return idx, nil
}
