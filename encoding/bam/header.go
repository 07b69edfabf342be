package bam

import (
	"encoding/binary"
	"io"

	"github.com/ngsbio/bamtk/encoding/sam"
)

var bamMagic = [4]byte{'B', 'A', 'M', 1}

// ReadHeader reads the BAM magic, header text, and reference dictionary from
// src (a decompressed BGZF byte stream), in the fixed file-layout order.
func ReadHeader(src io.Reader) (*sam.Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(src, magic[:]); err != nil {
		return nil, newFormatError(ShortRead, "%v", err)
	}
	if magic != bamMagic {
		return nil, newFormatError(BadMagic, "got %q", magic[:])
	}
	textLen, err := readUint32(src)
	if err != nil {
		return nil, err
	}
	text := make([]byte, textLen)
	if _, err := io.ReadFull(src, text); err != nil {
		return nil, newFormatError(ShortRead, "%v", err)
	}
	nRef, err := readUint32(src)
	if err != nil {
		return nil, err
	}
	refs := make([]*sam.Reference, nRef)
	for i := range refs {
		nameLen, err := readUint32(src)
		if err != nil {
			return nil, err
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(src, name); err != nil {
			return nil, newFormatError(ShortRead, "%v", err)
		}
		length, err := readInt32(src)
		if err != nil {
			return nil, err
		}
		refs[i] = sam.NewReference(int32(i), string(name[:len(name)-1]), length)
	}
	return &sam.Header{Text: string(text), References: refs}, nil
}

// WriteHeader writes the BAM magic, header text, and reference dictionary to
// dst.
func WriteHeader(dst io.Writer, h *sam.Header) error {
	if _, err := dst.Write(bamMagic[:]); err != nil {
		return err
	}
	if err := writeUint32(dst, uint32(len(h.Text))); err != nil {
		return err
	}
	if _, err := io.WriteString(dst, h.Text); err != nil {
		return err
	}
	if err := writeUint32(dst, uint32(len(h.References))); err != nil {
		return err
	}
	for _, r := range h.References {
		nameBytes := append([]byte(r.Name), 0)
		if err := writeUint32(dst, uint32(len(nameBytes))); err != nil {
			return err
		}
		if _, err := dst.Write(nameBytes); err != nil {
			return err
		}
		if err := writeUint32(dst, uint32(r.Len)); err != nil {
			return err
		}
	}
	return nil
}

func readUint32(src io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(src, b[:]); err != nil {
		return 0, newFormatError(ShortRead, "%v", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readInt32(src io.Reader) (int32, error) {
	v, err := readUint32(src)
	return int32(v), err
}

func writeUint32(dst io.Writer, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := dst.Write(b[:])
	return err
}
