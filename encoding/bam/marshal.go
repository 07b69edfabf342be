package bam

import (
	"bytes"
	"encoding/binary"

	"github.com/ngsbio/bamtk/encoding/sam"
)

const coreSize = 32 // fixed "core" bytes per the on-disk alignment layout

// Marshal encodes r's wire alignment record (block_size-prefixed) into buf.
func Marshal(r *sam.Record, buf *bytes.Buffer) error {
	if err := r.Expand(); err != nil {
		return wrapDecodeError(err)
	}
	packedSeq := sam.PackSeq(r.Seq)
	packedQual := sam.PackQual(r.Qual)
	nameBytes := append([]byte(r.Name), 0)

	varLen := len(nameBytes) + 4*len(r.Cigar) + len(packedSeq) + len(packedQual) + len(r.Aux.Bytes())
	blockSize := coreSize + varLen

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(blockSize))
	buf.Write(hdr[:])

	var core [coreSize]byte
	binary.LittleEndian.PutUint32(core[0:4], uint32(r.RefID))
	binary.LittleEndian.PutUint32(core[4:8], uint32(r.Pos))
	binMqNl := uint32(r.Bin)<<16 | uint32(r.MapQ)<<8 | uint32(len(nameBytes))
	binary.LittleEndian.PutUint32(core[8:12], binMqNl)
	flagNc := uint32(r.Flag)<<16 | uint32(len(r.Cigar))
	binary.LittleEndian.PutUint32(core[12:16], flagNc)
	binary.LittleEndian.PutUint32(core[16:20], uint32(len(r.Seq)))
	binary.LittleEndian.PutUint32(core[20:24], uint32(r.NextRefID))
	binary.LittleEndian.PutUint32(core[24:28], uint32(r.NextPos))
	binary.LittleEndian.PutUint32(core[28:32], uint32(r.TLen))
	buf.Write(core[:])

	buf.Write(nameBytes)
	for _, op := range r.Cigar {
		code, err := cigarCode(op.Op)
		if err != nil {
			return err
		}
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(op.Len)<<4|uint32(code))
		buf.Write(b[:])
	}
	buf.Write(packedSeq)
	buf.Write(packedQual)
	buf.Write(r.Aux.Bytes())
	return nil
}

var cigarOpTable = [256]int8{}

func init() {
	for i := range cigarOpTable {
		cigarOpTable[i] = -1
	}
	for i, c := range []byte("MIDNSHP=X") {
		cigarOpTable[c] = int8(i)
	}
}

func cigarCode(op byte) (byte, error) {
	c := cigarOpTable[op]
	if c < 0 {
		return 0, newFormatError(BadCigarOp, "unknown CIGAR operator %q", op)
	}
	return byte(c), nil
}

var cigarOpChars = []byte("MIDNSHP=X")

func cigarChar(code byte) (byte, error) {
	if int(code) >= len(cigarOpChars) {
		return 0, newFormatError(BadCigarOp, "CIGAR op code %d out of range", code)
	}
	return cigarOpChars[code], nil
}
