package sam

// Record is one BAM alignment. Decoded records start in "core-only" form:
// RefID/Pos/MapQ/Flag/Cigar/NextRefID/NextPos/TLen/Bin are populated and
// cigar is parsed eagerly (needed for EndPosition), but Name/Seq/Qual/Aux are
// not materialized until Expand is called. This is a first-class API, not a
// hidden flag: callers that only need coordinates never pay for string
// materialization.
type Record struct {
	RefID     int32
	Pos       int32 // 0-based; -1 iff unmapped
	MapQ      uint8
	Bin       uint16
	Flag      Flag
	Cigar     []CigarOp
	NextRefID int32
	NextPos   int32
	TLen      int32
	LSeq      int32 // length of Seq/Qual, authoritative even before Expand

	// raw holds the on-disk variable "data" block (name, cigar, packed seq,
	// qual, tags) as decoded, for lazy materialization and for retaining
	// bytes this core doesn't interpret.
	raw     []byte
	nameLen int // length of read_name including the terminating NUL

	expanded bool
	Name     string
	Seq      string
	Qual     string
	Aux      AuxFields
}

// NewRecord builds a fully-expanded, in-memory record (as opposed to one
// produced by decoding a wire alignment). RefID/NextRefID use UnmappedRefID
// for unmapped ends. The bin is computed from RefID/Pos/Cigar.
func NewRecord(name string, refID, pos int32, mapQ uint8, flag Flag, cigar []CigarOp,
	nextRefID, nextPos, tlen int32, seq, qual string) *Record {
	r := &Record{
		RefID:     refID,
		Pos:       pos,
		MapQ:      mapQ,
		Flag:      flag,
		Cigar:     cigar,
		NextRefID: nextRefID,
		NextPos:   nextPos,
		TLen:      tlen,
		LSeq:      int32(len(seq)),
		expanded:  true,
		Name:      name,
		Seq:       seq,
		Qual:      qual,
	}
	r.computeBin()
	return r
}

// AttachRaw binds the on-disk variable "data" block (starting at
// read_name, i.e. payload after the fixed 32-byte core) to r for lazy
// Expand, along with the read-name length including its terminating NUL.
// Used by the bam package's decoder; not needed when building records with
// NewRecord.
func (r *Record) AttachRaw(raw []byte, nameLen int) {
	r.raw = raw
	r.nameLen = nameLen
	r.expanded = false
}

// IsCoreOnly reports whether char data (Name/Seq/Qual/Aux) has not yet been
// materialized from the retained raw bytes.
func (r *Record) IsCoreOnly() bool { return !r.expanded }

// Unmapped reports whether the read-unmapped flag is set. Per the data
// model, this flag -- not Pos == -1 -- is authoritative.
func (r *Record) Unmapped() bool { return r.Flag&FlagUnmapped != 0 }

// EndPosition returns the alignment's end coordinate. usePadded includes 'P'
// operations in the reference-consuming set; zeroBased controls whether the
// result is the open (count) or closed (last base) coordinate. Unmapped
// records return Pos unchanged.
func (r *Record) EndPosition(usePadded, zeroBased bool) int32 {
	if r.RefID == UnmappedRefID {
		return r.Pos
	}
	end := r.Pos
	for _, op := range r.Cigar {
		if consumesReference(op.Op) || (usePadded && op.Op == 'P') {
			end += int32(op.Len)
		}
	}
	if !zeroBased && end > r.Pos {
		end--
	}
	return end
}

// computeBin derives and stores the BAI bin for the record's current
// RefID/Pos/EndPosition, matching the wire bin_mq_nl field written on
// encode. Both-unmapped records use the reserved bin for unmapped reads
// (4680, reg2bin(-1,0)'s value under this scheme), matching legacy encoders.
func (r *Record) computeBin() {
	if r.RefID == UnmappedRefID {
		r.Bin = 4680
		return
	}
	end := r.EndPosition(false, true)
	if end <= r.Pos {
		end = r.Pos + 1
	}
	r.Bin = uint16(RegionToBin(r.Pos, end))
}

// Expand materializes Name, Seq, Qual, and Aux from the record's retained
// raw bytes. It is a no-op if already expanded or if the record was built in
// memory rather than decoded.
func (r *Record) Expand() error {
	if r.expanded {
		return nil
	}
	if r.raw == nil {
		r.expanded = true
		return nil
	}
	b := r.raw
	if r.nameLen == 0 || r.nameLen > len(b) {
		return newDecodeError(InvalidNameLength, "sam: invalid read-name length %d", r.nameLen)
	}
	r.Name = string(b[:r.nameLen-1]) // exclude terminating NUL
	off := r.nameLen + 4*len(r.Cigar)
	lSeq := int(r.LSeq)
	seqBytes := (lSeq + 1) / 2
	if off+seqBytes+lSeq > len(b) {
		return newDecodeError(TruncatedSeqQual, "sam: truncated sequence/quality data")
	}
	r.Seq = UnpackSeq(b[off:off+seqBytes], lSeq)
	off += seqBytes
	r.Qual = UnpackQual(b[off : off+lSeq])
	off += lSeq
	r.Aux = NewAuxFields(b[off:])
	if _, err := r.Aux.scan(); err != nil {
		return err
	}
	r.expanded = true
	return nil
}

// AlignedBases expands the sequence against the CIGAR per the documented
// rules (M/I/=/X emit, S consumes without emitting, D/N/P emit filler runs,
// H emits nothing). Requires the record to be expanded.
func (r *Record) AlignedBases() string {
	return ExpandAlignedBases(r.Seq, r.Cigar)
}

// Equal reports whether two records are identical in every field this
// package materializes, ignoring any unexported caching state.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if err := r.Expand(); err != nil {
		return false
	}
	if err := o.Expand(); err != nil {
		return false
	}
	if r.RefID != o.RefID || r.Pos != o.Pos || r.MapQ != o.MapQ || r.Bin != o.Bin ||
		r.Flag != o.Flag || r.NextRefID != o.NextRefID || r.NextPos != o.NextPos ||
		r.TLen != o.TLen || r.LSeq != o.LSeq || r.Name != o.Name || r.Seq != o.Seq || r.Qual != o.Qual {
		return false
	}
	if len(r.Cigar) != len(o.Cigar) {
		return false
	}
	for i := range r.Cigar {
		if r.Cigar[i] != o.Cigar[i] {
			return false
		}
	}
	return string(r.Aux.Bytes()) == string(o.Aux.Bytes())
}
