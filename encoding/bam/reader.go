package bam

import (
	"io"

	"v.io/x/lib/vlog"

	"github.com/ngsbio/bamtk/encoding/bgzf"
	"github.com/ngsbio/bamtk/encoding/device"
	"github.com/ngsbio/bamtk/encoding/sam"
)

// IndexCacheMode selects how much of a bound Index's per-reference offset
// data the Reader keeps resident. The bai and bti indexes in this module
// record the mode but always keep the whole index in memory.
type IndexCacheMode int

const (
	// CacheFull loads all per-reference offsets into memory.
	CacheFull IndexCacheMode = iota
	// CacheLimited keeps at most one reference's offsets resident, reloading on demand.
	CacheLimited
	// CacheNone reads each jump target from disk and discards it immediately.
	CacheNone
)

// Index is the capability a Reader needs from a bound index implementation
// (bai.Index or bti.Index) to support set_region. It is intentionally
// narrow so this package never depends on either concrete index package.
type Index interface {
	// Jump returns the virtual offset to seek to for region, or ok=false if
	// region provably contains no alignments.
	Jump(region Region) (voffset bgzf.Offset, ok bool, err error)
	// HasAlignments reports whether ref contains any indexed alignments.
	HasAlignments(ref int32) bool
	// SetCacheMode adjusts how much index data is kept resident.
	SetCacheMode(mode IndexCacheMode)
}

// Reader provides sequential and (with a bound Index) random-access reading
// of a BAM file: header, references, and alignments.
type Reader struct {
	dev    device.Device
	bgzf   *bgzf.Reader
	header *sam.Header
	index  Index

	alignmentsBegin bgzf.Offset
	region          *Region
	regionDone      bool
}

// Open opens path (via the device URL grammar) and reads its header and
// reference dictionary. Open takes no index path and performs no index IO;
// to use SetRegion, the caller loads an index and calls BindIndex.
func Open(path string) (*Reader, error) {
	dev, err := device.Open(path, device.ReadMode)
	if err != nil {
		return nil, err
	}
	br := bgzf.NewReader(dev)
	h, err := ReadHeader(br)
	if err != nil {
		dev.Close() // nolint: errcheck
		return nil, err
	}
	return &Reader{
		dev:             dev,
		bgzf:            br,
		header:          h,
		alignmentsBegin: br.Tell(),
	}, nil
}

// Header returns the reader's parsed header and reference dictionary.
func (r *Reader) Header() *sam.Header { return r.header }

// Tell returns the reader's current BGZF virtual offset, for index
// construction synchronized with the decoder's file position.
func (r *Reader) Tell() bgzf.Offset { return r.bgzf.Tell() }

// Probe decodes the (ref_id, pos, end_position) of the alignment at off
// without disturbing the reader's current position, for use as a bai/bti
// AlignmentProbe. It requires the underlying device to support random
// access.
func (r *Reader) Probe(off bgzf.Offset) (refID, pos, endPos int32, err error) {
	saved := r.bgzf.Tell()
	if err = r.bgzf.Seek(off); err != nil {
		return 0, 0, 0, err
	}
	rec, err := ReadAlignment(r.bgzf)
	if err != nil {
		return 0, 0, 0, err
	}
	if err = r.bgzf.Seek(saved); err != nil {
		return 0, 0, 0, err
	}
	return rec.RefID, rec.Pos, rec.EndPosition(false, true), nil
}

// BindIndex attaches idx to this reader for subsequent SetRegion calls.
func (r *Reader) BindIndex(idx Index) { r.index = idx }

// SetIndexCacheMode forwards mode to the bound index, if any.
func (r *Reader) SetIndexCacheMode(mode IndexCacheMode) {
	if r.index != nil {
		r.index.SetCacheMode(mode)
	}
}

// Close releases the reader's device.
func (r *Reader) Close() error {
	return r.dev.Close()
}

// Next returns the next fully-decoded alignment, honoring any active region.
func (r *Reader) Next() (*sam.Record, error) {
	rec, err := r.nextCoreFiltered()
	if err != nil {
		return nil, err
	}
	if err := rec.Expand(); err != nil {
		return nil, wrapDecodeError(err)
	}
	return rec, nil
}

// NextCore returns the next alignment in core-only form, honoring any active
// region.
func (r *Reader) NextCore() (*sam.Record, error) {
	return r.nextCoreFiltered()
}

func (r *Reader) nextCoreFiltered() (*sam.Record, error) {
	if r.region == nil {
		return ReadAlignment(r.bgzf)
	}
	if r.regionDone {
		return nil, io.EOF
	}
	for {
		rec, err := ReadAlignment(r.bgzf)
		if err != nil {
			return nil, err
		}
		switch r.region.classify(rec.RefID, rec.Pos, rec.EndPosition(false, true)) {
		case before:
			continue
		case within:
			return rec, nil
		case after:
			r.regionDone = true
			return nil, io.EOF
		}
	}
}

// Rewind seeks back to the first alignment and clears any active region.
func (r *Reader) Rewind() error {
	if err := r.bgzf.Seek(r.alignmentsBegin); err != nil {
		return err
	}
	r.region = nil
	r.regionDone = false
	return nil
}

// SetRegion restricts subsequent Next/NextCore calls to alignments
// overlapping region, consulting the bound Index to seek directly to the
// first candidate chunk. Fails with UsageError{RandomAccessRequired} if no
// index is bound.
func (r *Reader) SetRegion(region Region) error {
	if r.index == nil {
		return newUsageError(RandomAccessRequired, "no index bound to reader")
	}
	adjusted := region
	for adjusted.LeftRef < int32(len(r.header.References)) && !r.index.HasAlignments(adjusted.LeftRef) {
		adjusted.LeftRef++
		adjusted.LeftPos = 0
	}
	voffset, ok, err := r.index.Jump(adjusted)
	if err != nil {
		return err
	}
	if !ok {
		vlog.VI(1).Infof("bam: region %+v has no candidate alignments", adjusted)
		r.region = &adjusted
		r.regionDone = true
		return nil
	}
	if err := r.bgzf.Seek(voffset); err != nil {
		return err
	}
	r.region = &adjusted
	r.regionDone = false
	return nil
}
