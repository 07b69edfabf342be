// Package multibam merges alignments streamed from several BAM files into
// a single ordered sequence, the way a multi-sample variant caller or
// merge-sort consumer wants to see them: a k-way merge over each open
// reader's next record, with reference dictionaries cross-checked and
// headers combined before the first alignment is produced.
package multibam

import (
	"container/heap"
	"io"

	"github.com/dgryski/go-farm"
	"v.io/x/lib/vlog"

	"github.com/ngsbio/bamtk/encoding/bam"
	"github.com/ngsbio/bamtk/encoding/sam"
)

// SortOrder selects the comparison used to order records drawn from
// multiple readers.
type SortOrder int

const (
	// ByPosition orders by (RefID, Pos), with unmapped records (RefID < 0)
	// sorted last regardless of source file.
	ByPosition SortOrder = iota
	// ByReadName orders lexically by read name.
	ByReadName
	// Unsorted preserves each source file's own order without interleaving:
	// every record of the first reader, then the second, and so on.
	Unsorted
)

// Merger performs a k-way merge of core alignments across multiple open BAM
// readers, in the order the caller specifies with SetSortOrder.
type Merger struct {
	readers  []*bam.Reader
	order    SortOrder
	coreMode bool
	h        *mergeHeap
	header   *sam.Header
}

// Open opens every file in filenames, cross-checks their reference
// dictionaries for a shared fingerprint, and merges their headers. coreMode
// selects whether Next returns core-only or fully-expanded records.
// loadIndexes is accepted but not acted on: Open loads and binds no index.
func Open(filenames []string, loadIndexes bool, coreMode bool) (*Merger, error) {
	vlog.VI(1).Infof("multibam: opening %d files", len(filenames))
	readers := make([]*bam.Reader, 0, len(filenames))
	for _, name := range filenames {
		r, err := bam.Open(name)
		if err != nil {
			closeAll(readers)
			return nil, err
		}
		readers = append(readers, r)
	}

	if err := checkReferenceDictionaries(readers); err != nil {
		vlog.Errorf("multibam: reference dictionary mismatch among %v", filenames)
		closeAll(readers)
		return nil, err
	}

	header := mergeHeaders(readers)

	m := &Merger{
		readers:  readers,
		order:    ByPosition,
		coreMode: coreMode,
		header:   header,
	}
	if err := m.excludeEmptyInputs(filenames); err != nil {
		closeAll(m.readers)
		return nil, err
	}
	if err := m.reset(); err != nil {
		closeAll(m.readers)
		return nil, err
	}
	return m, nil
}

// excludeEmptyInputs drops any reader whose file holds no alignments at all,
// matching BamMultiReaderPrivate::Open()'s handling of a reader that fails
// to produce a first alignment: warned about and excluded from the merge,
// unless doing so would leave nothing left to read, in which case the open
// fails outright.
func (m *Merger) excludeEmptyInputs(filenames []string) error {
	kept := make([]*bam.Reader, 0, len(m.readers))
	for i, r := range m.readers {
		_, err := r.NextCore()
		if err == io.EOF {
			vlog.Warningf("multibam: %s has no alignments, excluding from merge", filenames[i])
			r.Close() // nolint: errcheck
			continue
		}
		if err != nil {
			return err
		}
		if err := r.Rewind(); err != nil {
			return err
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return &bam.UsageError{Kind: bam.EmptyInput}
	}
	m.readers = kept
	return nil
}

func closeAll(readers []*bam.Reader) {
	for _, r := range readers {
		r.Close() // nolint: errcheck
	}
}

// Header returns the merged header shared by every subsequent record.
func (m *Merger) Header() *sam.Header { return m.header }

// referenceFingerprint hashes a reference dictionary's (name, length) pairs
// in order, so two files sharing a dictionary (but not necessarily
// identical ref_ids) can still be told apart from ones that genuinely
// disagree.
func referenceFingerprint(refs []*sam.Reference) uint64 {
	seed := farm.Hash64WithSeed([]byte("multibam-reference-dictionary"), 0)
	for _, r := range refs {
		lenBytes := []byte{byte(r.Len), byte(r.Len >> 8), byte(r.Len >> 16), byte(r.Len >> 24)}
		seed = farm.Hash64WithSeed(append([]byte(r.Name), lenBytes...), seed)
	}
	return seed
}

func checkReferenceDictionaries(readers []*bam.Reader) error {
	if len(readers) == 0 {
		return nil
	}
	want := referenceFingerprint(readers[0].Header().References)
	for _, r := range readers[1:] {
		if referenceFingerprint(r.Header().References) != want {
			return &bam.UsageError{Kind: bam.ReferenceMismatch}
		}
	}
	return nil
}

// mergeHeaders combines per-reader headers per the documented rules:
// @HD/@SQ come from the first reader (reference dictionaries having
// already been checked to agree); @RG lines are unioned, de-duplicated by
// ID; @PG and @CO lines are unioned, first-seen order preserved.
func mergeHeaders(readers []*bam.Reader) *sam.Header {
	if len(readers) == 0 {
		return &sam.Header{}
	}
	codec := sam.DefaultTextCodec{}
	base, err := codec.Parse(readers[0].Header().Text)
	if err != nil {
		return readers[0].Header()
	}

	var hdSQ, rg, pgCO []string
	seenRG := map[string]bool{}
	seenPGCO := map[string]bool{}

	classify := func(lines []string) {
		for _, l := range lines {
			switch {
			case len(l) >= 3 && (l[:3] == "@HD" || l[:3] == "@SQ"):
				// handled only from the first reader, below.
			case len(l) >= 3 && l[:3] == "@RG":
				id := rgID(l)
				if id != "" && !seenRG[id] {
					seenRG[id] = true
					rg = append(rg, l)
				}
			default:
				if !seenPGCO[l] {
					seenPGCO[l] = true
					pgCO = append(pgCO, l)
				}
			}
		}
	}

	for _, l := range base.Lines {
		if len(l) >= 3 && (l[:3] == "@HD" || l[:3] == "@SQ") {
			hdSQ = append(hdSQ, l)
		}
	}
	for _, r := range readers {
		parsed, err := codec.Parse(r.Header().Text)
		if err != nil {
			continue
		}
		classify(parsed.Lines)
	}

	var all []string
	all = append(all, hdSQ...)
	all = append(all, rg...)
	all = append(all, pgCO...)
	merged := codec.Print(&sam.StructuredHeader{Lines: all})

	return &sam.Header{Text: merged, References: readers[0].Header().References}
}

func rgID(line string) string {
	const tag = "ID:"
	fields := splitTabs(line)
	for _, f := range fields {
		if len(f) > len(tag) && f[:len(tag)] == tag {
			return f[len(tag):]
		}
	}
	return ""
}

func splitTabs(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\t' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// SetSortOrder changes the comparison used for subsequent Next calls. It
// must be called before the first Next (or immediately after Open/SetRegion,
// before any record has been drawn), since it reinitializes the merge heap.
func (m *Merger) SetSortOrder(order SortOrder) error {
	m.order = order
	return m.reset()
}

// SetRegion restricts every underlying reader to alignments overlapping
// region (each reader must have had BindIndex called already; Open does not
// bind one) and reinitializes the merge.
func (m *Merger) SetRegion(region bam.Region) error {
	for _, r := range m.readers {
		if err := r.SetRegion(region); err != nil {
			return err
		}
	}
	return m.reset()
}

// Next returns the next record in merged order across all readers, or
// io.EOF once every reader is exhausted.
func (m *Merger) Next() (*sam.Record, error) {
	if m.h.Len() == 0 {
		return nil, io.EOF
	}
	top := heap.Pop(m.h).(*heapItem)
	rec := top.rec
	if !m.coreMode {
		if err := rec.Expand(); err != nil {
			return nil, err
		}
	}

	next, err := m.drawFrom(top.reader)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if next != nil {
		heap.Push(m.h, &heapItem{rec: next, reader: top.reader, order: m.order})
	}
	return rec, nil
}

// drawFrom pulls the next core alignment from a reader. When sorting by
// read name, the name must be decoded immediately so the heap can compare
// it, even though the final record returned to the caller may still be
// core-only for every other field (Expand is idempotent and cheap to call
// twice).
func (m *Merger) drawFrom(readerIdx int) (*sam.Record, error) {
	rec, err := m.readers[readerIdx].NextCore()
	if err != nil {
		return nil, err
	}
	if m.order == ByReadName {
		if err := rec.Expand(); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Close closes every underlying reader.
func (m *Merger) Close() error {
	var first error
	for _, r := range m.readers {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *Merger) reset() error {
	m.h = &mergeHeap{}
	heap.Init(m.h)
	for i := range m.readers {
		rec, err := m.drawFrom(i)
		if err == io.EOF {
			continue
		}
		if err != nil {
			return err
		}
		heap.Push(m.h, &heapItem{rec: rec, reader: i, order: m.order})
	}
	return nil
}
