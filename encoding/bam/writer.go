package bam

import (
	"bytes"

	"v.io/x/lib/vlog"

	"github.com/ngsbio/bamtk/encoding/bgzf"
	"github.com/ngsbio/bamtk/encoding/device"
	"github.com/ngsbio/bamtk/encoding/sam"
)

// Writer sequentially writes a BAM file: magic, header text, reference
// dictionary, then alignments. It never sorts or reorders; ordering of
// Save calls is the caller's responsibility and is preserved byte-for-byte.
type Writer struct {
	dev  device.Device
	bgzf *bgzf.Writer
}

// Create opens path for writing and emits the BAM header block.
func Create(path string, header *sam.Header) (*Writer, error) {
	vlog.VI(1).Infof("bam: creating %v with %d references", path, len(header.References))
	dev, err := device.Open(path, device.WriteMode)
	if err != nil {
		return nil, err
	}
	bw := bgzf.NewWriter(dev, -1)
	if err := WriteHeader(bw, header); err != nil {
		dev.Close() // nolint: errcheck
		return nil, err
	}
	return &Writer{dev: dev, bgzf: bw}, nil
}

// Save encodes and writes one alignment.
func (w *Writer) Save(r *sam.Record) error {
	var buf bytes.Buffer
	if err := Marshal(r, &buf); err != nil {
		return err
	}
	_, err := w.bgzf.Write(buf.Bytes())
	return err
}

// Tell returns the virtual offset of the next byte to be written, useful for
// index construction synchronized with the writer's position.
func (w *Writer) Tell() bgzf.Offset { return w.bgzf.Tell() }

// Close flushes the final BGZF block, emits the EOF terminator, and closes
// the underlying device.
func (w *Writer) Close() error {
	if err := w.bgzf.Close(); err != nil {
		vlog.Errorf("bam: flushing final block: %v", err)
		w.dev.Close() // nolint: errcheck
		return err
	}
	return w.dev.Close()
}
