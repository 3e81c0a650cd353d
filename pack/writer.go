package pack

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
	"github.com/golang/snappy"
)

// WriterOptions define writer specific options.
type WriterOptions struct {
	// The compression codec to use for entry payloads.
	// Default: SnappyCompression.
	Compression Compression
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if !oo.Compression.isValid() {
		oo.Compression = SnappyCompression
	}
	return &oo
}

type indexEntry struct {
	Name   string
	Stored int64 // bytes written for the entry, codec byte included
}

// Writer instances can write a pack archive.
type Writer struct {
	w io.Writer
	o *WriterOptions

	index []indexEntry
	seen  map[string]bool
	off   int64

	snp []byte // snappy buffer
	tmp []byte // scratch buffer
}

// NewWriter wraps a writer and returns a Writer.
func NewWriter(w io.Writer, o *WriterOptions) *Writer {
	return &Writer{
		w:    w,
		o:    o.norm(),
		seen: make(map[string]bool),
		tmp:  make([]byte, 2*binary.MaxVarintLen64),
	}
}

// Append appends a named asset table to the archive.
func (w *Writer) Append(name, text string) error {
	if w.tmp == nil {
		return errClosed
	}
	if w.seen[name] {
		return fmt.Errorf("pack: duplicate entry %q", name)
	}
	w.seen[name] = true

	plain := []byte(text)
	var block []byte
	switch w.o.Compression {
	case SnappyCompression:
		w.snp = snappy.Encode(w.snp[:cap(w.snp)], plain)
		if len(w.snp) < len(plain)-len(plain)/4 {
			block = append(w.snp, entrySnappyCompression)
		} else {
			block = append(plain, entryNoCompression)
		}
	case ZstdCompression:
		zst, err := zstd.Compress(nil, plain)
		if err != nil {
			return err
		}
		if len(zst) < len(plain)-len(plain)/4 {
			block = append(zst, entryZstdCompression)
		} else {
			block = append(plain, entryNoCompression)
		}
	default:
		block = append(plain, entryNoCompression)
	}

	if err := w.writeRaw(block); err != nil {
		return err
	}
	w.index = append(w.index, indexEntry{Name: name, Stored: int64(len(block))})
	return nil
}

// Close writes the entry index and the archive footer and closes the
// writer.
func (w *Writer) Close() error {
	if w.tmp == nil {
		return errClosed
	}

	indexOffset := w.off
	if err := w.writeIndex(); err != nil {
		return err
	}
	if err := w.writeFooter(indexOffset); err != nil {
		return err
	}
	w.tmp = nil
	return nil
}

func (w *Writer) writeIndex() error {
	for _, ent := range w.index {
		n := binary.PutUvarint(w.tmp[0:], uint64(len(ent.Name)))
		if err := w.writeRaw(w.tmp[:n]); err != nil {
			return err
		}
		if err := w.writeRaw([]byte(ent.Name)); err != nil {
			return err
		}
		n = binary.PutUvarint(w.tmp[0:], uint64(ent.Stored))
		if err := w.writeRaw(w.tmp[:n]); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeFooter(indexOffset int64) error {
	binary.LittleEndian.PutUint64(w.tmp[0:], uint64(indexOffset))
	if err := w.writeRaw(w.tmp[:8]); err != nil {
		return err
	}
	return w.writeRaw(magic)
}

func (w *Writer) writeRaw(p []byte) error {
	n, err := w.w.Write(p)
	w.off += int64(n)
	return err
}
