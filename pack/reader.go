package pack

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/DataDog/zstd"
	"github.com/golang/snappy"
)

type entryInfo struct {
	Offset int64
	Stored int64
}

// Archive reads a single-file pack archive. Tables written through
// WriteTable are buffered in an in-memory overlay; WriteTo re-encodes
// the whole archive with the overlay applied, so the backing file is
// never modified in place.
type Archive struct {
	r io.ReaderAt

	entries map[string]entryInfo
	names   []string
	overlay map[string]string
}

// OpenArchive opens an archive reader.
func OpenArchive(r io.ReaderAt, size int64) (*Archive, error) {
	tmp := make([]byte, 16)

	// read and parse footer
	footerOffset := size - 16
	if footerOffset < 0 {
		return nil, errBadMagic
	}
	if _, err := r.ReadAt(tmp, footerOffset); err != nil {
		return nil, err
	}
	if !bytes.Equal(tmp[8:16], magic) {
		return nil, errBadMagic
	}
	indexOffset := int64(binary.LittleEndian.Uint64(tmp[:8]))
	if indexOffset < 0 || indexOffset > footerOffset {
		return nil, errBadMagic
	}

	// read index
	raw := make([]byte, footerOffset-indexOffset)
	if _, err := r.ReadAt(raw, indexOffset); err != nil {
		return nil, err
	}

	entries := make(map[string]entryInfo)
	var names []string
	var offset int64

	for pos := 0; pos < len(raw); {
		nameLen, n := binary.Uvarint(raw[pos:])
		if n <= 0 {
			return nil, errBadMagic
		}
		pos += n
		if pos+int(nameLen) > len(raw) {
			return nil, errBadMagic
		}
		name := string(raw[pos : pos+int(nameLen)])
		pos += int(nameLen)

		stored, n := binary.Uvarint(raw[pos:])
		if n <= 0 {
			return nil, errBadMagic
		}
		pos += n

		entries[name] = entryInfo{Offset: offset, Stored: int64(stored)}
		names = append(names, name)
		offset += int64(stored)
	}

	return &Archive{
		r:       r,
		entries: entries,
		names:   names,
		overlay: make(map[string]string),
	}, nil
}

// Names returns all entry names, in archive order, with overlay-only
// names appended.
func (a *Archive) Names() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)
	for name := range a.overlay {
		if _, ok := a.entries[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

// Exists reports whether a named table is present.
func (a *Archive) Exists(name string) bool {
	if _, ok := a.overlay[name]; ok {
		return true
	}
	_, ok := a.entries[name]
	return ok
}

// ReadTable returns the decoded text of a named table.
// It may return an ErrNotFound error.
func (a *Archive) ReadTable(name string) (string, error) {
	if text, ok := a.overlay[name]; ok {
		return text, nil
	}
	info, ok := a.entries[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	raw := make([]byte, info.Stored)
	if _, err := a.r.ReadAt(raw, info.Offset); err != nil {
		return "", err
	}

	cBitPos := len(raw) - 1
	if cBitPos < 0 {
		return "", errBadCodec
	}
	switch raw[cBitPos] {
	case entryNoCompression:
		return string(raw[:cBitPos]), nil
	case entrySnappyCompression:
		plain, err := snappy.Decode(nil, raw[:cBitPos])
		if err != nil {
			return "", err
		}
		return string(plain), nil
	case entryZstdCompression:
		plain, err := zstd.Decompress(nil, raw[:cBitPos])
		if err != nil {
			return "", err
		}
		return string(plain), nil
	}
	return "", errBadCodec
}

// WriteTable stores text in the overlay, shadowing the archived entry.
func (a *Archive) WriteTable(name, text string) error {
	a.overlay[name] = text
	return nil
}

// WriteTo re-encodes the archive, overlay applied, through a fresh
// Writer.
func (a *Archive) WriteTo(w io.Writer, o *WriterOptions) error {
	pw := NewWriter(w, o)
	for _, name := range a.Names() {
		text, err := a.ReadTable(name)
		if err != nil {
			return err
		}
		if err := pw.Append(name, text); err != nil {
			return err
		}
	}
	return pw.Close()
}
