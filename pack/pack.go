// Package pack implements the storage collaborators that hold asset
// tables: a plain directory and a single-file pack archive with
// per-entry compression.
package pack

import "errors"

var magic = []byte{84, 66, 67, 190, 31, 122, 101, 219}

const (
	entryNoCompression     = 0
	entrySnappyCompression = 1
	entryZstdCompression   = 2
)

// ErrNotFound is returned when a named asset table does not exist.
var ErrNotFound = errors.New("pack: asset not found")

var (
	errClosed   = errors.New("pack: is closed")
	errBadMagic = errors.New("pack: bad magic byte sequence")
	errBadCodec = errors.New("pack: bad compression codec")
)

// Store is the storage collaborator consumed by the patch pipeline and
// the asset loaders.
type Store interface {
	ReadTable(name string) (string, error)
	WriteTable(name, text string) error
	Exists(name string) bool
}

// --------------------------------------------------------------------

// Compression is the compression codec applied to archive entries.
type Compression byte

func (c Compression) isValid() bool {
	return c >= SnappyCompression && c <= unknownCompression
}

// Supported compression codecs.
const (
	SnappyCompression Compression = iota
	ZstdCompression
	NoCompression
	unknownCompression
)
