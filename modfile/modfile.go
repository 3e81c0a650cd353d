// Package modfile persists mods as zip archives: a YAML metadata file
// plus one JSON snapshot per asset type the mod touches. An asset type
// absent from the archive means "the mod doesn't touch this", which is
// distinct from a present-but-empty snapshot ("the mod clears this").
package modfile

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	metaName       = "mod.yaml"
	snapshotPrefix = "snapshots/"
	snapshotSuffix = ".json"
)

// ErrNoMeta is returned when a mod archive carries no mod.yaml.
var ErrNoMeta = errors.New("modfile: archive has no " + metaName)

// Meta describes a mod.
type Meta struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Author      string `yaml:"author,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Description string `yaml:"description,omitempty"`
	GameVersion string `yaml:"game_version,omitempty"`
}

// Mod is an ordered, named set of asset snapshots. The application order
// across mods is supplied by the caller of the pipeline and determines
// conflict precedence; within a mod, snapshots keep archive order.
type Mod struct {
	Meta Meta

	entries map[string][]byte
	names   []string
}

// New returns an empty mod, assigning a fresh id when meta carries none.
func New(meta Meta) *Mod {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	return &Mod{Meta: meta, entries: make(map[string][]byte)}
}

// SetSnapshot stores the JSON snapshot for an asset type.
func (m *Mod) SetSnapshot(asset string, data []byte) {
	if _, ok := m.entries[asset]; !ok {
		m.names = append(m.names, asset)
	}
	m.entries[asset] = data
}

// Snapshot returns the JSON snapshot recorded for an asset type. The
// second return value is false when the mod does not touch the asset.
func (m *Mod) Snapshot(asset string) ([]byte, bool) {
	data, ok := m.entries[asset]
	return data, ok
}

// Assets lists the asset types the mod touches, in archive order.
func (m *Mod) Assets() []string {
	names := make([]string, len(m.names))
	copy(names, m.names)
	return names
}

// --------------------------------------------------------------------

// Read parses a mod archive.
func Read(r io.ReaderAt, size int64) (*Mod, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("modfile: %w", err)
	}

	mod := &Mod{entries: make(map[string][]byte)}
	sawMeta := false

	for _, f := range zr.File {
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}

		switch {
		case f.Name == metaName:
			if err := yaml.Unmarshal(data, &mod.Meta); err != nil {
				return nil, fmt.Errorf("modfile: %s: %w", metaName, err)
			}
			sawMeta = true
		case strings.HasPrefix(f.Name, snapshotPrefix) && strings.HasSuffix(f.Name, snapshotSuffix):
			asset := strings.TrimSuffix(strings.TrimPrefix(f.Name, snapshotPrefix), snapshotSuffix)
			mod.SetSnapshot(asset, data)
		}
	}

	if !sawMeta {
		return nil, ErrNoMeta
	}
	return mod, nil
}

// Open reads a mod archive from disk.
func Open(path string) (*Mod, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("modfile: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("modfile: %w", err)
	}
	return Read(f, fi.Size())
}

// WriteTo writes the mod as a zip archive.
func (m *Mod) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	meta, err := yaml.Marshal(m.Meta)
	if err != nil {
		return fmt.Errorf("modfile: %w", err)
	}
	if err := writeZipFile(zw, metaName, meta); err != nil {
		return err
	}

	for _, asset := range m.names {
		if err := writeZipFile(zw, snapshotPrefix+asset+snapshotSuffix, m.entries[asset]); err != nil {
			return err
		}
	}
	return zw.Close()
}

// Save writes the mod archive to disk.
func (m *Mod) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("modfile: %w", err)
	}
	if err := m.WriteTo(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("modfile: %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("modfile: %s: %w", f.Name, err)
	}
	return data, nil
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("modfile: %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("modfile: %s: %w", name, err)
	}
	return nil
}
