package assets

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cintagram/tbcpatch/modfile"
	"github.com/cintagram/tbcpatch/pack"
	"github.com/cintagram/tbcpatch/schema"
	"github.com/cintagram/tbcpatch/tabular"
)

// NamedAnim pairs an animation with the file it was decoded from. The
// file name carries the action (walk, idle, attack, ...), so it is part
// of the model's identity.
type NamedAnim struct {
	Name string `json:"name"`
	Anim Anim   `json:"anim"`
}

// Model is the composite state of one unit: its texture cut-outs, its
// rig and every animation that drives the rig.
type Model struct {
	Texture Texture     `json:"texture"`
	Rig     Rig         `json:"rig"`
	Anims   []NamedAnim `json:"anims"`
}

// Equal reports whether two models are identical, attribute for
// attribute across all three asset kinds.
func (m *Model) Equal(o *Model) bool {
	return m.Texture.HeadName == o.Texture.HeadName &&
		m.Texture.Version == o.Texture.Version &&
		m.Texture.ImgName == o.Texture.ImgName &&
		slices.Equal(m.Texture.Rects, o.Texture.Rects) &&
		m.Rig.HeadName == o.Rig.HeadName &&
		m.Rig.Version == o.Rig.Version &&
		slices.Equal(m.Rig.Parts, o.Rig.Parts) &&
		m.Rig.Units == o.Rig.Units &&
		slices.Equal(m.Rig.Ints, o.Rig.Ints) &&
		slices.EqualFunc(m.Anims, o.Anims, namedAnimEqual)
}

func namedAnimEqual(a, b NamedAnim) bool {
	return a.Name == b.Name &&
		a.Anim.HeadName == b.Anim.HeadName &&
		a.Anim.Version == b.Anim.Version &&
		slices.EqualFunc(a.Anim.Tracks, b.Anim.Tracks, trackEqual)
}

func trackEqual(a, b Track) bool {
	return a.ModelID == b.ModelID && a.ModType == b.ModType &&
		a.Loop == b.Loop && a.MinV == b.MinV && a.MaxV == b.MaxV &&
		a.Name == b.Name && slices.Equal(a.Frames, b.Frames)
}

func (m *Model) clone() *Model {
	c := *m
	c.Texture.Rects = slices.Clone(m.Texture.Rects)
	c.Rig.Parts = slices.Clone(m.Rig.Parts)
	c.Rig.Ints = slices.Clone(m.Rig.Ints)
	c.Anims = make([]NamedAnim, len(m.Anims))
	for i, a := range m.Anims {
		c.Anims[i] = NamedAnim{Name: a.Name, Anim: a.Anim}
		c.Anims[i].Anim.Tracks = slices.Clone(a.Anim.Tracks)
		for j := range c.Anims[i].Anim.Tracks {
			c.Anims[i].Anim.Tracks[j].Frames = slices.Clone(a.Anim.Tracks[j].Frames)
		}
	}
	return &c
}

// --------------------------------------------------------------------

// UnitModel adapts one unit's composite model to the patch pipeline. It
// is keyed by the base file name shared by the unit's imgcut, mamodel
// and maanim files, e.g. "castleCustom_mainChara_001".
//
// Models merge wholesale: animation data is too entangled for a
// field-level merge to produce anything playable, so when a mod's model
// differs from the pristine one it replaces the current model entirely.
// Later mods win.
type UnitModel struct {
	base     string
	anims    []string
	pristine *Model
	current  *Model
	warnings []Warning
}

// NewUnitModel returns an unloaded model for the given base name and
// maanim file names.
func NewUnitModel(base string, anims ...string) *UnitModel {
	return &UnitModel{base: base, anims: anims}
}

// Name returns the base file name identifying the model.
func (u *UnitModel) Name() string { return u.base }

// Warnings returns the warnings collected while loading and merging.
func (u *UnitModel) Warnings() []Warning { return u.warnings }

// Current returns the working model state.
func (u *UnitModel) Current() *Model { return u.current }

// SetCurrent replaces the working model state.
func (u *UnitModel) SetCurrent(m *Model) { u.current = m.clone() }

// Load decodes the model's imgcut, mamodel and maanim files. A listed
// maanim that storage does not carry is skipped with a warning; units
// do not all have every action.
func (u *UnitModel) Load(st pack.Store) error {
	m := new(Model)

	if err := readAsset(st, u.base+".imgcut", TextureSchema, &m.Texture); err != nil {
		return err
	}
	if err := readAsset(st, u.base+".mamodel", RigSchema, &m.Rig); err != nil {
		return err
	}
	for _, name := range u.anims {
		if !st.Exists(name) {
			u.warnings = append(u.warnings, warnf(u.base, "animation %s not present, skipped", name))
			continue
		}
		na := NamedAnim{Name: name}
		if err := readAsset(st, name, AnimSchema, &na.Anim); err != nil {
			return err
		}
		m.Anims = append(m.Anims, na)
	}

	u.pristine = m
	u.current = m.clone()
	return nil
}

// Merge applies one mod's recorded model to the current state. It
// reports false when the mod does not touch the model.
func (u *UnitModel) Merge(mod *modfile.Mod) (bool, error) {
	raw, ok := mod.Snapshot(u.base)
	if !ok {
		return false, nil
	}

	incoming := new(Model)
	if err := json.Unmarshal(raw, incoming); err != nil {
		return true, fmt.Errorf("assets: model %s: %w", u.base, err)
	}
	if incoming.Equal(u.pristine) {
		// the mod recorded the base game model untouched
		return true, nil
	}
	u.current = incoming.clone()
	return true, nil
}

// Save re-encodes the current model into its files.
func (u *UnitModel) Save(st pack.Store) error {
	if err := writeAsset(st, u.base+".imgcut", TextureSchema, &u.current.Texture); err != nil {
		return err
	}
	if err := writeAsset(st, u.base+".mamodel", RigSchema, &u.current.Rig); err != nil {
		return err
	}
	for i := range u.current.Anims {
		na := &u.current.Anims[i]
		if err := writeAsset(st, na.Name, AnimSchema, &na.Anim); err != nil {
			return err
		}
	}
	return nil
}

// EncodeSnapshot serializes the current model as a mod snapshot.
func (u *UnitModel) EncodeSnapshot() ([]byte, error) {
	return json.Marshal(u.current)
}

// --------------------------------------------------------------------

func readAsset[R any](st pack.Store, name string, s *schema.Schema[R], rec *R) error {
	text, err := st.ReadTable(name)
	if err != nil {
		return err
	}
	if _, err := schema.ReadInto(s, rec, tabular.Decode(text, assetDelim(name)), 0); err != nil {
		return fmt.Errorf("assets: %s: %w", name, err)
	}
	return nil
}

func writeAsset[R any](st pack.Store, name string, s *schema.Schema[R], rec *R) error {
	t := tabular.New(assetDelim(name))
	if _, err := schema.Write(s, rec, t, 0); err != nil {
		return fmt.Errorf("assets: %s: %w", name, err)
	}
	return st.WriteTable(name, t.Encode())
}

// assetDelim returns the cell delimiter an asset file uses. The item
// shop table is tab-separated; the animation family is comma-separated.
func assetDelim(name string) rune {
	if strings.HasSuffix(name, ".tsv") {
		return '\t'
	}
	return ','
}
