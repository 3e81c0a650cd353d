package assets

import (
	"github.com/cintagram/tbcpatch/schema"
)

// RigPart is one node of the model part tree, stored on a single row.
type RigPart struct {
	ParentID int    `json:"parent_id"`
	UnitID   int    `json:"unit_id"`
	CutID    int    `json:"cut_id"`
	ZDepth   int    `json:"z_depth"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	PivotX   int    `json:"pivot_x"`
	PivotY   int    `json:"pivot_y"`
	ScaleX   int    `json:"scale_x"`
	ScaleY   int    `json:"scale_y"`
	Rotation int    `json:"rotation"`
	Alpha    int    `json:"alpha"`
	Glow     int    `json:"glow"`
	Name     string `json:"name,omitempty"`
}

// RigUnits holds the scale, angle and alpha divisors of the rig.
type RigUnits struct {
	ScaleUnit int `json:"scale_unit"`
	AngleUnit int `json:"angle_unit"`
	AlphaUnit int `json:"alpha_unit"`
}

// RigInts is one row of the trailing integer block. Its meaning is
// opaque to the patcher; it is carried through and merged verbatim.
type RigInts struct {
	Vals    [6]int `json:"vals"`
	Comment string `json:"comment,omitempty"`
}

// Rig is a .mamodel file: two metadata rows, the part count on row 2,
// one part per row, then the units row and the counted ints block.
type Rig struct {
	HeadName string    `json:"head_name"`
	Version  string    `json:"version"`
	Parts    []RigPart `json:"parts"`
	Units    RigUnits  `json:"units"`
	Ints     []RigInts `json:"ints"`
}

var rigPartSchema = schema.New("rig_part", func() *RigPart { return new(RigPart) }).
	Header(1,
		schema.IntField("parent_id", 0, func(p *RigPart) int { return p.ParentID }, func(p *RigPart, v int) { p.ParentID = v }),
		schema.IntField("unit_id", 1, func(p *RigPart) int { return p.UnitID }, func(p *RigPart, v int) { p.UnitID = v }),
		schema.IntField("cut_id", 2, func(p *RigPart) int { return p.CutID }, func(p *RigPart, v int) { p.CutID = v }),
		schema.IntField("z_depth", 3, func(p *RigPart) int { return p.ZDepth }, func(p *RigPart, v int) { p.ZDepth = v }),
		schema.IntField("x", 4, func(p *RigPart) int { return p.X }, func(p *RigPart, v int) { p.X = v }),
		schema.IntField("y", 5, func(p *RigPart) int { return p.Y }, func(p *RigPart, v int) { p.Y = v }),
		schema.IntField("pivot_x", 6, func(p *RigPart) int { return p.PivotX }, func(p *RigPart, v int) { p.PivotX = v }),
		schema.IntField("pivot_y", 7, func(p *RigPart) int { return p.PivotY }, func(p *RigPart, v int) { p.PivotY = v }),
		schema.IntField("scale_x", 8, func(p *RigPart) int { return p.ScaleX }, func(p *RigPart, v int) { p.ScaleX = v }),
		schema.IntField("scale_y", 9, func(p *RigPart) int { return p.ScaleY }, func(p *RigPart, v int) { p.ScaleY = v }),
		schema.IntField("rotation", 10, func(p *RigPart) int { return p.Rotation }, func(p *RigPart, v int) { p.Rotation = v }),
		schema.IntField("alpha", 11, func(p *RigPart) int { return p.Alpha }, func(p *RigPart, v int) { p.Alpha = v }),
		schema.IntField("glow", 12, func(p *RigPart) int { return p.Glow }, func(p *RigPart, v int) { p.Glow = v }),
		schema.StringField("name", 13, func(p *RigPart) string { return p.Name }, func(p *RigPart, v string) { p.Name = v }).Optional(),
	)

var rigUnitsSchema = schema.New("rig_units", func() *RigUnits { return new(RigUnits) }).
	Header(1,
		schema.IntField("scale_unit", 0, func(u *RigUnits) int { return u.ScaleUnit }, func(u *RigUnits, v int) { u.ScaleUnit = v }),
		schema.IntField("angle_unit", 1, func(u *RigUnits) int { return u.AngleUnit }, func(u *RigUnits, v int) { u.AngleUnit = v }),
		schema.IntField("alpha_unit", 2, func(u *RigUnits) int { return u.AlphaUnit }, func(u *RigUnits, v int) { u.AlphaUnit = v }),
	)

var rigIntsSchema = schema.New("rig_ints", func() *RigInts { return new(RigInts) }).
	Header(1,
		intsAt(0), intsAt(1), intsAt(2), intsAt(3), intsAt(4), intsAt(5),
		schema.StringField("comment", 6, func(r *RigInts) string { return r.Comment }, func(r *RigInts, v string) { r.Comment = v }).Optional(),
	)

func intsAt(col int) schema.Field[RigInts] {
	names := [...]string{"int_0", "int_1", "int_2", "int_3", "int_4", "int_5"}
	return schema.IntField(names[col], col,
		func(r *RigInts) int { return r.Vals[col] },
		func(r *RigInts, v int) { r.Vals[col] = v },
	)
}

// RigSchema maps a Rig onto a whole .mamodel table. The parts block
// count lives inside the header on row 2; the ints block carries its
// own count row after the units row.
var RigSchema = schema.AddRepeat(
	schema.AddInline(
		schema.AddRepeat(
			schema.New("rig", func() *Rig { return new(Rig) }).
				Header(3,
					schema.StringField("head_name", 0, func(r *Rig) string { return r.HeadName }, func(r *Rig, v string) { r.HeadName = v }),
					schema.StringField("version", 0, func(r *Rig) string { return r.Version }, func(r *Rig, v string) { r.Version = v }).AtRow(1),
				),
			schema.Repeat[Rig, RigPart]{
				Name:      "parts",
				CountCol:  0,
				CountRow:  2,
				FromStart: true,
				Elem:      rigPartSchema,
				Len:       func(r *Rig) int { return len(r.Parts) },
				At:        func(r *Rig, i int) *RigPart { return &r.Parts[i] },
				Append: func(r *Rig) *RigPart {
					r.Parts = append(r.Parts, RigPart{})
					return &r.Parts[len(r.Parts)-1]
				},
				Clear: func(r *Rig) { r.Parts = nil },
			},
		),
		schema.Inline[Rig, RigUnits]{
			Name: "units",
			Elem: rigUnitsSchema,
			Get:  func(r *Rig) *RigUnits { return &r.Units },
		},
	),
	schema.Repeat[Rig, RigInts]{
		Name:     "ints",
		CountCol: 0,
		CountRow: 0,
		BaseRow:  1,
		Elem:     rigIntsSchema,
		Len:      func(r *Rig) int { return len(r.Ints) },
		At:       func(r *Rig, i int) *RigInts { return &r.Ints[i] },
		Append: func(r *Rig) *RigInts {
			r.Ints = append(r.Ints, RigInts{})
			return &r.Ints[len(r.Ints)-1]
		},
		Clear: func(r *Rig) { r.Ints = nil },
	},
)
