package assets

import (
	"github.com/cintagram/tbcpatch/schema"
)

// Frame is one keyframe of an animation track.
type Frame struct {
	Frame     int `json:"frame"`
	Change    int `json:"change"`
	EaseMode  int `json:"ease_mode"`
	EasePower int `json:"ease_power"`
}

// Track animates one attribute of one model part. A track occupies a
// variable number of rows: its own header row, the keyframe count row
// and one keyframe per row, so tracks chain off each other rather than
// sitting at fixed offsets.
type Track struct {
	ModelID int     `json:"model_id"`
	ModType int     `json:"mod_type"`
	Loop    int     `json:"loop"`
	MinV    int     `json:"min_value"`
	MaxV    int     `json:"max_value"`
	Name    string  `json:"name,omitempty"`
	Frames  []Frame `json:"frames"`
}

// Anim is a .maanim file: two metadata rows, the track count on row 2
// and the chained tracks from row 3 on.
type Anim struct {
	HeadName string  `json:"head_name"`
	Version  string  `json:"version"`
	Tracks   []Track `json:"tracks"`
}

var frameSchema = schema.New("frame", func() *Frame { return new(Frame) }).
	Header(1,
		schema.IntField("frame", 0, func(f *Frame) int { return f.Frame }, func(f *Frame, v int) { f.Frame = v }),
		schema.IntField("change", 1, func(f *Frame) int { return f.Change }, func(f *Frame, v int) { f.Change = v }),
		schema.IntField("ease_mode", 2, func(f *Frame) int { return f.EaseMode }, func(f *Frame, v int) { f.EaseMode = v }),
		schema.IntField("ease_power", 3, func(f *Frame) int { return f.EasePower }, func(f *Frame, v int) { f.EasePower = v }),
	)

var trackSchema = schema.AddRepeat(
	schema.New("track", func() *Track { return new(Track) }).
		Header(1,
			schema.IntField("model_id", 0, func(t *Track) int { return t.ModelID }, func(t *Track, v int) { t.ModelID = v }),
			schema.IntField("mod_type", 1, func(t *Track) int { return t.ModType }, func(t *Track, v int) { t.ModType = v }),
			schema.IntField("loop", 2, func(t *Track) int { return t.Loop }, func(t *Track, v int) { t.Loop = v }),
			schema.IntField("min_value", 3, func(t *Track) int { return t.MinV }, func(t *Track, v int) { t.MinV = v }),
			schema.IntField("max_value", 4, func(t *Track) int { return t.MaxV }, func(t *Track, v int) { t.MaxV = v }),
			schema.StringField("name", 5, func(t *Track) string { return t.Name }, func(t *Track, v string) { t.Name = v }).Optional(),
		),
	schema.Repeat[Track, Frame]{
		Name:     "frames",
		CountCol: 0,
		CountRow: 0,
		BaseRow:  1,
		Elem:     frameSchema,
		Len:      func(t *Track) int { return len(t.Frames) },
		At:       func(t *Track, i int) *Frame { return &t.Frames[i] },
		Append: func(t *Track) *Frame {
			t.Frames = append(t.Frames, Frame{})
			return &t.Frames[len(t.Frames)-1]
		},
		Clear: func(t *Track) { t.Frames = nil },
	},
)

// AnimSchema maps an Anim onto a whole .maanim table. The track count
// lives inside the header on row 2 while the tracks themselves are
// variable-stride, so decoding walks them cursor to cursor.
var AnimSchema = schema.AddRepeat(
	schema.New("anim", func() *Anim { return new(Anim) }).
		Header(3,
			schema.StringField("head_name", 0, func(a *Anim) string { return a.HeadName }, func(a *Anim, v string) { a.HeadName = v }),
			schema.StringField("version", 0, func(a *Anim) string { return a.Version }, func(a *Anim, v string) { a.Version = v }).AtRow(1),
		),
	schema.Repeat[Anim, Track]{
		Name:      "tracks",
		CountCol:  0,
		CountRow:  2,
		FromStart: true,
		Elem:      trackSchema,
		Len:       func(a *Anim) int { return len(a.Tracks) },
		At:        func(a *Anim, i int) *Track { return &a.Tracks[i] },
		Append: func(a *Anim) *Track {
			a.Tracks = append(a.Tracks, Track{})
			return &a.Tracks[len(a.Tracks)-1]
		},
		Clear: func(a *Anim) { a.Tracks = nil },
	},
)
