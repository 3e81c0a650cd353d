package assets

import (
	"github.com/cintagram/tbcpatch/schema"
)

// Rect is one sprite cut-out inside the sheet image.
type Rect struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	W    int    `json:"w"`
	H    int    `json:"h"`
	Name string `json:"name,omitempty"`
}

// Texture is the cut-out table of one sprite sheet, stored as a
// comma-delimited .imgcut file: three metadata rows, the rect count on
// row 3 and one rect per row from row 4 on.
type Texture struct {
	HeadName string `json:"head_name"`
	Version  string `json:"version"`
	ImgName  string `json:"img_name"`
	Rects    []Rect `json:"rects"`
}

var rectSchema = schema.New("rect", func() *Rect { return new(Rect) }).
	Header(1,
		schema.IntField("x", 0, func(r *Rect) int { return r.X }, func(r *Rect, v int) { r.X = v }),
		schema.IntField("y", 1, func(r *Rect) int { return r.Y }, func(r *Rect, v int) { r.Y = v }),
		schema.IntField("w", 2, func(r *Rect) int { return r.W }, func(r *Rect, v int) { r.W = v }),
		schema.IntField("h", 3, func(r *Rect) int { return r.H }, func(r *Rect, v int) { r.H = v }),
		schema.StringField("name", 4, func(r *Rect) string { return r.Name }, func(r *Rect, v string) { r.Name = v }).Optional(),
	)

// TextureSchema maps a Texture onto a whole .imgcut table.
var TextureSchema = schema.AddRepeat(
	schema.New("texture", func() *Texture { return new(Texture) }).
		Header(3,
			schema.StringField("head_name", 0, func(t *Texture) string { return t.HeadName }, func(t *Texture, v string) { t.HeadName = v }),
			schema.StringField("version", 0, func(t *Texture) string { return t.Version }, func(t *Texture, v string) { t.Version = v }).AtRow(1),
			schema.StringField("img_name", 0, func(t *Texture) string { return t.ImgName }, func(t *Texture, v string) { t.ImgName = v }).AtRow(2),
		),
	schema.Repeat[Texture, Rect]{
		Name:     "rects",
		CountCol: 0,
		CountRow: 0,
		BaseRow:  1,
		Elem:     rectSchema,
		Len:       func(t *Texture) int { return len(t.Rects) },
		At:        func(t *Texture, i int) *Rect { return &t.Rects[i] },
		Append: func(t *Texture) *Rect {
			t.Rects = append(t.Rects, Rect{})
			return &t.Rects[len(t.Rects)-1]
		},
		Clear: func(t *Texture) { t.Rects = nil },
	},
)
