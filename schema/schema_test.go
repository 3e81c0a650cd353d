package schema_test

import (
	"errors"

	"github.com/cintagram/tbcpatch/schema"
	"github.com/cintagram/tbcpatch/tabular"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// test record types, shaped like the game's animation files: a fixed
// header with a count field, then variable-stride tracks each carrying
// its own count-prefixed frame list.

type frame struct {
	Frame  int
	Change int
}

type track struct {
	PartID int
	Name   string
	Frames []frame
}

type rig struct {
	Head    string
	Version string
	Tracks  []track
}

var frameSchema = schema.New("frame", func() *frame { return new(frame) }).
	Header(1,
		schema.IntField("frame", 0, func(f *frame) int { return f.Frame }, func(f *frame, v int) { f.Frame = v }),
		schema.IntField("change", 1, func(f *frame) int { return f.Change }, func(f *frame, v int) { f.Change = v }),
	)

var trackSchema = schema.AddRepeat(
	schema.New("track", func() *track { return new(track) }).
		Header(1,
			schema.IntField("part_id", 0, func(t *track) int { return t.PartID }, func(t *track, v int) { t.PartID = v }),
			schema.StringField("name", 1, func(t *track) string { return t.Name }, func(t *track, v string) { t.Name = v }),
		),
	schema.Repeat[track, frame]{
		Name:     "frames",
		CountCol: 0,
		CountRow: 0,
		BaseRow:  1,
		Elem:     frameSchema,
		Len:      func(t *track) int { return len(t.Frames) },
		At:       func(t *track, i int) *frame { return &t.Frames[i] },
		Append:   func(t *track) *frame { t.Frames = append(t.Frames, frame{}); return &t.Frames[len(t.Frames)-1] },
		Clear:    func(t *track) { t.Frames = t.Frames[:0] },
	},
)

var rigSchema = schema.AddRepeat(
	schema.New("rig", func() *rig { return new(rig) }).
		Header(3,
			schema.StringField("head", 0, func(r *rig) string { return r.Head }, func(r *rig, v string) { r.Head = v }),
			schema.StringField("version", 0, func(r *rig) string { return r.Version }, func(r *rig, v string) { r.Version = v }).AtRow(1),
		),
	schema.Repeat[rig, track]{
		Name:      "tracks",
		CountCol:  0,
		CountRow:  2,
		FromStart: true,
		BaseRow:   0,
		Elem:      trackSchema,
		Len:       func(r *rig) int { return len(r.Tracks) },
		At:        func(r *rig, i int) *track { return &r.Tracks[i] },
		Append:    func(r *rig) *track { r.Tracks = append(r.Tracks, track{}); return &r.Tracks[len(r.Tracks)-1] },
		Clear:     func(r *rig) { r.Tracks = r.Tracks[:0] },
	},
)

const rigText = "[rig]\n" + // head
	"2\n" + // version
	"2\n" + // track count
	"0,body\n" + // track 0
	"2\n" + // frame count
	"0,10\n" +
	"5,-10\n" +
	"1,tail\n" + // track 1
	"1\n" + // frame count
	"3,7\n"

var _ = Describe("Read/Write", func() {
	It("should read chained variable-length blocks", func() {
		t := tabular.Decode(rigText, ',')
		rec, next, err := schema.Read(rigSchema, t, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(10))

		Expect(rec.Head).To(Equal("[rig]"))
		Expect(rec.Version).To(Equal("2"))
		Expect(rec.Tracks).To(HaveLen(2))
		Expect(rec.Tracks[0].Name).To(Equal("body"))
		Expect(rec.Tracks[0].Frames).To(Equal([]frame{{0, 10}, {5, -10}}))
		Expect(rec.Tracks[1].PartID).To(Equal(1))
		Expect(rec.Tracks[1].Frames).To(Equal([]frame{{3, 7}}))
	})

	It("should round-trip records field-for-field", func() {
		t := tabular.Decode(rigText, ',')
		rec, _, err := schema.Read(rigSchema, t, 0)
		Expect(err).NotTo(HaveOccurred())

		out := tabular.New(',')
		next, err := schema.Write(rigSchema, rec, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(10))
		Expect(out.Encode()).To(Equal(rigText))

		again, _, err := schema.Read(rigSchema, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(Equal(rec))
	})

	It("should recompute counts from live list lengths", func() {
		t := tabular.Decode(rigText, ',')
		rec, _, err := schema.Read(rigSchema, t, 0)
		Expect(err).NotTo(HaveOccurred())

		rec.Tracks[0].Frames = append(rec.Tracks[0].Frames, frame{9, 1})
		rec.Tracks = rec.Tracks[:1]

		out := tabular.New(',')
		_, err = schema.Write(rigSchema, rec, out, 0)
		Expect(err).NotTo(HaveOccurred())

		cell, err := out.Get(2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(cell.Int()).To(Equal(1)) // track count re-derived

		cell, err = out.Get(4, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(cell.Int()).To(Equal(3)) // frame count re-derived

		again, next, err := schema.Read(rigSchema, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(8))
		Expect(again.Tracks).To(HaveLen(1))
		Expect(again.Tracks[0].Frames).To(HaveLen(3))
	})

	It("should reserve the count row for empty lists", func() {
		rec := &rig{Head: "[rig]", Version: "2"}
		out := tabular.New(',')
		next, err := schema.Write(rigSchema, rec, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(3))
		Expect(out.Encode()).To(Equal("[rig]\n2\n0\n"))

		again, _, err := schema.Read(rigSchema, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Tracks).To(BeEmpty())
	})

	It("should fail with MalformedError on missing rows", func() {
		// track count claims 2 but only one track follows
		t := tabular.Decode("[rig]\n2\n2\n0,body\n0\n", ',')
		_, _, err := schema.Read(rigSchema, t, 0)
		Expect(err).To(HaveOccurred())
		Expect(schema.IsMalformed(err)).To(BeTrue())

		var me *schema.MalformedError
		Expect(errors.As(err, &me)).To(BeTrue())
		Expect(me.Actual).To(Equal(5))
		Expect(me.Expected).To(BeNumerically(">", me.Actual))
	})

	It("should fail on malformed cells", func() {
		t := tabular.Decode("[rig]\n2\nxx\n", ',')
		_, _, err := schema.Read(rigSchema, t, 0)
		Expect(err).To(MatchError(`schema: block tracks count: tabular: cell "xx" is not an integer`))
	})
})

var _ = Describe("optional fields", func() {
	// the game's files carry trailing name columns inconsistently
	optSchema := schema.New("track", func() *track { return new(track) }).
		Header(1,
			schema.IntField("part_id", 0, func(t *track) int { return t.PartID }, func(t *track, v int) { t.PartID = v }),
			schema.StringField("name", 1, func(t *track) string { return t.Name }, func(t *track, v string) { t.Name = v }).Optional(),
		)

	It("should tolerate a missing trailing cell", func() {
		t := tabular.Decode("7\n", ',')
		rec, _, err := schema.Read(optSchema, t, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.PartID).To(Equal(7))
		Expect(rec.Name).To(BeEmpty())
	})

	It("should not write an empty optional cell", func() {
		out := tabular.New(',')
		_, err := schema.Write(optSchema, &track{PartID: 7}, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Encode()).To(Equal("7\n"))
	})

	It("should still read and write present values", func() {
		t := tabular.Decode("7,tail\n", ',')
		rec, _, err := schema.Read(optSchema, t, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.Name).To(Equal("tail"))

		out := tabular.New(',')
		_, err = schema.Write(optSchema, rec, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Encode()).To(Equal("7,tail\n"))
	})

	It("should still fail loudly for required fields", func() {
		t := tabular.Decode("7\n", ',')
		_, _, err := schema.Read(optSchema, t, 3)
		Expect(schema.IsMalformed(err)).To(BeTrue())
	})
})
