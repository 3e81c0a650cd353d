package assets_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cintagram/tbcpatch/assets"
	"github.com/cintagram/tbcpatch/modfile"
	"github.com/cintagram/tbcpatch/schema"
	"github.com/cintagram/tbcpatch/tabular"
)

const imgcutFixture = "[imgcut]\n" +
	"0.0.1\n" +
	"u001.png\n" +
	"2\n" +
	"0,0,10,12,head\n" +
	"5,5,20,24\n"

const mamodelFixture = "[modelanim:model]\n" +
	"3\n" +
	"2\n" +
	"-1,0,0,0,0,0,0,0,1000,1000,0,1000,0,body\n" +
	"0,0,1,1,10,20,5,5,1000,1000,0,1000,0\n" +
	"1000,3600,1000\n" +
	"1\n" +
	"100,200,300,400,500,600,stat\n"

const maanimFixture = "[modelanim:animation]\n" +
	"1\n" +
	"2\n" +
	"0,0,0,0,0,walk\n" +
	"2\n" +
	"0,50,0,0\n" +
	"10,-50,1,2\n" +
	"1,2,1,0,100\n" +
	"0\n"

var _ = Describe("Texture", func() {
	It("should decode metadata and rects", func() {
		t := tabular.Decode(imgcutFixture, ',')
		tex, next, err := schema.Read(assets.TextureSchema, t, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(6))

		Expect(tex.HeadName).To(Equal("[imgcut]"))
		Expect(tex.Version).To(Equal("0.0.1"))
		Expect(tex.ImgName).To(Equal("u001.png"))
		Expect(tex.Rects).To(HaveLen(2))
		Expect(tex.Rects[0]).To(Equal(assets.Rect{X: 0, Y: 0, W: 10, H: 12, Name: "head"}))
		Expect(tex.Rects[1].Name).To(BeEmpty(), "trailing name column is optional")
	})

	It("should round-trip byte for byte", func() {
		tex, _, err := schema.Read(assets.TextureSchema, tabular.Decode(imgcutFixture, ','), 0)
		Expect(err).NotTo(HaveOccurred())

		out := tabular.New(',')
		_, err = schema.Write(assets.TextureSchema, tex, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Encode()).To(Equal(imgcutFixture))
	})

	It("should recompute the rect count on write", func() {
		tex, _, err := schema.Read(assets.TextureSchema, tabular.Decode(imgcutFixture, ','), 0)
		Expect(err).NotTo(HaveOccurred())

		tex.Rects = append(tex.Rects, assets.Rect{X: 1, Y: 2, W: 3, H: 4})
		out := tabular.New(',')
		_, err = schema.Write(assets.TextureSchema, tex, out, 0)
		Expect(err).NotTo(HaveOccurred())

		count, err := out.Ensure(3, 0).Int()
		Expect(err).NotTo(HaveOccurred())
		Expect(count).To(Equal(3))
	})
})

var _ = Describe("Rig", func() {
	It("should decode parts, units and ints", func() {
		rig, next, err := schema.Read(assets.RigSchema, tabular.Decode(mamodelFixture, ','), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(8))

		Expect(rig.Parts).To(HaveLen(2))
		Expect(rig.Parts[0].ParentID).To(Equal(-1))
		Expect(rig.Parts[0].Name).To(Equal("body"))
		Expect(rig.Parts[1].Name).To(BeEmpty())
		Expect(rig.Units).To(Equal(assets.RigUnits{ScaleUnit: 1000, AngleUnit: 3600, AlphaUnit: 1000}))
		Expect(rig.Ints).To(HaveLen(1))
		Expect(rig.Ints[0].Vals).To(Equal([6]int{100, 200, 300, 400, 500, 600}))
		Expect(rig.Ints[0].Comment).To(Equal("stat"))
	})

	It("should round-trip byte for byte", func() {
		rig, _, err := schema.Read(assets.RigSchema, tabular.Decode(mamodelFixture, ','), 0)
		Expect(err).NotTo(HaveOccurred())

		out := tabular.New(',')
		_, err = schema.Write(assets.RigSchema, rig, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Encode()).To(Equal(mamodelFixture))
	})
})

var _ = Describe("Anim", func() {
	It("should chain variable-stride tracks", func() {
		anim, next, err := schema.Read(assets.AnimSchema, tabular.Decode(maanimFixture, ','), 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(9))

		Expect(anim.Tracks).To(HaveLen(2))
		Expect(anim.Tracks[0].Name).To(Equal("walk"))
		Expect(anim.Tracks[0].Frames).To(HaveLen(2))
		Expect(anim.Tracks[0].Frames[1]).To(Equal(assets.Frame{Frame: 10, Change: -50, EaseMode: 1, EasePower: 2}))
		Expect(anim.Tracks[1].MaxV).To(Equal(100))
		Expect(anim.Tracks[1].Frames).To(BeEmpty(), "the count row is still present")
	})

	It("should round-trip byte for byte", func() {
		anim, _, err := schema.Read(assets.AnimSchema, tabular.Decode(maanimFixture, ','), 0)
		Expect(err).NotTo(HaveOccurred())

		out := tabular.New(',')
		_, err = schema.Write(assets.AnimSchema, anim, out, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Encode()).To(Equal(maanimFixture))
	})

	It("should fail on truncated keyframe runs", func() {
		truncated := "[modelanim:animation]\n1\n1\n0,0,0,0,0\n3\n0,50,0,0\n"
		_, _, err := schema.Read(assets.AnimSchema, tabular.Decode(truncated, ','), 0)
		Expect(schema.IsMalformed(err)).To(BeTrue())
	})
})

var _ = Describe("UnitModel", func() {
	var store *memStore
	var model *assets.UnitModel

	load := func() *assets.UnitModel {
		m := assets.NewUnitModel("u001", "u001_walk.maanim", "u001_idle.maanim")
		ExpectWithOffset(1, m.Load(store)).To(Succeed())
		return m
	}

	BeforeEach(func() {
		store = newMemStore(map[string]string{
			"u001.imgcut":       imgcutFixture,
			"u001.mamodel":      mamodelFixture,
			"u001_walk.maanim":  maanimFixture,
			assets.ItemShopFile: shopFixture,
		})
		model = load()
	})

	It("should load every present file and warn about absent animations", func() {
		cur := model.Current()
		Expect(cur.Texture.ImgName).To(Equal("u001.png"))
		Expect(cur.Rig.Parts).To(HaveLen(2))
		Expect(cur.Anims).To(HaveLen(1))
		Expect(cur.Anims[0].Name).To(Equal("u001_walk.maanim"))

		Expect(model.Warnings()).To(HaveLen(1))
		Expect(model.Warnings()[0].String()).To(ContainSubstring("u001_idle.maanim"))
	})

	It("should save all files back byte for byte", func() {
		out := newMemStore(nil)
		Expect(model.Save(out)).To(Succeed())
		Expect(out.files["u001.imgcut"]).To(Equal(imgcutFixture))
		Expect(out.files["u001.mamodel"]).To(Equal(mamodelFixture))
		Expect(out.files["u001_walk.maanim"]).To(Equal(maanimFixture))
	})

	Describe("merging", func() {
		exportMod := func(name string, edit func(*assets.Model)) *modfile.Mod {
			editor := load()
			if edit != nil {
				edit(editor.Current())
			}
			data, err := editor.EncodeSnapshot()
			ExpectWithOffset(1, err).NotTo(HaveOccurred())

			mod := modfile.New(modfile.Meta{Name: name})
			mod.SetSnapshot("u001", data)
			return mod
		}

		It("should ignore mods that do not touch the model", func() {
			touched, err := model.Merge(modfile.New(modfile.Meta{Name: "other"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(touched).To(BeFalse())
		})

		It("should replace the model wholesale when a mod changed it", func() {
			mod := exportMod("bigger", func(m *assets.Model) {
				m.Rig.Parts[1].ScaleX = 2000
				m.Anims[0].Anim.Tracks[0].Frames[0].Change = 99
			})

			touched, err := model.Merge(mod)
			Expect(err).NotTo(HaveOccurred())
			Expect(touched).To(BeTrue())
			Expect(model.Current().Rig.Parts[1].ScaleX).To(Equal(2000))
			Expect(model.Current().Anims[0].Anim.Tracks[0].Frames[0].Change).To(Equal(99))
		})

		It("should not let a pristine recording revert an earlier mod", func() {
			first := exportMod("bigger", func(m *assets.Model) {
				m.Rig.Parts[1].ScaleX = 2000
			})
			second := exportMod("untouched", nil)

			_, err := model.Merge(first)
			Expect(err).NotTo(HaveOccurred())
			touched, err := model.Merge(second)
			Expect(err).NotTo(HaveOccurred())
			Expect(touched).To(BeTrue())

			Expect(model.Current().Rig.Parts[1].ScaleX).To(Equal(2000))
		})

		It("should fail on malformed snapshots", func() {
			mod := modfile.New(modfile.Meta{Name: "broken"})
			mod.SetSnapshot("u001", []byte("not json"))
			_, err := model.Merge(mod)
			Expect(err).To(HaveOccurred())
		})
	})
})
