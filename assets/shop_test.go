package assets_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cintagram/tbcpatch/assets"
	"github.com/cintagram/tbcpatch/modfile"
)

const shopFixture = "itemID\tgatyaitemID\tcount\tprice\tdrawItemValue\tcategoryName\trect\n" +
	"0\t22\t1\t30\t1\tcatfood\t0\n" +
	"1\t30\t5\t110\t0\tbattle\t4\n" +
	"2\t31\t3\t100\t1\tbattle\t5\n"

var _ = Describe("ItemShop", func() {
	var store *memStore
	var shop *assets.ItemShop

	BeforeEach(func() {
		store = newMemStore(map[string]string{
			assets.ItemShopFile: shopFixture,
		})
		shop = assets.NewItemShop()
		Expect(shop.Load(store)).To(Succeed())
	})

	It("should decode every slot", func() {
		Expect(shop.Len()).To(Equal(3))

		rec, ok := shop.Get(1)
		Expect(ok).To(BeTrue())
		Expect(rec.GatyaItemID).To(Equal(30))
		Expect(rec.Price).To(Equal(110))
		Expect(rec.DrawItemValue).To(BeFalse())
		Expect(rec.CategoryName).To(Equal("battle"))
	})

	It("should round-trip byte for byte", func() {
		Expect(shop.Save(store)).To(Succeed())
		Expect(store.files[assets.ItemShopFile]).To(Equal(shopFixture))
	})

	It("should warn on duplicate slot ids", func() {
		store.files[assets.ItemShopFile] = shopFixture +
			"2\t99\t1\t1\t0\tdupe\t0\n"

		dup := assets.NewItemShop()
		Expect(dup.Load(store)).To(Succeed())
		Expect(dup.Len()).To(Equal(3))
		Expect(dup.Warnings()).To(HaveLen(1))
		Expect(dup.Warnings()[0].String()).To(ContainSubstring("duplicate shop id 2"))

		rec, _ := dup.Get(2)
		Expect(rec.GatyaItemID).To(Equal(99), "last read wins")
	})

	Describe("merging", func() {
		newMod := func(name, snapshot string) *modfile.Mod {
			mod := modfile.New(modfile.Meta{Name: name})
			mod.SetSnapshot(assets.ItemShopFile, []byte(snapshot))
			return mod
		}

		It("should ignore mods that do not touch the shop", func() {
			touched, err := shop.Merge(modfile.New(modfile.Meta{Name: "other"}))
			Expect(err).NotTo(HaveOccurred())
			Expect(touched).To(BeFalse())
		})

		It("should apply only the fields a mod changed", func() {
			mod := newMod("cheap", `{"items":{"1":{
				"gatya_item_id":30,"count":5,"price":55,
				"draw_item_value":false,"category_name":"battle","rect_id":4}}}`)

			touched, err := shop.Merge(mod)
			Expect(err).NotTo(HaveOccurred())
			Expect(touched).To(BeTrue())

			rec, _ := shop.Get(1)
			Expect(rec.Price).To(Equal(55))
			Expect(rec.Count).To(Equal(5), "unchanged fields stay")

			other, _ := shop.Get(0)
			Expect(other.Price).To(Equal(30), "slots the mod omitted stay")
		})

		It("should not revert an earlier mod's edit", func() {
			first := newMod("cheap", `{"items":{"1":{"price":55}}}`)
			second := newMod("recolor", `{"items":{"1":{
				"gatya_item_id":30,"count":5,"price":110,
				"draw_item_value":false,"category_name":"battle","rect_id":4}}}`)

			_, err := shop.Merge(first)
			Expect(err).NotTo(HaveOccurred())
			_, err = shop.Merge(second)
			Expect(err).NotTo(HaveOccurred())

			rec, _ := shop.Get(1)
			Expect(rec.Price).To(Equal(55), "second mod recorded the pristine price")
		})

		It("should take new slots wholesale", func() {
			mod := newMod("more", `{"items":{"3":{
				"gatya_item_id":40,"count":1,"price":9,
				"draw_item_value":true,"category_name":"extra","rect_id":7}}}`)

			_, err := shop.Merge(mod)
			Expect(err).NotTo(HaveOccurred())
			Expect(shop.Len()).To(Equal(4))

			rec, ok := shop.Get(3)
			Expect(ok).To(BeTrue())
			Expect(rec.ShopID).To(Equal(3))
			Expect(rec.CategoryName).To(Equal("extra"))
		})

		It("should warn about attributes it does not know", func() {
			mod := newMod("future", `{"items":{"1":{"price":55,"sparkle":3}}}`)

			_, err := shop.Merge(mod)
			Expect(err).NotTo(HaveOccurred())
			Expect(shop.Warnings()).To(HaveLen(1))
			Expect(shop.Warnings()[0].String()).To(ContainSubstring(`unknown attribute "sparkle"`))

			rec, _ := shop.Get(1)
			Expect(rec.Price).To(Equal(55), "known attributes still apply")
		})

		It("should fail on snapshots without an items member", func() {
			_, err := shop.Merge(newMod("broken", `{"slots":{}}`))
			Expect(err).To(MatchError(ContainSubstring("no items")))
		})

		It("should fail on non-numeric slot keys", func() {
			_, err := shop.Merge(newMod("broken", `{"items":{"first":{}}}`))
			Expect(err).To(MatchError(ContainSubstring(`shop id "first"`)))
		})
	})

	Describe("editing", func() {
		It("should shift later slots up on removal", func() {
			Expect(shop.Remove(0)).To(BeTrue())
			Expect(shop.Len()).To(Equal(2))

			rec, ok := shop.Get(0)
			Expect(ok).To(BeTrue())
			Expect(rec.GatyaItemID).To(Equal(30))
			Expect(rec.ShopID).To(Equal(0))
		})

		It("should shift later slots down on insertion", func() {
			shop.Insert(1, &assets.ShopItem{GatyaItemID: 77, Price: 5, CategoryName: "new"})
			Expect(shop.Len()).To(Equal(4))

			rec, _ := shop.Get(1)
			Expect(rec.GatyaItemID).To(Equal(77))

			moved, _ := shop.Get(2)
			Expect(moved.GatyaItemID).To(Equal(30))
			Expect(moved.ShopID).To(Equal(2))
		})

		It("should export an importable snapshot", func() {
			rec, _ := shop.Get(1)
			rec.Price = 55

			data, err := shop.EncodeSnapshot()
			Expect(err).NotTo(HaveOccurred())

			mod := modfile.New(modfile.Meta{Name: "exported"})
			mod.SetSnapshot(assets.ItemShopFile, data)

			fresh := assets.NewItemShop()
			Expect(fresh.Load(store)).To(Succeed())
			_, err = fresh.Merge(mod)
			Expect(err).NotTo(HaveOccurred())

			got, _ := fresh.Get(1)
			Expect(got.Price).To(Equal(55))
		})
	})
})
