package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/cintagram/tbcpatch/merge"
	"github.com/cintagram/tbcpatch/modfile"
	"github.com/cintagram/tbcpatch/pack"
	"github.com/cintagram/tbcpatch/schema"
	"github.com/cintagram/tbcpatch/snapshot"
	"github.com/cintagram/tbcpatch/tabular"
)

// ItemShopFile is the table holding the item shop.
const ItemShopFile = "itemShopData.tsv"

const itemShopHeader = "itemID\tgatyaitemID\tcount\tprice\tdrawItemValue\tcategoryName\trect"

// ShopItem is one purchasable slot in the item shop. The shop id is the
// slot's display position, so the type has positional semantics:
// removing a slot shifts every later slot up by one.
type ShopItem struct {
	ShopID        int
	GatyaItemID   int
	Count         int
	Price         int
	DrawItemValue bool
	CategoryName  string
	RectID        int
}

// ShopItemSchema maps a ShopItem onto one table row.
var ShopItemSchema = schema.New("shop_item", func() *ShopItem { return new(ShopItem) }).
	Header(1,
		schema.IntField("shop_id", 0, func(i *ShopItem) int { return i.ShopID }, func(i *ShopItem, v int) { i.ShopID = v }),
		schema.IntField("gatya_item_id", 1, func(i *ShopItem) int { return i.GatyaItemID }, func(i *ShopItem, v int) { i.GatyaItemID = v }),
		schema.IntField("count", 2, func(i *ShopItem) int { return i.Count }, func(i *ShopItem, v int) { i.Count = v }),
		schema.IntField("price", 3, func(i *ShopItem) int { return i.Price }, func(i *ShopItem, v int) { i.Price = v }),
		schema.BoolField("draw_item_value", 4, func(i *ShopItem) bool { return i.DrawItemValue }, func(i *ShopItem, v bool) { i.DrawItemValue = v }),
		schema.StringField("category_name", 5, func(i *ShopItem) string { return i.CategoryName }, func(i *ShopItem, v string) { i.CategoryName = v }),
		schema.IntField("rect_id", 6, func(i *ShopItem) int { return i.RectID }, func(i *ShopItem, v int) { i.RectID = v }),
	)

// shop_id is the identity key and excluded from the merge.
var shopItemAttrs = merge.FieldAttrs(ShopItemSchema, "shop_id")

func cloneShopItem(i *ShopItem) *ShopItem { c := *i; return &c }

func shopKey(i *ShopItem) *int { return &i.ShopID }

// --------------------------------------------------------------------

// ItemShop adapts the item shop to the patch pipeline. It holds the
// pristine snapshot decoded from storage and the current working
// snapshot accumulating mod edits.
type ItemShop struct {
	pristine *snapshot.Ordered[ShopItem]
	current  *snapshot.Ordered[ShopItem]
	header   string
	warnings []Warning
}

// NewItemShop returns an empty, unloaded item shop.
func NewItemShop() *ItemShop {
	return &ItemShop{
		pristine: snapshot.NewOrdered(shopKey),
		current:  snapshot.NewOrdered(shopKey),
		header:   itemShopHeader,
	}
}

// Name returns the asset table name.
func (s *ItemShop) Name() string { return ItemShopFile }

// Warnings returns the warnings collected while loading and merging.
func (s *ItemShop) Warnings() []Warning { return s.warnings }

// Load decodes the pristine snapshot from storage and starts the
// current snapshot as an independent copy of it.
func (s *ItemShop) Load(st pack.Store) error {
	text, err := st.ReadTable(ItemShopFile)
	if err != nil {
		return err
	}
	t := tabular.Decode(text, '\t')

	pristine := snapshot.NewOrdered(shopKey)
	// the first line is a header by convention of this asset type
	for row := 1; row < t.NumRows(); row++ {
		if t.RowLen(row) < 7 {
			continue // ignore ragged trailer lines
		}
		rec, _, err := schema.Read(ShopItemSchema, t, row)
		if err != nil {
			return err
		}
		if pristine.Set(rec.ShopID, rec) {
			s.warnings = append(s.warnings, warnf(ItemShopFile, "duplicate shop id %d, last read wins", rec.ShopID))
		}
	}

	if t.RowLen(0) > 0 {
		s.header = headerLine(t)
	}
	s.pristine = pristine
	s.current = pristine.Clone(cloneShopItem)
	return nil
}

// Merge applies one mod's recorded shop snapshot to the current state.
// It reports false when the mod does not touch the shop.
func (s *ItemShop) Merge(mod *modfile.Mod) (bool, error) {
	raw, ok := mod.Snapshot(ItemShopFile)
	if !ok {
		return false, nil
	}

	incoming, warns, err := s.decodeSnapshot(raw)
	if err != nil {
		return true, err
	}
	s.warnings = append(s.warnings, warns...)

	merge.Snapshots(s.current.Snapshot, s.pristine.Snapshot, incoming.Snapshot, shopItemAttrs, cloneShopItem)
	return true, nil
}

// Save re-encodes the current snapshot and hands it to storage.
func (s *ItemShop) Save(st pack.Store) error {
	t := tabular.New('\t')
	t.AppendRow(s.header)

	ids := s.current.IDs()
	sort.Ints(ids)
	row := 1
	for _, id := range ids {
		rec, _ := s.current.Get(id)
		next, err := schema.Write(ShopItemSchema, rec, t, row)
		if err != nil {
			return err
		}
		row = next
	}
	return st.WriteTable(ItemShopFile, t.Encode())
}

// headerLine re-joins row 0 for later re-encoding.
func headerLine(t *tabular.Table) string {
	var line string
	for col := 0; col < t.RowLen(0); col++ {
		cell, err := t.Get(0, col)
		if err != nil {
			break
		}
		if col > 0 {
			line += "\t"
		}
		line += cell.String()
	}
	return line
}

// --------------------------------------------------------------------
// editor surface, operating on the in-memory current snapshot

// Get returns the current record in slot id.
func (s *ItemShop) Get(id int) (*ShopItem, bool) { return s.current.Get(id) }

// Set stores rec in slot id, replacing any existing record.
func (s *ItemShop) Set(id int, rec *ShopItem) { s.current.Set(id, rec) }

// Insert places rec at slot id, shifting later slots down.
func (s *ItemShop) Insert(id int, rec *ShopItem) { s.current.Insert(id, rec) }

// Remove deletes slot id, shifting later slots up.
func (s *ItemShop) Remove(id int) bool { return s.current.Remove(id) }

// Len returns the number of slots.
func (s *ItemShop) Len() int { return s.current.Len() }

// --------------------------------------------------------------------
// snapshot codec

// EncodeSnapshot serializes the current state as a mod snapshot.
func (s *ItemShop) EncodeSnapshot() ([]byte, error) {
	items := make(map[string]any, s.current.Len())
	for _, id := range s.current.IDs() {
		rec, _ := s.current.Get(id)
		items[strconv.Itoa(id)] = fieldMap(ShopItemSchema, rec)
	}
	return json.Marshal(map[string]any{"items": items})
}

// decodeSnapshot parses a mod's shop snapshot. Records are seeded from
// the pristine slot of the same id, so a snapshot that records only
// some attributes leaves the rest at their base-game values and the
// merge treats them as unchanged.
func (s *ItemShop) decodeSnapshot(data []byte) (*snapshot.Ordered[ShopItem], []Warning, error) {
	obj, err := decodeObject(data)
	if err != nil {
		return nil, nil, err
	}

	rawItems := take(obj, "items")
	if rawItems == nil {
		return nil, nil, errors.New("assets: shop snapshot has no items")
	}

	var itemObjs map[string]json.RawMessage
	if err := json.Unmarshal(rawItems, &itemObjs); err != nil {
		return nil, nil, fmt.Errorf("assets: %w", err)
	}

	keys := make([]string, 0, len(itemObjs))
	for k := range itemObjs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warns []Warning
	snap := snapshot.NewOrdered(shopKey)
	for _, key := range keys {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, nil, fmt.Errorf("assets: shop id %q: %w", key, err)
		}

		itemObj, err := decodeObject(itemObjs[key])
		if err != nil {
			return nil, nil, err
		}
		rec := &ShopItem{ShopID: id}
		if base, ok := s.pristine.Get(id); ok {
			rec = cloneShopItem(base)
		}
		if err := applyFields(ShopItemSchema, rec, itemObj); err != nil {
			return nil, nil, err
		}
		for _, name := range drained(itemObj) {
			warns = append(warns, warnf(ItemShopFile, "unknown attribute %q on shop id %d ignored", name, id))
		}
		snap.Set(id, rec)
	}
	return snap, warns, nil
}
