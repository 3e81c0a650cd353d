package assets

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cintagram/tbcpatch/schema"
)

// Mod snapshots are persisted as JSON objects keyed by schema field
// names. Decoding is driven by the same schema descriptors as the table
// codec, so an attribute recorded by a mod that the current schema no
// longer carries is detected and ignored rather than failing the merge:
// compatibility across schema versions is best-effort.

// fieldMap captures a record's scalar fields into a JSON-ready map.
func fieldMap[R any](s *schema.Schema[R], rec *R) map[string]any {
	obj := make(map[string]any, len(s.Fields()))
	for _, f := range s.Fields() {
		switch v := f.Get(rec); v.Kind() {
		case schema.Int:
			obj[f.Name] = v.Int()
		case schema.Bool:
			obj[f.Name] = v.Bool()
		default:
			obj[f.Name] = v.Str()
		}
	}
	return obj
}

// applyFields sets a record's scalar fields from a decoded JSON object,
// consuming the keys it recognizes. Keys left in obj afterwards belong
// to nested lists or to drifted attributes; the caller decides.
func applyFields[R any](s *schema.Schema[R], rec *R, obj map[string]json.RawMessage) error {
	for _, f := range s.Fields() {
		raw, ok := obj[f.Name]
		if !ok {
			continue
		}
		delete(obj, f.Name)

		switch f.Kind {
		case schema.Int:
			var n int
			if err := json.Unmarshal(raw, &n); err != nil {
				return fmt.Errorf("assets: field %s: %w", f.Name, err)
			}
			f.Set(rec, schema.IntValue(n))
		case schema.Bool:
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return fmt.Errorf("assets: field %s: %w", f.Name, err)
			}
			f.Set(rec, schema.BoolValue(b))
		default:
			var str string
			if err := json.Unmarshal(raw, &str); err != nil {
				return fmt.Errorf("assets: field %s: %w", f.Name, err)
			}
			f.Set(rec, schema.StringValue(str))
		}
	}
	return nil
}

// decodeObject unmarshals one JSON object into its raw members.
func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("assets: %w", err)
	}
	return obj, nil
}

// drained returns the keys still left in obj after every known member
// was consumed, i.e. the drifted attribute names.
func drained(obj map[string]json.RawMessage) []string {
	if len(obj) == 0 {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// take consumes a named member from obj, returning nil when absent.
func take(obj map[string]json.RawMessage, key string) json.RawMessage {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	delete(obj, key)
	return raw
}
