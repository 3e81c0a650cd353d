// Package assets declares the game's concrete asset record types, their
// table schemas and their snapshot codecs, and adapts them to the patch
// pipeline.
package assets

import "fmt"

// Warning records a non-fatal condition observed while decoding or
// merging an asset type: identity conflicts in unvalidated data, or
// attributes recorded by a mod that the current schema no longer knows.
type Warning struct {
	Asset  string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Asset, w.Detail)
}

func warnf(asset, format string, args ...any) Warning {
	return Warning{Asset: asset, Detail: fmt.Sprintf(format, args...)}
}
