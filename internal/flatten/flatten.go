// Package flatten decomposes records into text fragments grouped by depth.
//
// Depth 0 holds a bare string record itself, or the text values of an object's
// own fields. Each nested object adds one level. Lists add none: their
// elements sit at the depth the list itself occupies.
//
//	{"title": "React Hooks", "author": {"name": "Ada"}, "tags": ["ui", "js"]}
//
// flattens to
//
//	0: ["React Hooks", "ui", "js"]   (fields in traversal order)
//	1: ["Ada"]
package flatten

import (
	"strings"

	"github.com/momingse/fzsearch/internal/record"
)

// KeySeparator splits a dotted key selector into path segments.
const KeySeparator = "."

// Fragments is a depth-indexed collection of text fragments.
// Fragments[d] lists the fragments found at depth d in traversal order.
type Fragments [][]string

// Count returns the total number of fragments across all depths.
func (f Fragments) Count() int {
	n := 0
	for _, level := range f {
		n += len(level)
	}
	return n
}

func (f *Fragments) add(depth int, text string) {
	for len(*f) <= depth {
		*f = append(*f, nil)
	}
	(*f)[depth] = append((*f)[depth], text)
}

// Flatten walks every text leaf of v. Values that are neither text nor
// containers contribute nothing.
func Flatten(v any) Fragments {
	var out Fragments
	if record.Of(v) == record.KindObject {
		for _, field := range record.Fields(v) {
			walk(field.Value, 0, &out)
		}
		return out
	}
	walk(v, 0, &out)
	return out
}

func walk(v any, depth int, out *Fragments) {
	switch record.Of(v) {
	case record.KindText:
		out.add(depth, v.(string))
	case record.KindObject:
		for _, field := range record.Fields(v) {
			walk(field.Value, depth+1, out)
		}
	case record.KindList:
		for _, elem := range record.Elements(v) {
			walk(elem, depth, out)
		}
	}
}

// FlattenKeys flattens only the values selected by dotted key paths.
//
// Each selector is resolved independently and its sub-value flattened with
// depths relative to that value. A selector that does not resolve contributes
// nothing. Results are merged by depth in selector order; fragments reached
// through overlapping selectors appear once per selector.
func FlattenKeys(v any, keys []string) Fragments {
	var out Fragments
	for _, key := range keys {
		val, ok := record.Lookup(v, SplitKey(key))
		if !ok {
			continue
		}
		if s, isText := val.(string); isText {
			val = record.Object{{Key: "value", Value: s}}
		}
		out = Merge(out, Flatten(val))
	}
	return out
}

// Decompose flattens v, restricted to keys when any are given.
func Decompose(v any, keys []string) Fragments {
	if len(keys) == 0 {
		return Flatten(v)
	}
	return FlattenKeys(v, keys)
}

// Merge concatenates b onto a depth by depth. Neither input is modified.
func Merge(a, b Fragments) Fragments {
	n := max(len(a), len(b))
	if n == 0 {
		return nil
	}
	out := make(Fragments, n)
	for d := 0; d < n; d++ {
		var level []string
		if d < len(a) {
			level = append(level, a[d]...)
		}
		if d < len(b) {
			level = append(level, b[d]...)
		}
		out[d] = level
	}
	return out
}

// SplitKey splits a dotted selector into path segments.
func SplitKey(key string) []string {
	return strings.Split(key, KeySeparator)
}
