// Package record defines the shapes a searchable record may take and the
// tree utilities the decomposer builds on: kind classification, deep copy and
// lookup by key path.
//
// A record is either text (string) or an object. Objects come in three
// shapes: Object keeps fields in their natural order, while map[string]any
// and map[string]string are walked in sorted key order because Go maps carry
// no order of their own. Lists ([]any, []string, []Object, []map[string]any)
// may appear anywhere below the root.
package record

import (
	"sort"
	"strconv"
)

// Kind classifies a value for traversal.
type Kind int

const (
	// KindOther is any value that is neither text nor a container.
	KindOther Kind = iota
	// KindText is a string leaf.
	KindText
	// KindObject is a keyed container.
	KindObject
	// KindList is an ordered container.
	KindList
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "other"
	}
}

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a record whose fields keep their insertion order.
type Object []Field

// Get returns the value of the first field named key.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Of classifies v.
func Of(v any) Kind {
	switch v.(type) {
	case string:
		return KindText
	case Object, map[string]any, map[string]string:
		return KindObject
	case []any, []string, []Object, []map[string]any:
		return KindList
	default:
		return KindOther
	}
}

// IsSearchable reports whether v may be accepted as a record: text or object.
func IsSearchable(v any) bool {
	k := Of(v)
	return k == KindText || k == KindObject
}

// Fields returns the fields of an object value in traversal order.
// It returns nil for anything that is not an object.
func Fields(v any) []Field {
	switch o := v.(type) {
	case Object:
		return o
	case map[string]any:
		fields := make([]Field, 0, len(o))
		for _, k := range sortedKeys(o) {
			fields = append(fields, Field{Key: k, Value: o[k]})
		}
		return fields
	case map[string]string:
		keys := make([]string, 0, len(o))
		for k := range o {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, 0, len(o))
		for _, k := range keys {
			fields = append(fields, Field{Key: k, Value: o[k]})
		}
		return fields
	default:
		return nil
	}
}

// Elements returns the elements of a list value in order.
// It returns nil for anything that is not a list.
func Elements(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []Object:
		out := make([]any, len(l))
		for i, o := range l {
			out[i] = o
		}
		return out
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

// Lookup resolves path against v one segment at a time. Object segments are
// field names, list segments are decimal indexes. It reports false as soon as
// a segment does not resolve or resolves to nil.
func Lookup(v any, path []string) (any, bool) {
	cur := v
	for _, seg := range path {
		next, ok := child(cur, seg)
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, cur != nil
}

func child(v any, seg string) (any, bool) {
	switch Of(v) {
	case KindObject:
		switch o := v.(type) {
		case Object:
			return o.Get(seg)
		case map[string]any:
			val, ok := o[seg]
			return val, ok
		case map[string]string:
			val, ok := o[seg]
			return val, ok
		}
	case KindList:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 {
			return nil, false
		}
		elems := Elements(v)
		if idx >= len(elems) {
			return nil, false
		}
		return elems[idx], true
	}
	return nil, false
}

// Clone returns a deep copy of v. Containers are copied recursively; every
// other value is returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case Object:
		out := make(Object, len(t))
		for i, f := range t {
			out[i] = Field{Key: f.Key, Value: Clone(f.Value)}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, val := range t {
			out[k] = val
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case []Object:
		out := make([]Object, len(t))
		for i, o := range t {
			out[i] = Clone(o).(Object)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, m := range t {
			out[i] = Clone(m).(map[string]any)
		}
		return out
	default:
		return v
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
