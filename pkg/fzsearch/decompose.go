package fzsearch

import (
	"fmt"

	ferrors "github.com/momingse/fzsearch/internal/errors"
	"github.com/momingse/fzsearch/internal/flatten"
	"github.com/momingse/fzsearch/internal/record"
)

// Object is a record whose fields keep their order.
type Object = record.Object

// Field is one key/value pair of an Object.
type Field = record.Field

// checkRecords returns an error for the first record that is neither text
// nor an object.
func checkRecords(records []any) error {
	for i, rec := range records {
		if !record.IsSearchable(rec) {
			return ferrors.New(ferrors.ErrCodeInvalidRecord,
				fmt.Sprintf("record %d has type %T; records must be strings or objects", i, rec), nil).
				WithDetail("index", fmt.Sprint(i)).
				WithDetail("type", fmt.Sprintf("%T", rec))
		}
	}
	return nil
}

// decompose flattens one accepted record. A bare string is wrapped in a
// single-field object so it lands at depth 0 like any top-level field; key
// selectors do not apply to it.
func decompose(rec any, keys []string) flatten.Fragments {
	if s, ok := rec.(string); ok {
		return flatten.Flatten(record.Object{{Key: "item", Value: s}})
	}
	return flatten.Decompose(rec, keys)
}

func decomposeAll(records []any, keys []string) []flatten.Fragments {
	out := make([]flatten.Fragments, len(records))
	for i, rec := range records {
		out[i] = decompose(rec, keys)
	}
	return out
}
