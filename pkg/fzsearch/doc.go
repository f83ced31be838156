// Package fzsearch ranks strings and structured records by how well they
// fuzzily match a query.
//
// Each record is decomposed into text fragments grouped by nesting depth.
// Every fragment is scored against the query by local alignment, depth
// subtotals are weighted by LevelPenalty^depth and summed, and records scoring
// worse than DropoutRate times the best score are dropped. Survivors are
// returned best first.
//
// # Scores
//
// Scores are costs: lower is better and 0 means nothing matched. A perfect
// five-letter match costs -50 with the default functions.
//
// # Usage
//
// One-shot search:
//
//	results, err := fzsearch.Search("co re mis", []any{
//	    "Debounce and Throttle",
//	    "Common React Mistakes",
//	})
//	// results[0].Record == "Common React Mistakes"
//
// Reusable engine over structured records:
//
//	engine, err := fzsearch.New(posts,
//	    fzsearch.WithKeys("title", "author.name"),
//	    fzsearch.WithShowScore(true),
//	    fzsearch.WithLevelPenalty(0.5),
//	)
//	results := engine.Search("react")
//
// Records are strings or objects: record.Object (ordered fields),
// map[string]any or map[string]string, with nested objects and lists of any
// of these below the root.
//
// # Thread Safety
//
// An Engine is safe for concurrent use. Searches run in parallel with each
// other; SetRecords, AddRecords and SetMaxResults wait for them.
package fzsearch
