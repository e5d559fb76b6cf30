// Package metadata provides typed attribute documents and the filter model
// used for structured catalog predicates.
//
// # Values
//
//   - String: metadata.String("canon")
//   - Int: metadata.Int(400)
//   - Float: metadata.Float(2.8)
//   - Bool: metadata.Bool(true)
//   - Array: metadata.Strings("beach", "sunset")
//
// A catalog record projects its filterable fields into a Document:
//
//	doc := metadata.Document{
//	    "format": metadata.String("jpg"),
//	    "iso":    metadata.Int(400),
//	    "tags":   metadata.Strings("beach", "sunset"),
//	}
//
// # Filters
//
// A FilterSet is a conjunction of Filters. Supported operators are eq, ne,
// gt, gte, lt, lte, in and contains. "in" against an array field matches
// when any element is listed:
//
//	fs := metadata.NewFilterSet(
//	    metadata.Filter{Key: "iso", Operator: metadata.OpGreaterEqual, Value: metadata.Int(400)},
//	    metadata.Filter{Key: "tags", Operator: metadata.OpIn, Value: metadata.Strings("beach")},
//	)
//	fs.Matches(doc) // true
//
// ParseFilter reads the compact command-line form ("iso>=400", "tags:a|b").
package metadata
