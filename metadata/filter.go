package metadata

import (
	"strings"
)

// Matches checks if the provided document matches this filter.
// A missing field never matches.
func (f *Filter) Matches(doc Document) bool {
	value, exists := doc[f.Key]
	if !exists {
		return false
	}

	switch f.Operator {
	case OpEqual:
		return compareEqual(value, f.Value)
	case OpNotEqual:
		return !compareEqual(value, f.Value)
	case OpGreaterThan:
		return compareGreater(value, f.Value)
	case OpGreaterEqual:
		return compareGreater(value, f.Value) || compareEqual(value, f.Value)
	case OpLessThan:
		return compareLess(value, f.Value)
	case OpLessEqual:
		return compareLess(value, f.Value) || compareEqual(value, f.Value)
	case OpIn:
		return compareIn(value, f.Value)
	case OpContains:
		return compareContains(value, f.Value)
	default:
		return false
	}
}

// Matches checks if the provided document matches all filters in the set.
// An empty or nil set matches everything.
func (fs *FilterSet) Matches(doc Document) bool {
	if fs == nil {
		return true
	}
	for i := range fs.Filters {
		if !fs.Filters[i].Matches(doc) {
			return false
		}
	}
	return true
}

func compareEqual(a, b Value) bool {
	if ai, ok := a.AsInt64(); ok {
		if bi, ok := b.AsInt64(); ok {
			return ai == bi
		}
	}
	if af, ok := a.AsFloat64(); ok {
		bf, ok := b.AsFloat64()
		return ok && af == bf
	}

	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.s == b.s
	case KindBool:
		ab, _ := a.AsBool()
		bb, _ := b.AsBool()
		return ab == bb
	case KindArray:
		if len(a.A) != len(b.A) {
			return false
		}
		for i := range a.A {
			if !compareEqual(a.A[i], b.A[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func compareGreater(a, b Value) bool {
	if af, ok := a.AsFloat64(); ok {
		bf, ok := b.AsFloat64()
		return ok && af > bf
	}
	as, aok := a.AsString()
	bs, bok := b.AsString()
	return aok && bok && as > bs
}

func compareLess(a, b Value) bool {
	if af, ok := a.AsFloat64(); ok {
		bf, ok := b.AsFloat64()
		return ok && af < bf
	}
	as, aok := a.AsString()
	bs, bok := b.AsString()
	return aok && bok && as < bs
}

func compareIn(a, b Value) bool {
	if b.Kind != KindArray {
		return false
	}
	if a.Kind == KindArray {
		for _, elem := range a.A {
			if compareIn(elem, b) {
				return true
			}
		}
		return false
	}
	for _, item := range b.A {
		if compareEqual(a, item) {
			return true
		}
	}
	return false
}

func compareContains(a, b Value) bool {
	as, aok := a.AsString()
	bs, bok := b.AsString()
	return aok && bok && strings.Contains(as, bs)
}
