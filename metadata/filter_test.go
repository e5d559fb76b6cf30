package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatches(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		document Document
		want     bool
	}{
		{
			name:     "OpEqual string match",
			filter:   Filter{Key: "make", Operator: OpEqual, Value: String("Canon")},
			document: Document{"make": String("Canon")},
			want:     true,
		},
		{
			name:     "OpEqual string no match",
			filter:   Filter{Key: "make", Operator: OpEqual, Value: String("Canon")},
			document: Document{"make": String("Nikon")},
			want:     false,
		},
		{
			name:     "OpEqual int against float",
			filter:   Filter{Key: "iso", Operator: OpEqual, Value: Float(400)},
			document: Document{"iso": Int(400)},
			want:     true,
		},
		{
			name:     "OpNotEqual",
			filter:   Filter{Key: "format", Operator: OpNotEqual, Value: String("png")},
			document: Document{"format": String("jpg")},
			want:     true,
		},
		{
			name:     "OpGreaterThan",
			filter:   Filter{Key: "size", Operator: OpGreaterThan, Value: Int(50)},
			document: Document{"size": Int(75)},
			want:     true,
		},
		{
			name:     "OpGreaterEqual equal",
			filter:   Filter{Key: "iso", Operator: OpGreaterEqual, Value: Int(400)},
			document: Document{"iso": Int(400)},
			want:     true,
		},
		{
			name:     "OpLessThan false",
			filter:   Filter{Key: "fnumber", Operator: OpLessThan, Value: Float(2.8)},
			document: Document{"fnumber": Float(4)},
			want:     false,
		},
		{
			name:     "OpLessEqual string order",
			filter:   Filter{Key: "name", Operator: OpLessEqual, Value: String("m")},
			document: Document{"name": String("beach.jpg")},
			want:     true,
		},
		{
			name:     "OpIn scalar",
			filter:   Filter{Key: "format", Operator: OpIn, Value: Strings("jpg", "jpeg")},
			document: Document{"format": String("jpeg")},
			want:     true,
		},
		{
			name:     "OpIn array field any element",
			filter:   Filter{Key: "tags", Operator: OpIn, Value: Strings("sunset")},
			document: Document{"tags": Strings("beach", "sunset")},
			want:     true,
		},
		{
			name:     "OpIn array field no element",
			filter:   Filter{Key: "tags", Operator: OpIn, Value: Strings("city")},
			document: Document{"tags": Strings("beach", "sunset")},
			want:     false,
		},
		{
			name:     "OpContains",
			filter:   Filter{Key: "model", Operator: OpContains, Value: String("EOS")},
			document: Document{"model": String("Canon EOS R5")},
			want:     true,
		},
		{
			name:     "missing field",
			filter:   Filter{Key: "iso", Operator: OpNotEqual, Value: Int(100)},
			document: Document{},
			want:     false,
		},
		{
			name:     "unknown operator",
			filter:   Filter{Key: "iso", Operator: "between", Value: Int(100)},
			document: Document{"iso": Int(100)},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.document))
		})
	}
}

func TestFilterSetMatches(t *testing.T) {
	doc := Document{
		"format": String("jpg"),
		"iso":    Int(800),
	}

	var nilSet *FilterSet
	assert.True(t, nilSet.Matches(doc))
	assert.True(t, NewFilterSet().Matches(doc))

	fs := NewFilterSet(
		Filter{Key: "format", Operator: OpEqual, Value: String("jpg")},
		Filter{Key: "iso", Operator: OpGreaterEqual, Value: Int(400)},
	)
	assert.True(t, fs.Matches(doc))

	fs.Filters = append(fs.Filters, Filter{Key: "iso", Operator: OpLessThan, Value: Int(800)})
	assert.False(t, fs.Matches(doc))
}

func TestFilterMatches_MixedKinds(t *testing.T) {
	doc := Document{
		"iso":     Int(400),
		"fnumber": Float(2.8),
		"make":    String("Canon"),
		"flash":   Bool(false),
	}

	tests := []struct {
		filter Filter
		want   bool
	}{
		{Filter{Key: "iso", Operator: OpEqual, Value: Float(400)}, true},
		{Filter{Key: "fnumber", Operator: OpLessThan, Value: Int(4)}, true},
		{Filter{Key: "iso", Operator: OpEqual, Value: String("400")}, false},
		{Filter{Key: "make", Operator: OpGreaterThan, Value: String("Apple")}, true},
		{Filter{Key: "make", Operator: OpGreaterThan, Value: Int(1)}, false},
		{Filter{Key: "flash", Operator: OpEqual, Value: Bool(false)}, true},
		{Filter{Key: "flash", Operator: OpContains, Value: String("f")}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.filter.Matches(doc), "%s %s %s", tt.filter.Key, tt.filter.Operator, tt.filter.Value)
	}
}
