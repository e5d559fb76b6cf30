package exif

import (
	"strconv"
)

// Kind is the binary type an IFD entry was declared with.
type Kind uint16

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = 0
	// KindByte is an unsigned 8-bit integer (type 1).
	KindByte Kind = 1
	// KindASCII is a NUL-terminated string (type 2).
	KindASCII Kind = 2
	// KindShort is an unsigned 16-bit integer (type 3).
	KindShort Kind = 3
	// KindLong is an unsigned 32-bit integer (type 4).
	KindLong Kind = 4
	// KindRational is an unsigned numerator/denominator pair (type 5),
	// stored reduced to a float.
	KindRational Kind = 5
)

// String returns the TIFF name of the kind.
func (k Kind) String() string {
	switch k {
	case KindByte:
		return "BYTE"
	case KindASCII:
		return "ASCII"
	case KindShort:
		return "SHORT"
	case KindLong:
		return "LONG"
	case KindRational:
		return "RATIONAL"
	default:
		return "INVALID"
	}
}

// typeSizes is the per-component size of every TIFF type id up to 12.
// Unknown ids have size 0.
var typeSizes = [...]int{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

func typeSize(typ uint16) int {
	if int(typ) < len(typeSizes) {
		return typeSizes[typ]
	}
	return 0
}

// Value is a decoded tag value. Exactly one of U, F or S is meaningful,
// selected by Kind.
type Value struct {
	Kind Kind    `json:"kind"`
	U    uint32  `json:"u,omitempty"`
	F    float64 `json:"f,omitempty"`
	S    string  `json:"s,omitempty"`
}

// Byte returns a KindByte value.
func Byte(v uint8) Value { return Value{Kind: KindByte, U: uint32(v)} }

// ASCII returns a KindASCII value.
func ASCII(v string) Value { return Value{Kind: KindASCII, S: v} }

// Short returns a KindShort value.
func Short(v uint16) Value { return Value{Kind: KindShort, U: uint32(v)} }

// Long returns a KindLong value.
func Long(v uint32) Value { return Value{Kind: KindLong, U: v} }

// Rational returns a KindRational value holding num/den, or 0 when den is 0.
func Rational(num, den uint32) Value {
	if den == 0 {
		return Value{Kind: KindRational}
	}
	return Value{Kind: KindRational, F: float64(num) / float64(den)}
}

// Float returns the value as a float64 for every numeric kind.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindByte, KindShort, KindLong:
		return float64(v.U), true
	case KindRational:
		return v.F, true
	default:
		return 0, false
	}
}

// Uint returns the value of an integer kind.
func (v Value) Uint() (uint32, bool) {
	switch v.Kind {
	case KindByte, KindShort, KindLong:
		return v.U, true
	default:
		return 0, false
	}
}

// Text returns the value of an ASCII kind.
func (v Value) Text() (string, bool) {
	if v.Kind != KindASCII {
		return "", false
	}
	return v.S, true
}

// String formats the value for display.
func (v Value) String() string {
	switch v.Kind {
	case KindASCII:
		return v.S
	case KindByte, KindShort, KindLong:
		return strconv.FormatUint(uint64(v.U), 10)
	case KindRational:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	default:
		return ""
	}
}
