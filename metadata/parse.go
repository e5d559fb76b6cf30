package metadata

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// opTokens is ordered so that two-character operators are tried first.
var opTokens = []struct {
	tok string
	op  Operator
}{
	{">=", OpGreaterEqual},
	{"<=", OpLessEqual},
	{"!=", OpNotEqual},
	{">", OpGreaterThan},
	{"<", OpLessThan},
	{"=", OpEqual},
	{"~", OpContains},
	{":", OpIn},
}

// ParseFilter parses a command-line condition such as "iso>=400",
// "make=Canon", "model~EOS" or "tags:beach|sunset".
//
// Values are typed by shape: integers, floats and booleans become numeric
// and boolean Values, dates (2006-01-02 or RFC 3339) become Unix seconds,
// everything else is a string. The right side of ":" is a "|"-separated
// list.
func ParseFilter(expr string) (Filter, error) {
	for _, o := range opTokens {
		i := strings.Index(expr, o.tok)
		if i <= 0 {
			continue
		}
		key := strings.TrimSpace(expr[:i])
		raw := strings.TrimSpace(expr[i+len(o.tok):])
		if !validKey(key) {
			continue
		}
		if raw == "" {
			break
		}
		if o.op == OpIn {
			parts := strings.Split(raw, "|")
			arr := make([]Value, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					arr = append(arr, ParseValue(p))
				}
			}
			return Filter{Key: key, Operator: OpIn, Value: Array(arr)}, nil
		}
		if o.op == OpContains {
			return Filter{Key: key, Operator: OpContains, Value: String(raw)}, nil
		}
		return Filter{Key: key, Operator: o.op, Value: ParseValue(raw)}, nil
	}
	return Filter{}, fmt.Errorf("metadata: invalid filter expression %q", expr)
}

// ParseValue infers a Value from its textual form.
func ParseValue(s string) Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return Bool(b)
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Int(t.Unix())
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Int(t.Unix())
	}
	return String(s)
}

func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.', r == '-':
		default:
			return false
		}
	}
	return true
}
