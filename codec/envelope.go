package codec

import (
	"errors"
	"fmt"
)

// ErrBadEnvelope is returned when an envelope is truncated or names an
// unknown codec.
var ErrBadEnvelope = errors.New("codec: bad envelope")

// MarshalEnvelope encodes v with c and prefixes the codec name:
// [nameLen uint8][name][payload].
func MarshalEnvelope(c Codec, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	name := c.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec: name %q too long", name)
	}
	payload, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(name)+len(payload))
	out = append(out, byte(len(name)))
	out = append(out, name...)
	return append(out, payload...), nil
}

// UnmarshalEnvelope decodes an envelope written by MarshalEnvelope with the
// codec it names and returns that codec.
func UnmarshalEnvelope(data []byte, v any) (Codec, error) {
	if len(data) < 1 || len(data) < 1+int(data[0]) {
		return nil, fmt.Errorf("%w: truncated header", ErrBadEnvelope)
	}
	name := string(data[1 : 1+int(data[0])])
	c, ok := ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrBadEnvelope, name)
	}
	if err := c.Unmarshal(data[1+len(name):], v); err != nil {
		return c, err
	}
	return c, nil
}
