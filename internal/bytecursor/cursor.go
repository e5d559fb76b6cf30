// Package bytecursor provides bounds-checked, offset-addressed reads over an
// immutable byte buffer.
//
// A Cursor holds no position. Every read names its absolute offset and, for
// multi-byte integers, the byte order to use. Offsets derived from untrusted
// data can therefore be passed straight through: a read that would cross the
// end of the buffer returns an error matching ErrOutOfBounds instead of
// panicking.
package bytecursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfBounds is matched (via errors.Is) by every failed read.
var ErrOutOfBounds = errors.New("bytecursor: out of bounds")

// OutOfBoundsError describes a read that did not fit in the buffer.
type OutOfBoundsError struct {
	Offset int
	Width  int
	Len    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("bytecursor: read of %d bytes at offset %d exceeds buffer of %d bytes", e.Width, e.Offset, e.Len)
}

// Is reports whether target is ErrOutOfBounds.
func (e *OutOfBoundsError) Is(target error) bool { return target == ErrOutOfBounds }

// Cursor reads fixed-width values from a byte buffer.
// The zero value is an empty buffer on which every read fails.
type Cursor struct {
	buf []byte
}

// New returns a Cursor over buf. The buffer is not copied and must not be
// modified while the Cursor is in use.
func New(buf []byte) Cursor {
	return Cursor{buf: buf}
}

// Len returns the buffer length.
func (c Cursor) Len() int { return len(c.buf) }

// InBounds reports whether width bytes starting at off lie inside the buffer.
func (c Cursor) InBounds(off, width int) bool {
	return off >= 0 && width >= 0 && off <= len(c.buf)-width
}

func (c Cursor) slice(off, width int) ([]byte, error) {
	if !c.InBounds(off, width) {
		return nil, &OutOfBoundsError{Offset: off, Width: width, Len: len(c.buf)}
	}
	return c.buf[off : off+width], nil
}

// Uint8 reads one byte at off.
func (c Cursor) Uint8(off int) (uint8, error) {
	b, err := c.slice(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads an unsigned 16-bit integer at off in the given byte order.
func (c Cursor) Uint16(off int, order binary.ByteOrder) (uint16, error) {
	b, err := c.slice(off, 2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(b), nil
}

// Uint32 reads an unsigned 32-bit integer at off in the given byte order.
func (c Cursor) Uint32(off int, order binary.ByteOrder) (uint32, error) {
	b, err := c.slice(off, 4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(b), nil
}

// Latin1 reads n raw bytes at off and returns them as a string, mapping each
// byte to the code point of the same value. Pure ASCII input is returned
// unchanged.
func (c Cursor) Latin1(off, n int) (string, error) {
	b, err := c.slice(off, n)
	if err != nil {
		return "", err
	}

	ascii := true
	for _, x := range b {
		if x >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b), nil
	}

	var sb strings.Builder
	sb.Grow(n * 2)
	for _, x := range b {
		sb.WriteRune(rune(x))
	}
	return sb.String(), nil
}

// Equal reports whether the bytes at off equal want. Out-of-range reads
// report false.
func (c Cursor) Equal(off int, want []byte) bool {
	b, err := c.slice(off, len(want))
	if err != nil {
		return false
	}
	return string(b) == string(want)
}
