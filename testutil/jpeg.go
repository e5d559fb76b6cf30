package testutil

import (
	"encoding/binary"
)

// ByteOrder is a byte order that can both read and append.
// binary.LittleEndian and binary.BigEndian satisfy it.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

type tiffEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

// TIFF builds a TIFF header followed by a single IFD. Entries are written in
// the order they are added; values wider than four bytes are placed in a
// data area after the IFD and referenced by offset.
type TIFF struct {
	order   ByteOrder
	entries []tiffEntry
}

// NewTIFF starts a TIFF block in the given byte order.
func NewTIFF(order ByteOrder) *TIFF {
	return &TIFF{order: order}
}

// Raw adds an entry with pre-encoded value bytes.
func (t *TIFF) Raw(tag, typ uint16, count uint32, data []byte) *TIFF {
	t.entries = append(t.entries, tiffEntry{tag: tag, typ: typ, count: count, data: data})
	return t
}

// Byte adds a type 1 entry.
func (t *TIFF) Byte(tag uint16, v uint8) *TIFF {
	return t.Raw(tag, 1, 1, []byte{v})
}

// ASCII adds a NUL-terminated type 2 entry.
func (t *TIFF) ASCII(tag uint16, s string) *TIFF {
	data := append([]byte(s), 0)
	return t.Raw(tag, 2, uint32(len(data)), data)
}

// Short adds a type 3 entry.
func (t *TIFF) Short(tag uint16, v uint16) *TIFF {
	data := make([]byte, 2)
	t.order.PutUint16(data, v)
	return t.Raw(tag, 3, 1, data)
}

// Long adds a type 4 entry.
func (t *TIFF) Long(tag uint16, v uint32) *TIFF {
	data := make([]byte, 4)
	t.order.PutUint32(data, v)
	return t.Raw(tag, 4, 1, data)
}

// Rational adds a type 5 entry.
func (t *TIFF) Rational(tag uint16, num, den uint32) *TIFF {
	data := make([]byte, 8)
	t.order.PutUint32(data[0:], num)
	t.order.PutUint32(data[4:], den)
	return t.Raw(tag, 5, 1, data)
}

// Bytes encodes the block. The IFD starts at offset 8.
func (t *TIFF) Bytes() []byte {
	const ifdOffset = 8
	dataOffset := ifdOffset + 2 + 12*len(t.entries) + 4

	var out []byte
	if t.order == binary.LittleEndian {
		out = append(out, 'I', 'I')
	} else {
		out = append(out, 'M', 'M')
	}
	out = t.order.AppendUint16(out, 42)
	out = t.order.AppendUint32(out, ifdOffset)
	out = t.order.AppendUint16(out, uint16(len(t.entries)))

	var data []byte
	for _, e := range t.entries {
		out = t.order.AppendUint16(out, e.tag)
		out = t.order.AppendUint16(out, e.typ)
		out = t.order.AppendUint32(out, e.count)
		if len(e.data) <= 4 {
			field := make([]byte, 4)
			copy(field, e.data)
			out = append(out, field...)
			continue
		}
		out = t.order.AppendUint32(out, uint32(dataOffset+len(data)))
		data = append(data, e.data...)
	}
	out = t.order.AppendUint32(out, 0) // no next IFD
	return append(out, data...)
}

// Segment encodes a JPEG marker segment. The length field covers itself and
// the payload.
func Segment(marker uint16, payload []byte) []byte {
	out := binary.BigEndian.AppendUint16(nil, marker)
	out = binary.BigEndian.AppendUint16(out, uint16(len(payload)+2))
	return append(out, payload...)
}

// ExifSegment wraps a TIFF block in an APP1 segment with the EXIF identifier.
func ExifSegment(tiff []byte) []byte {
	payload := append([]byte("Exif\x00\x00"), tiff...)
	return Segment(0xFFE1, payload)
}

// XMPSegment returns an APP1 segment carrying an XMP packet.
func XMPSegment(packet string) []byte {
	payload := append([]byte("http://ns.adobe.com/xap/1.0/\x00"), packet...)
	return Segment(0xFFE1, payload)
}

// JPEG concatenates SOI, the given segments and EOI.
func JPEG(segments ...[]byte) []byte {
	out := []byte{0xFF, 0xD8}
	for _, s := range segments {
		out = append(out, s...)
	}
	return append(out, 0xFF, 0xD9)
}
