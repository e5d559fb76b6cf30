package exif

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/imgdex/internal/bytecursor"
)

var (
	// ErrNotJPEG is returned by Parse when the buffer lacks the JPEG SOI marker.
	ErrNotJPEG = errors.New("exif: not a JPEG")
	// ErrNoExif is returned by Parse when no APP1 segment carries EXIF data.
	ErrNoExif = errors.New("exif: no EXIF segment")
	// ErrCorrupt is returned by Parse when the segment chain or IFD points
	// outside the buffer or the TIFF header is invalid.
	ErrCorrupt = errors.New("exif: corrupt metadata")
)

const (
	markerSOI  = 0xFFD8
	markerEOI  = 0xFFD9
	markerSOS  = 0xFFDA
	markerAPP1 = 0xFFE1

	ifdEntrySize = 12
)

var exifIdent = []byte("Exif\x00\x00")

// Decode extracts the recognized tags from a JPEG buffer. It never fails:
// a missing, foreign or malformed metadata block yields (nil, false).
// Tags decoded before a fault in the directory are kept.
func Decode(buf []byte) (*Attributes, bool) {
	attrs, _ := Parse(buf)
	if attrs.IsEmpty() {
		return nil, false
	}
	return attrs, true
}

// DecodeFile is Decode gated on the file extension. Only jpg and jpeg
// (any case, leading dot optional) are parsed.
func DecodeFile(buf []byte, ext string) (*Attributes, bool) {
	if !IsJPEGExt(ext) {
		return nil, false
	}
	return Decode(buf)
}

// IsJPEGExt reports whether ext names a JPEG file.
func IsJPEGExt(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return ext == "jpg" || ext == "jpeg"
}

// Parse is Decode with the failure class exposed. On ErrCorrupt the
// returned attributes hold whatever was decoded before the fault; they are
// never nil.
//
// The marker walk ends at the first EXIF segment, at start-of-scan or at
// end-of-image, so EXIF placed after image data is reported as ErrNoExif.
// A TIFF header whose byte order is neither "II" nor "MM" is ErrCorrupt.
func Parse(buf []byte) (*Attributes, error) {
	attrs := &Attributes{}
	c := bytecursor.New(buf)

	soi, err := c.Uint16(0, binary.BigEndian)
	if err != nil || soi != markerSOI {
		return attrs, ErrNotJPEG
	}

	tiff, err := findTIFF(c)
	if err != nil {
		return attrs, err
	}

	if err := parseTIFF(c, tiff, attrs); err != nil {
		return attrs, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return attrs, nil
}

// findTIFF walks the marker chain and returns the offset of the TIFF header
// inside the first EXIF APP1 segment.
func findTIFF(c bytecursor.Cursor) (int, error) {
	off := 2
	for off < c.Len() {
		marker, err := c.Uint16(off, binary.BigEndian)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if marker == markerSOS || marker == markerEOI {
			break
		}

		length, err := c.Uint16(off+2, binary.BigEndian)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}

		// Other APP1 payloads (XMP) share the marker and are skipped.
		if marker == markerAPP1 && c.Equal(off+4, exifIdent) {
			return off + 4 + len(exifIdent), nil
		}

		// length is unsigned, so every step advances at least two bytes.
		off += 2 + int(length)
	}
	return 0, ErrNoExif
}

func byteOrder(c bytecursor.Cursor, tiff int) (binary.ByteOrder, error) {
	switch {
	case c.Equal(tiff, []byte("II")):
		return binary.LittleEndian, nil
	case c.Equal(tiff, []byte("MM")):
		return binary.BigEndian, nil
	default:
		return nil, errors.New("invalid TIFF byte order")
	}
}

// parseTIFF decodes IFD0 only; sub-IFD pointers are not followed.
func parseTIFF(c bytecursor.Cursor, tiff int, attrs *Attributes) error {
	order, err := byteOrder(c, tiff)
	if err != nil {
		return err
	}
	first, err := c.Uint32(tiff+4, order)
	if err != nil {
		return err
	}
	return parseIFD(c, tiff, tiff+int(first), order, attrs)
}

func parseIFD(c bytecursor.Cursor, tiff, ifd int, order binary.ByteOrder, attrs *Attributes) error {
	count, err := c.Uint16(ifd, order)
	if err != nil {
		return err
	}

	entry := ifd + 2
	for i := 0; i < int(count); i, entry = i+1, entry+ifdEntrySize {
		id, err := c.Uint16(entry, order)
		if err != nil {
			return err
		}
		tag := Tag(id)
		if !tag.Recognized() {
			continue
		}

		typ, err := c.Uint16(entry+2, order)
		if err != nil {
			return err
		}
		n, err := c.Uint32(entry+4, order)
		if err != nil {
			return err
		}

		v, ok, err := readValue(c, tiff, entry+8, typ, n, order)
		if err != nil {
			return err
		}
		if ok {
			attrs.Set(tag, v)
		}
	}
	return nil
}

// readValue decodes the value of one entry. field is the offset of the
// entry's 4-byte value field.
func readValue(c bytecursor.Cursor, tiff, field int, typ uint16, count uint32, order binary.ByteOrder) (Value, bool, error) {
	at := field
	if uint64(typeSize(typ))*uint64(count) > 4 {
		rel, err := c.Uint32(field, order)
		if err != nil {
			return Value{}, false, err
		}
		at = tiff + int(rel)
	}

	switch Kind(typ) {
	case KindByte:
		b, err := c.Uint8(at)
		if err != nil {
			return Value{}, false, err
		}
		return Byte(b), true, nil

	case KindASCII:
		n := 0
		if count > 0 {
			n = int(count) - 1
		}
		s, err := c.Latin1(at, n)
		if err != nil {
			return Value{}, false, err
		}
		return ASCII(s), true, nil

	case KindShort:
		u, err := c.Uint16(at, order)
		if err != nil {
			return Value{}, false, err
		}
		return Short(u), true, nil

	case KindLong:
		u, err := c.Uint32(at, order)
		if err != nil {
			return Value{}, false, err
		}
		return Long(u), true, nil

	case KindRational:
		num, err := c.Uint32(at, order)
		if err != nil {
			return Value{}, false, err
		}
		den, err := c.Uint32(at+4, order)
		if err != nil {
			return Value{}, false, err
		}
		return Rational(num, den), true, nil

	default:
		return Value{}, false, nil
	}
}
