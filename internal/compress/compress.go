// Package compress frames byte blobs with an optional LZ4 or Zstandard
// payload and a CRC32-Castagnoli checksum of the raw bytes.
//
// Frame format: [Type uint8][RawLen uint32 LE][CRC32C uint32 LE][Payload...]
// When compression does not shrink the payload below 90% of the input the
// frame is written with None.
package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies the payload encoding of a frame.
type Type uint8

const (
	// None stores the payload as is.
	None Type = 0
	// LZ4 is LZ4 block compression (fast).
	LZ4 Type = 1
	// Zstd is Zstandard compression (better ratio).
	Zstd Type = 2
)

// String returns the name of the type.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("compress.Type(%d)", uint8(t))
	}
}

// ParseType parses "none", "lz4" or "zstd". The empty string is None.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zstandard":
		return Zstd, nil
	default:
		return None, fmt.Errorf("compress: unknown type %q", s)
	}
}

const headerSize = 9

// Maximum expansion of one payload byte. An LZ4 match length grows by at
// most 255 per byte; a 4-byte zstd RLE block yields at most 128 KiB.
const (
	maxLZ4Ratio  = 255
	maxZstdRatio = 128 << 10 / 4
)

// crc32cTable is pre-computed for the CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Checksum returns the CRC32C of data as stored in frame headers.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// ErrCorrupt is returned when a frame cannot be decoded.
var ErrCorrupt = errors.New("compress: corrupt frame")

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Encode frames data with the given type.
func Encode(data []byte, t Type) ([]byte, error) {
	var payload []byte
	switch t {
	case None:
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		// n == 0 means incompressible.
		payload = buf[:n]
	case Zstd:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("compress: unknown type %d", t)
	}

	if t == None || len(payload) == 0 || float64(len(payload)) > float64(len(data))*0.9 {
		t, payload = None, data
	}

	out := make([]byte, headerSize+len(payload))
	out[0] = byte(t)
	binary.LittleEndian.PutUint32(out[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[5:], Checksum(data))
	copy(out[headerSize:], payload)
	return out, nil
}

// Decode reverses Encode and verifies the checksum.
func Decode(frame []byte) ([]byte, error) {
	if len(frame) < headerSize {
		return nil, fmt.Errorf("%w: short header", ErrCorrupt)
	}
	out, err := decodePayload(Type(frame[0]), binary.LittleEndian.Uint32(frame[1:]), frame[headerSize:])
	if err != nil {
		return nil, err
	}
	if Checksum(out) != binary.LittleEndian.Uint32(frame[5:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return out, nil
}

func decodePayload(t Type, rawLen uint32, payload []byte) ([]byte, error) {
	switch t {
	case None:
		if uint32(len(payload)) != rawLen {
			return nil, fmt.Errorf("%w: length mismatch", ErrCorrupt)
		}
		out := make([]byte, rawLen)
		copy(out, payload)
		return out, nil

	case LZ4:
		if err := checkRatio(rawLen, len(payload), maxLZ4Ratio); err != nil {
			return nil, err
		}
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorrupt, err)
		}
		if uint32(n) != rawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	case Zstd:
		if err := checkRatio(rawLen, len(payload), maxZstdRatio); err != nil {
			return nil, err
		}
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, min(int(rawLen), len(payload)*8)))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorrupt, err)
		}
		if uint32(len(out)) != rawLen {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: unknown type %d", ErrCorrupt, t)
	}
}

// checkRatio rejects raw lengths the payload cannot expand to.
func checkRatio(rawLen uint32, payloadLen, maxRatio int) error {
	if uint64(rawLen) > uint64(payloadLen)*uint64(maxRatio) {
		return fmt.Errorf("%w: raw length %d exceeds %dx payload of %d bytes", ErrCorrupt, rawLen, maxRatio, payloadLen)
	}
	return nil
}
