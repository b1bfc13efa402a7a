package wire

import (
	"encoding/binary"
	"math/bits"
)

// Container/string length codec.
//
// The position of the lowest set bit of the first byte selects the total
// width: bit 0 set means 1 byte (7 payload bits), bit 1 set means 2 bytes
// (14 bits), and so on up to 8 bytes (56 bits). A first byte of 0x00
// introduces a 9-byte form: the next 8 bytes are a little-endian 64-bit
// payload. Encodings must use the minimum width for their payload.
//
// String chunk headers store (byteLength << 1) | hasMoreChunks in the
// payload; typed-array headers store the element count directly.

// MaxLengthEncodedSize is the largest encoded size of a length field.
const MaxLengthEncodedSize = 9

// AppendLength appends the canonical encoding of payload to dst.
func AppendLength(dst []byte, payload uint64) []byte {
	for w := 1; w <= 8; w++ {
		if payload < 1<<(7*w) {
			v := payload<<w | 1<<(w-1)
			for i := 0; i < w; i++ {
				dst = append(dst, byte(v>>(8*i)))
			}
			return dst
		}
	}
	dst = append(dst, 0x00)
	return binary.LittleEndian.AppendUint64(dst, payload)
}

// DecodeLength reads a length payload at data[pos:]. It returns the payload
// and the number of bytes consumed. Non-minimal encodings are rejected.
func DecodeLength(data []byte, pos int64) (uint64, int, error) {
	if pos >= int64(len(data)) {
		return 0, 0, NewError(KindTruncated, pos, "length field")
	}
	first := data[pos]
	if first == 0x00 {
		if pos+9 > int64(len(data)) {
			return 0, 0, NewError(KindTruncated, pos, "9-byte length field")
		}
		payload := binary.LittleEndian.Uint64(data[pos+1 : pos+9])
		if payload < 1<<56 {
			return 0, 0, NewError(KindNonCanonicalLength, pos, "9-byte form for a payload that fits in 8")
		}
		return payload, 9, nil
	}
	w := bits.TrailingZeros8(first) + 1
	if pos+int64(w) > int64(len(data)) {
		return 0, 0, Errorf(KindTruncated, pos, "%d-byte length field", w)
	}
	var v uint64
	for i := 0; i < w; i++ {
		v |= uint64(data[pos+int64(i)]) << (8 * i)
	}
	payload := v >> w
	if w > 1 && payload < 1<<(7*(w-1)) {
		return 0, 0, Errorf(KindNonCanonicalLength, pos, "%d-byte form for a payload that fits in %d", w, w-1)
	}
	return payload, w, nil
}

// LengthEncodedSize returns the encoded size of payload without encoding it.
func LengthEncodedSize(payload uint64) int {
	for w := 1; w <= 8; w++ {
		if payload < 1<<(7*w) {
			return w
		}
	}
	return 9
}
