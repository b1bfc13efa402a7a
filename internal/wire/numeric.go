package wire

import (
	"encoding/binary"
	"math"
)

// Integer and float width selection. Integers are stored in the narrowest
// of: small-int byte, signed 1..8 bytes, unsigned 1..8 bytes. Floats are
// stored as the narrowest of bfloat16, float32 and float64 that round-trips
// exactly; whole-number floats inside the integer range are stored as
// integers.

// UnsignedWidth returns the minimal byte width holding v.
func UnsignedWidth(v uint64) int {
	w := 1
	for v > 0xFF {
		v >>= 8
		w++
	}
	return w
}

// SignedWidth returns the minimal byte width holding v as two's complement.
func SignedWidth(v int64) int {
	for w := 1; w < 8; w++ {
		shift := uint(8*w - 1)
		if v >= -(int64(1)<<shift) && v < int64(1)<<shift {
			return w
		}
	}
	return 8
}

// AppendInt appends the canonical encoding of a signed integer.
func AppendInt(dst []byte, v int64) []byte {
	if c, ok := SmallIntCode(v); ok {
		return append(dst, c)
	}
	if v >= 0 {
		return appendNonNegative(dst, uint64(v))
	}
	w := SignedWidth(v)
	dst = append(dst, CodeSignedInt, byte(w))
	return appendLE(dst, uint64(v), w)
}

// AppendUint appends the canonical encoding of an unsigned integer.
func AppendUint(dst []byte, v uint64) []byte {
	if v <= 100 {
		return append(dst, byte(v))
	}
	return appendNonNegative(dst, v)
}

// appendNonNegative picks signed vs unsigned for a non-negative value:
// signed wins a width tie, which happens exactly when the top bit of the
// minimal unsigned encoding is clear.
func appendNonNegative(dst []byte, v uint64) []byte {
	uw := UnsignedWidth(v)
	if v>>(8*uw-1) == 0 {
		dst = append(dst, CodeSignedInt, byte(uw))
	} else {
		dst = append(dst, CodeUnsignedInt, byte(uw))
	}
	return appendLE(dst, v, uw)
}

func appendLE(dst []byte, v uint64, w int) []byte {
	for i := 0; i < w; i++ {
		dst = append(dst, byte(v>>(8*i)))
	}
	return dst
}

// DecodeInt reads the payload of a CodeSignedInt value: a width byte then
// that many little-endian bytes, sign-extended.
func DecodeInt(data []byte, pos int64) (int64, int, error) {
	v, n, err := decodeWidthPrefixed(data, pos)
	if err != nil {
		return 0, 0, err
	}
	w := n - 1
	if w < 8 {
		shift := uint(64 - 8*w)
		return int64(v<<shift) >> shift, n, nil
	}
	return int64(v), n, nil
}

// DecodeUint reads the payload of a CodeUnsignedInt value.
func DecodeUint(data []byte, pos int64) (uint64, int, error) {
	return decodeWidthPrefixed(data, pos)
}

func decodeWidthPrefixed(data []byte, pos int64) (uint64, int, error) {
	if pos >= int64(len(data)) {
		return 0, 0, NewError(KindTruncated, pos, "integer width byte")
	}
	w := int(data[pos])
	if w < 1 || w > 8 {
		return 0, 0, Errorf(KindInvalidData, pos, "integer width %d", w)
	}
	if pos+1+int64(w) > int64(len(data)) {
		return 0, 0, Errorf(KindTruncated, pos, "%d-byte integer", w)
	}
	var v uint64
	for i := 0; i < w; i++ {
		v |= uint64(data[pos+1+int64(i)]) << (8 * i)
	}
	return v, w + 1, nil
}

// FloatAsInt reports whether f is a whole number inside the int64/uint64
// range, and if so which integer it is. Negative zero keeps its float form.
func FloatAsInt(f float64) (int64, uint64, bool, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, 0, false, false
	}
	if f == 0 && math.Signbit(f) {
		return 0, 0, false, false
	}
	if f >= -9.223372036854775808e18 && f < 9.223372036854775808e18 {
		return int64(f), 0, true, false
	}
	if f > 0 && f < 1.8446744073709552e19 {
		return 0, uint64(f), false, true
	}
	return 0, 0, false, false
}

// AppendFloat appends the canonical encoding of a finite float: the integer
// form when whole, otherwise the narrowest lossless float width.
func AppendFloat(dst []byte, f float64) []byte {
	if i, u, isInt, isUint := FloatAsInt(f); isInt {
		return AppendInt(dst, i)
	} else if isUint {
		return AppendUint(dst, u)
	}
	f32 := float32(f)
	if float64(f32) == f {
		if BFloat16Exact(f32) {
			dst = append(dst, CodeFloat, FloatWidth16)
			return binary.LittleEndian.AppendUint16(dst, uint16(BFloat16FromFloat32(f32)))
		}
		dst = append(dst, CodeFloat, FloatWidth32)
		return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f32))
	}
	dst = append(dst, CodeFloat, FloatWidth64)
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(f))
}

// DecodeFloat reads the payload of a CodeFloat value: a width code byte
// (16, 32 or 64) followed by the little-endian representation.
func DecodeFloat(data []byte, pos int64) (float64, int, error) {
	if pos >= int64(len(data)) {
		return 0, 0, NewError(KindTruncated, pos, "float width byte")
	}
	switch data[pos] {
	case FloatWidth16:
		if pos+3 > int64(len(data)) {
			return 0, 0, NewError(KindTruncated, pos, "bfloat16 payload")
		}
		bf := BFloat16(binary.LittleEndian.Uint16(data[pos+1 : pos+3]))
		return float64(bf.Float32()), 3, nil
	case FloatWidth32:
		if pos+5 > int64(len(data)) {
			return 0, 0, NewError(KindTruncated, pos, "float32 payload")
		}
		f := math.Float32frombits(binary.LittleEndian.Uint32(data[pos+1 : pos+5]))
		return float64(f), 5, nil
	case FloatWidth64:
		if pos+9 > int64(len(data)) {
			return 0, 0, NewError(KindTruncated, pos, "float64 payload")
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(data[pos+1 : pos+9])), 9, nil
	default:
		return 0, 0, Errorf(KindInvalidData, pos, "float width code %d", data[pos])
	}
}
