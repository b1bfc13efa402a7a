package wire

import "math"

// BFloat16 is a 16-bit brain floating point value.
//
// Format (16 bits total):
//   - Bit 15:     Sign (1 bit)
//   - Bits 14-7:  Exponent (8 bits, bias=127) - SAME as float32
//   - Bits 6-0:   Mantissa (7 bits) - truncated from float32's 23 bits
//
// Key property: bfloat16 is just the upper 16 bits of float32, so widening
// is a single shift. The encoder only ever narrows a float to bfloat16 when
// the conversion is exact, so no rounding mode is involved on the wire.
type BFloat16 uint16

// Float32 widens the value back to float32.
func (b BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// BFloat16FromFloat32 narrows f by truncation. Use BFloat16Exact to test
// whether the narrowing is lossless first.
func BFloat16FromFloat32(f float32) BFloat16 {
	return BFloat16(math.Float32bits(f) >> 16)
}

// BFloat16Exact reports whether f is exactly representable as bfloat16,
// which holds when the low 16 bits of its float32 form are zero.
func BFloat16Exact(f float32) bool {
	return math.Float32bits(f)&0xFFFF == 0
}
