package wire

// AppendString appends the canonical encoding of a string: the short form
// for lengths up to MaxShortStringLen, otherwise the long form with a
// single terminal chunk.
func AppendString(dst []byte, s []byte) []byte {
	if len(s) <= MaxShortStringLen {
		dst = append(dst, byte(CodeShortStringBase+len(s)))
		return append(dst, s...)
	}
	dst = append(dst, CodeLongString)
	dst = AppendLength(dst, uint64(len(s))<<1)
	return append(dst, s...)
}

// AppendStringChunk appends one chunk of a long string: the chunk header
// with the continuation flag, then the payload. The caller owns emitting
// the CodeLongString marker before the first chunk.
func AppendStringChunk(dst []byte, chunk []byte, more bool) []byte {
	payload := uint64(len(chunk)) << 1
	if more {
		payload |= 1
	}
	dst = AppendLength(dst, payload)
	return append(dst, chunk...)
}

// StringEncodedSize returns the encoded size of a string of n bytes in its
// canonical form.
func StringEncodedSize(n int) int {
	if n <= MaxShortStringLen {
		return 1 + n
	}
	return 1 + LengthEncodedSize(uint64(n)<<1) + n
}
