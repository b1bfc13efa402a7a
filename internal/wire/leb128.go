package wire

// LEB128 codecs used inside BigNumber fields (exponent, signed length) and
// for record-definition indices. Overlong encodings are rejected so that a
// value has exactly one wire form.

const maxULEB128Bytes = 10

// AppendULEB128 appends the unsigned LEB128 encoding of v to dst.
func AppendULEB128(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// DecodeULEB128 reads an unsigned LEB128 value at data[pos:]. It returns
// the value and the number of bytes consumed.
func DecodeULEB128(data []byte, pos int64) (uint64, int, error) {
	var v uint64
	var shift uint
	for i := 0; i < maxULEB128Bytes; i++ {
		if pos+int64(i) >= int64(len(data)) {
			return 0, 0, NewError(KindTruncated, pos, "LEB128 field")
		}
		b := data[pos+int64(i)]
		if i == maxULEB128Bytes-1 && b > 0x01 {
			return 0, 0, NewError(KindValueOutOfRange, pos, "LEB128 value exceeds 64 bits")
		}
		v |= uint64(b&0x7F) << shift
		if b&0x80 == 0 {
			if b == 0 && i > 0 {
				return 0, 0, NewError(KindNonCanonicalLength, pos, "overlong LEB128 encoding")
			}
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, NewError(KindValueOutOfRange, pos, "unterminated LEB128 field")
}

// ZigzagEncode maps a signed value to the unsigned zigzag domain.
func ZigzagEncode(v int64) uint64 {
	return uint64(v<<1) ^ uint64(v>>63)
}

// ZigzagDecode is the inverse of ZigzagEncode.
func ZigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// AppendZigzagLEB128 appends the zigzag-LEB128 encoding of v to dst.
func AppendZigzagLEB128(dst []byte, v int64) []byte {
	return AppendULEB128(dst, ZigzagEncode(v))
}

// DecodeZigzagLEB128 reads a zigzag-LEB128 value at data[pos:].
func DecodeZigzagLEB128(data []byte, pos int64) (int64, int, error) {
	u, n, err := DecodeULEB128(data, pos)
	if err != nil {
		return 0, 0, err
	}
	return ZigzagDecode(u), n, nil
}
