package wire

import (
	"math/big"
	"strconv"
	"strings"
)

// BigNumber is a signed arbitrary-precision decimal. Its numeric value is
// sign * integer(Magnitude, little-endian) * 10^Exponent. The sign travels
// on the wire inside the zigzag-LEB128 signed length; the magnitude is
// stored with trailing zero bytes stripped.
type BigNumber struct {
	Negative  bool
	Magnitude []byte // little-endian, minimal
	Exponent  int64
}

// Normalize strips trailing zero bytes from the magnitude and clears the
// sign of zero.
func (bn BigNumber) Normalize() BigNumber {
	mag := bn.Magnitude
	for len(mag) > 0 && mag[len(mag)-1] == 0 {
		mag = mag[:len(mag)-1]
	}
	bn.Magnitude = mag
	if len(mag) == 0 {
		bn.Negative = false
		bn.Exponent = 0
	}
	return bn
}

// IsZero reports whether the number is zero.
func (bn BigNumber) IsZero() bool {
	for _, b := range bn.Magnitude {
		if b != 0 {
			return false
		}
	}
	return true
}

// Significand returns the magnitude as a big.Int, negated when the sign
// is set.
func (bn BigNumber) Significand() *big.Int {
	be := make([]byte, len(bn.Magnitude))
	for i, b := range bn.Magnitude {
		be[len(be)-1-i] = b
	}
	v := new(big.Int).SetBytes(be)
	if bn.Negative {
		v.Neg(v)
	}
	return v
}

// String renders the number as [-]<significand>[e<exp>].
func (bn BigNumber) String() string {
	var b strings.Builder
	b.WriteString(bn.Significand().String())
	if bn.Exponent != 0 {
		b.WriteByte('e')
		b.WriteString(strconv.FormatInt(bn.Exponent, 10))
	}
	return b.String()
}

// Float64 returns the closest float64, for numeric equivalence checks.
func (bn BigNumber) Float64() float64 {
	f := new(big.Float).SetInt(bn.Significand())
	if bn.Exponent != 0 {
		exp := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(abs64(bn.Exponent)), nil))
		if bn.Exponent > 0 {
			f.Mul(f, exp)
		} else {
			f.Quo(f, exp)
		}
	}
	out, _ := f.Float64()
	return out
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// AppendBigNumber appends the wire form: the type code, the zigzag-LEB128
// exponent, the zigzag-LEB128 signed length, then the magnitude bytes.
func AppendBigNumber(dst []byte, bn BigNumber) []byte {
	bn = bn.Normalize()
	dst = append(dst, CodeBigNumber)
	dst = AppendZigzagLEB128(dst, bn.Exponent)
	length := int64(len(bn.Magnitude))
	if bn.Negative {
		length = -length
	}
	dst = AppendZigzagLEB128(dst, length)
	return append(dst, bn.Magnitude...)
}

// DecodeBigNumber reads the payload of a CodeBigNumber value at data[pos:].
// The returned magnitude aliases data. Limit checks belong to the caller;
// this only enforces structural validity.
func DecodeBigNumber(data []byte, pos int64) (BigNumber, int, error) {
	exp, n1, err := DecodeZigzagLEB128(data, pos)
	if err != nil {
		return BigNumber{}, 0, err
	}
	length, n2, err := DecodeZigzagLEB128(data, pos+int64(n1))
	if err != nil {
		return BigNumber{}, 0, err
	}
	neg := length < 0
	if neg {
		length = -length
	}
	if length < 0 {
		return BigNumber{}, 0, NewError(KindValueOutOfRange, pos, "bignumber length overflow")
	}
	if length > int64(len(data))-pos-int64(n1)-int64(n2) {
		return BigNumber{}, 0, NewError(KindTruncated, pos, "bignumber magnitude")
	}
	start := pos + int64(n1) + int64(n2)
	bn := BigNumber{
		Negative:  neg,
		Magnitude: data[start : start+length],
		Exponent:  exp,
	}
	return bn, n1 + n2 + int(length), nil
}
