package wire

// Type-code byte assignments. The first byte of every encoded value selects
// its class; small integers and short strings carry their payload in the
// byte itself.
//
// Layout of the byte space:
//
//	0x00-0x64  small int 0..100 (value is the byte)
//	0x65-0x9B  short string, length = byte - 0x65 (0..54)
//	0x9C-0xA6  small int byte - 0x100 (-100..-90)
//	0xA7       long string (chunked)
//	0xA8       reserved
//	0xA9-0xAF  typed arrays (int8..uint32)
//	0xB0-0xBB  markers (ints, bignumber, float, containers, null, bools, records)
//	0xBC-0xBF  typed arrays (uint64, float32, float64, bool)
//	0xC0-0xFF  small int byte - 0x100 (-64..-1)
const (
	CodeShortStringBase = 0x65
	CodeLongString      = 0xA7
	CodeReserved        = 0xA8
	CodeTypedInt8       = 0xA9
	CodeTypedInt16      = 0xAA
	CodeTypedInt32      = 0xAB
	CodeTypedInt64      = 0xAC
	CodeTypedUint8      = 0xAD
	CodeTypedUint16     = 0xAE
	CodeTypedUint32     = 0xAF
	CodeSignedInt       = 0xB0
	CodeUnsignedInt     = 0xB1
	CodeBigNumber       = 0xB2
	CodeFloat           = 0xB3
	CodeArrayBegin      = 0xB4
	CodeObjectBegin     = 0xB5
	CodeContainerEnd    = 0xB6
	CodeNull            = 0xB7
	CodeTrue            = 0xB8
	CodeFalse           = 0xB9
	CodeRecordInstance  = 0xBA
	CodeRecordDef       = 0xBB
	CodeTypedUint64     = 0xBC
	CodeTypedFloat32    = 0xBD
	CodeTypedFloat64    = 0xBE
	CodeTypedBool       = 0xBF
)

// MaxShortStringLen is the longest string encodable with an inline length.
const MaxShortStringLen = 54

// Float width codes carried in the byte after CodeFloat.
const (
	FloatWidth16 = 16
	FloatWidth32 = 32
	FloatWidth64 = 64
)

// Class is the value class a type-code byte dispatches to.
type Class uint8

// Value classes. Every byte 0..255 maps to exactly one class.
const (
	ClassReserved Class = iota
	ClassSmallInt
	ClassShortString
	ClassLongString
	ClassTypedArray
	ClassSignedInt
	ClassUnsignedInt
	ClassBigNumber
	ClassFloat
	ClassArrayBegin
	ClassObjectBegin
	ClassContainerEnd
	ClassNull
	ClassTrue
	ClassFalse
	ClassRecordInstance
	ClassRecordDef
)

// ElemType identifies the element type of a typed array.
type ElemType uint8

// Typed-array element types.
const (
	ElemInt8 ElemType = iota
	ElemInt16
	ElemInt32
	ElemInt64
	ElemUint8
	ElemUint16
	ElemUint32
	ElemUint64
	ElemFloat32
	ElemFloat64
	ElemBool
)

// Size returns the packed byte width of one element.
func (e ElemType) Size() int {
	switch e {
	case ElemInt8, ElemUint8, ElemBool:
		return 1
	case ElemInt16, ElemUint16:
		return 2
	case ElemInt32, ElemUint32, ElemFloat32:
		return 4
	default:
		return 8
	}
}

// TypeCode is one dispatch-table slot: the class plus the inline argument
// (small-int value, short-string length, or typed-array element type).
type TypeCode struct {
	Class Class
	Arg   int16
}

// Dispatch is the 256-entry type-code table. Indexed by the first byte of
// a value.
var Dispatch = buildDispatch()

func buildDispatch() [256]TypeCode {
	var t [256]TypeCode
	for b := 0x00; b <= 0x64; b++ {
		t[b] = TypeCode{Class: ClassSmallInt, Arg: int16(b)}
	}
	for b := 0x65; b <= 0x9B; b++ {
		t[b] = TypeCode{Class: ClassShortString, Arg: int16(b - CodeShortStringBase)}
	}
	for b := 0x9C; b <= 0xA6; b++ {
		t[b] = TypeCode{Class: ClassSmallInt, Arg: int16(b - 0x100)}
	}
	t[CodeLongString] = TypeCode{Class: ClassLongString}
	t[CodeReserved] = TypeCode{Class: ClassReserved}
	typed := [...]struct {
		code byte
		elem ElemType
	}{
		{CodeTypedInt8, ElemInt8},
		{CodeTypedInt16, ElemInt16},
		{CodeTypedInt32, ElemInt32},
		{CodeTypedInt64, ElemInt64},
		{CodeTypedUint8, ElemUint8},
		{CodeTypedUint16, ElemUint16},
		{CodeTypedUint32, ElemUint32},
		{CodeTypedUint64, ElemUint64},
		{CodeTypedFloat32, ElemFloat32},
		{CodeTypedFloat64, ElemFloat64},
		{CodeTypedBool, ElemBool},
	}
	for _, ta := range typed {
		t[ta.code] = TypeCode{Class: ClassTypedArray, Arg: int16(ta.elem)}
	}
	t[CodeSignedInt] = TypeCode{Class: ClassSignedInt}
	t[CodeUnsignedInt] = TypeCode{Class: ClassUnsignedInt}
	t[CodeBigNumber] = TypeCode{Class: ClassBigNumber}
	t[CodeFloat] = TypeCode{Class: ClassFloat}
	t[CodeArrayBegin] = TypeCode{Class: ClassArrayBegin}
	t[CodeObjectBegin] = TypeCode{Class: ClassObjectBegin}
	t[CodeContainerEnd] = TypeCode{Class: ClassContainerEnd}
	t[CodeNull] = TypeCode{Class: ClassNull}
	t[CodeTrue] = TypeCode{Class: ClassTrue}
	t[CodeFalse] = TypeCode{Class: ClassFalse}
	t[CodeRecordInstance] = TypeCode{Class: ClassRecordInstance}
	t[CodeRecordDef] = TypeCode{Class: ClassRecordDef}
	for b := 0xC0; b <= 0xFF; b++ {
		t[b] = TypeCode{Class: ClassSmallInt, Arg: int16(b - 0x100)}
	}
	return t
}

// SmallIntCode returns the single-byte encoding for v and whether v is
// small-encodable. The encodable set is [0,100], [-64,-1] and [-100,-90];
// the gap [-89,-65] collides with the marker band and uses the one-byte
// signed form instead.
func SmallIntCode(v int64) (byte, bool) {
	switch {
	case v >= 0 && v <= 100:
		return byte(v), true
	case v >= -64 && v <= -1:
		return byte(v + 0x100), true
	case v >= -100 && v <= -90:
		return byte(v + 0x100), true
	default:
		return 0, false
	}
}
