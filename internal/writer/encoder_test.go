package writer

import (
	"math"
	"strings"
	"testing"

	"github.com/scigolib/bonjson/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finish(t *testing.T, e *Encoder) []byte {
	t.Helper()
	out, err := e.EndDocument()
	require.NoError(t, err)
	return out
}

func errKind(err error) wire.ErrorKind {
	if we, ok := err.(*wire.Error); ok {
		return we.Kind
	}
	return wire.KindNone
}

// TestEncoder_ScalarVectors pins the single-value encodings.
func TestEncoder_ScalarVectors(t *testing.T) {
	tests := []struct {
		name  string
		write func(*Encoder) error
		want  []byte
	}{
		{"Null", (*Encoder).WriteNull, []byte{0xB7}},
		{"True", func(e *Encoder) error { return e.WriteBool(true) }, []byte{0xB8}},
		{"False", func(e *Encoder) error { return e.WriteBool(false) }, []byte{0xB9}},
		{"Int42", func(e *Encoder) error { return e.WriteInt(42) }, []byte{0x2A}},
		{"IntNeg1", func(e *Encoder) error { return e.WriteInt(-1) }, []byte{0xFF}},
		{"IntNeg100", func(e *Encoder) error { return e.WriteInt(-100) }, []byte{0x9C}},
		{"Hello", func(e *Encoder) error { return e.WriteString("hello") }, []byte{0x6A, 'h', 'e', 'l', 'l', 'o'}},
		{"WholeFloat", func(e *Encoder) error { return e.WriteFloat(42.0) }, []byte{0x2A}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := New(wire.DefaultOptions())
			require.NoError(t, tc.write(e))
			assert.Equal(t, tc.want, finish(t, e))
		})
	}
}

// TestEncoder_Containers pins the container vectors.
func TestEncoder_Containers(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.EndContainer())
	assert.Equal(t, []byte{0xB4, 0xB6}, finish(t, e))

	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.EndContainer())
	assert.Equal(t, []byte{0xB5, 0xB6}, finish(t, e))

	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	for _, v := range []int64{1, 2, 3} {
		require.NoError(t, e.WriteInt(v))
	}
	require.NoError(t, e.EndContainer())
	assert.Equal(t, []byte{0xB4, 0x01, 0x02, 0x03, 0xB6}, finish(t, e))

	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.WriteKey("a"))
	require.NoError(t, e.WriteInt(1))
	require.NoError(t, e.EndContainer())
	assert.Equal(t, []byte{0xB5, 0x66, 'a', 0x01, 0xB6}, finish(t, e))
}

// TestEncoder_ObjectAlternation enforces key/value discipline.
func TestEncoder_ObjectAlternation(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.BeginObject())
	err := e.WriteInt(1)
	require.Error(t, err)
	assert.Equal(t, wire.KindInvalidObjectKey, errKind(err))

	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.WriteKey("a"))
	err = e.EndContainer()
	require.Error(t, err)
	assert.Equal(t, wire.KindInvalidData, errKind(err))

	e = New(wire.DefaultOptions())
	err = e.WriteKey("a")
	require.Error(t, err)
	assert.Equal(t, wire.KindInvalidData, errKind(err))
}

// TestEncoder_StickyError verifies poisoning after the first failure.
func TestEncoder_StickyError(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.WriteInt(1))
	first := e.WriteInt(2)
	require.Error(t, first, "second root value")
	assert.Equal(t, first, e.WriteNull())
	_, err := e.EndDocument()
	assert.Equal(t, first, err)
}

// TestEncoder_Limits covers depth, container, string and document caps.
func TestEncoder_Limits(t *testing.T) {
	opts := wire.DefaultOptions()
	opts.MaxDepth = 2
	e := New(opts)
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.BeginArray())
	err := e.BeginArray()
	require.Error(t, err)
	assert.Equal(t, wire.KindMaxDepthExceeded, errKind(err))

	opts = wire.DefaultOptions()
	opts.MaxContainerSize = 2
	e = New(opts)
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.WriteInt(1))
	require.NoError(t, e.WriteInt(2))
	err = e.WriteInt(3)
	require.Error(t, err)
	assert.Equal(t, wire.KindMaxContainerSizeExceeded, errKind(err))

	opts = wire.DefaultOptions()
	opts.MaxStringLength = 4
	e = New(opts)
	err = e.WriteString("hello")
	require.Error(t, err)
	assert.Equal(t, wire.KindMaxStringLengthExceeded, errKind(err))

	opts = wire.DefaultOptions()
	opts.MaxDocumentSize = 4
	e = New(opts)
	err = e.WriteString("hello")
	require.Error(t, err)
	assert.Equal(t, wire.KindMaxDocumentSizeExceeded, errKind(err))
}

// TestEncoder_NonFinitePolicies covers reject, allow and stringify.
func TestEncoder_NonFinitePolicies(t *testing.T) {
	e := New(wire.DefaultOptions())
	err := e.WriteFloat(math.NaN())
	require.Error(t, err)
	assert.Equal(t, wire.KindNaNNotAllowed, errKind(err))

	e = New(wire.DefaultOptions())
	err = e.WriteFloat(math.Inf(1))
	require.Error(t, err)
	assert.Equal(t, wire.KindInfinityNotAllowed, errKind(err))

	opts := wire.DefaultOptions()
	opts.NonFinite = wire.NonFiniteAllow
	e = New(opts)
	require.NoError(t, e.WriteFloat(math.Inf(1)))
	out := finish(t, e)
	assert.Equal(t, []byte{0xB3, wire.FloatWidth16, 0x80, 0x7F}, out, "+Inf is bfloat16-exact")

	opts.NonFinite = wire.NonFiniteStringify
	e = New(opts)
	require.NoError(t, e.WriteFloat(math.NaN()))
	assert.Equal(t, []byte{0x68, 'N', 'a', 'N'}, finish(t, e))
}

// TestEncoder_DuplicateKeys covers rejection including the hashed path.
func TestEncoder_DuplicateKeys(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.WriteKey("a"))
	require.NoError(t, e.WriteInt(1))
	err := e.WriteKey("a")
	require.Error(t, err)
	assert.Equal(t, wire.KindDuplicateKey, errKind(err))

	// Past the linear window.
	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginObject())
	for i := 0; i < 20; i++ {
		require.NoError(t, e.WriteKey("k"+string(rune('a'+i))))
		require.NoError(t, e.WriteInt(int64(i)))
	}
	err = e.WriteKey("kc")
	require.Error(t, err)
	assert.Equal(t, wire.KindDuplicateKey, errKind(err))

	opts := wire.DefaultOptions()
	opts.DuplicateKeys = wire.DuplicateKeyKeepLast
	e = New(opts)
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.WriteKey("a"))
	require.NoError(t, e.WriteInt(1))
	require.NoError(t, e.WriteKey("a"))
	require.NoError(t, e.WriteInt(2))
	require.NoError(t, e.EndContainer())
	assert.Equal(t, []byte{0xB5, 0x66, 'a', 0x01, 0x66, 'a', 0x02, 0xB6}, finish(t, e))
}

// TestEncoder_BigNumber covers the wire form and the range policies.
func TestEncoder_BigNumber(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.WriteBigNumber(wire.BigNumber{Magnitude: []byte{0x3A, 0x01}, Exponent: -2}))
	assert.Equal(t, []byte{0xB2, 0x03, 0x04, 0x3A, 0x01}, finish(t, e))

	opts := wire.DefaultOptions()
	opts.MaxBigNumberExponent = 128
	e = New(opts)
	err := e.WriteBigNumber(wire.BigNumber{Magnitude: []byte{0x07}, Exponent: 200})
	require.Error(t, err)
	assert.Equal(t, wire.KindMaxBigNumberExponentExceeded, errKind(err))

	opts.BigNumberRange = wire.BigNumberStringify
	e = New(opts)
	require.NoError(t, e.WriteBigNumber(wire.BigNumber{Magnitude: []byte{0x07}, Exponent: 200}))
	assert.Equal(t, []byte{0x6A, '7', 'e', '2', '0', '0'}, finish(t, e))
}

// TestEncoder_LongString verifies the long form boundary.
func TestEncoder_LongString(t *testing.T) {
	s := strings.Repeat("x", wire.MaxShortStringLen+1)
	e := New(wire.DefaultOptions())
	require.NoError(t, e.WriteString(s))
	out := finish(t, e)
	require.Equal(t, byte(wire.CodeLongString), out[0])
	payload, n, err := wire.DecodeLength(out, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(s))<<1, payload)
	assert.Equal(t, s, string(out[1+n:]))
}

// TestEncoder_ExplicitRecords covers the explicit definition/instance API.
func TestEncoder_ExplicitRecords(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	def, err := e.WriteRecordDef([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 0, def)

	require.NoError(t, e.BeginRecordInstance(def))
	require.NoError(t, e.WriteInt(1))
	require.NoError(t, e.WriteInt(2))
	require.NoError(t, e.EndContainer())
	require.NoError(t, e.EndContainer())

	want := []byte{
		0xB4,
		0xBB, 0x66, 'a', 0x66, 'b', 0xB6,
		0xBA, 0x00, 0x01, 0x02, 0xB6,
		0xB6,
	}
	assert.Equal(t, want, finish(t, e))
}

// TestEncoder_ExplicitRecordErrors covers instance arity misuse.
func TestEncoder_ExplicitRecordErrors(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	def, err := e.WriteRecordDef([]string{"a"})
	require.NoError(t, err)

	require.NoError(t, e.BeginRecordInstance(def))
	err = e.EndContainer()
	require.Error(t, err, "missing value")
	assert.Equal(t, wire.KindInvalidData, errKind(err))

	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	def, err = e.WriteRecordDef([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, e.BeginRecordInstance(def))
	require.NoError(t, e.WriteInt(1))
	err = e.WriteInt(2)
	require.Error(t, err, "extra value")
	assert.Equal(t, wire.KindInvalidData, errKind(err))

	e = New(wire.DefaultOptions())
	err = e.BeginRecordInstance(0)
	require.Error(t, err, "unknown definition")
	assert.Equal(t, wire.KindInvalidData, errKind(err))
}

// TestEncoder_StreamingRecordDef builds a definition from string writes.
func TestEncoder_StreamingRecordDef(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.BeginRecordDef())
	require.NoError(t, e.WriteString("a"))
	require.NoError(t, e.WriteString("b"))
	def, err := e.EndRecordDef()
	require.NoError(t, err)
	assert.Equal(t, 0, def)

	require.NoError(t, e.BeginRecordInstance(def))
	require.NoError(t, e.WriteInt(1))
	require.NoError(t, e.WriteInt(2))
	require.NoError(t, e.EndRecordInstance())
	require.NoError(t, e.EndContainer())

	want := []byte{
		0xB4,
		0xBB, 0x66, 'a', 0x66, 'b', 0xB6,
		0xBA, 0x00, 0x01, 0x02, 0xB6,
		0xB6,
	}
	assert.Equal(t, want, finish(t, e))

	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginRecordDef())
	err = e.WriteInt(1)
	require.Error(t, err, "definitions hold only strings")
	assert.Equal(t, wire.KindInvalidObjectKey, errKind(err))
}

// TestEncoder_EndAllContainers closes nested frames in one call.
func TestEncoder_EndAllContainers(t *testing.T) {
	e := New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.WriteInt(1))
	require.NoError(t, e.EndAllContainers())
	assert.Equal(t, []byte{0xB4, 0xB4, 0x01, 0xB6, 0xB6}, finish(t, e))
}

// TestEncoder_EndDocumentErrors covers unfinished documents.
func TestEncoder_EndDocumentErrors(t *testing.T) {
	e := New(wire.DefaultOptions())
	_, err := e.EndDocument()
	require.Error(t, err, "no root")
	assert.Equal(t, wire.KindInvalidData, errKind(err))

	e = New(wire.DefaultOptions())
	require.NoError(t, e.BeginArray())
	_, err = e.EndDocument()
	require.Error(t, err, "open container")
	assert.Equal(t, wire.KindUnclosedContainer, errKind(err))
}
