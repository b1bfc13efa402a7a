package bonjson

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, data []byte, opts ...Option) *Document {
	t.Helper()
	d, err := Decode(data, opts...)
	require.NoError(t, err)
	return d
}

// TestFormatVectors pins the end-to-end scenarios of the wire format,
// encode and decode.
func TestFormatVectors(t *testing.T) {
	t.Run("Null", func(t *testing.T) {
		e := NewEncoder()
		require.NoError(t, e.WriteNull())
		out, err := e.EndDocument()
		require.NoError(t, err)
		assert.Equal(t, []byte{0xB7}, out)
		assert.Equal(t, TypeNull, mustDecode(t, out).Type(0))
	})

	t.Run("Booleans", func(t *testing.T) {
		for _, tc := range []struct {
			v    bool
			want byte
		}{{true, 0xB8}, {false, 0xB9}} {
			e := NewEncoder()
			require.NoError(t, e.WriteBool(tc.v))
			out, err := e.EndDocument()
			require.NoError(t, err)
			assert.Equal(t, []byte{tc.want}, out)
			got, err := mustDecode(t, out).Bool(0)
			require.NoError(t, err)
			assert.Equal(t, tc.v, got)
		}
	})

	t.Run("SmallInts", func(t *testing.T) {
		for _, tc := range []struct {
			v    int64
			want byte
		}{{42, 0x2A}, {-1, 0xFF}, {-100, 0x9C}} {
			e := NewEncoder()
			require.NoError(t, e.WriteInt(tc.v))
			out, err := e.EndDocument()
			require.NoError(t, err)
			assert.Equal(t, []byte{tc.want}, out)
			got, err := mustDecode(t, out).Int(0)
			require.NoError(t, err)
			assert.Equal(t, tc.v, got)
		}
	})

	t.Run("Hello", func(t *testing.T) {
		e := NewEncoder()
		require.NoError(t, e.WriteString("hello"))
		out, err := e.EndDocument()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x6A, 0x68, 0x65, 0x6C, 0x6C, 0x6F}, out)
		got, err := mustDecode(t, out).String(0)
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})

	t.Run("EmptyContainers", func(t *testing.T) {
		e := NewEncoder()
		require.NoError(t, e.BeginArray())
		require.NoError(t, e.EndContainer())
		out, err := e.EndDocument()
		require.NoError(t, err)
		assert.Equal(t, []byte{0xB4, 0xB6}, out)

		e = NewEncoder()
		require.NoError(t, e.BeginObject())
		require.NoError(t, e.EndContainer())
		out, err = e.EndDocument()
		require.NoError(t, err)
		assert.Equal(t, []byte{0xB5, 0xB6}, out)
	})

	t.Run("ArrayOneTwoThree", func(t *testing.T) {
		out := []byte{0xB4, 0x01, 0x02, 0x03, 0xB6}
		d := mustDecode(t, out)
		n, err := d.ArrayLen(0)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		for k, want := range []int64{1, 2, 3} {
			idx, err := d.ChildAt(0, k)
			require.NoError(t, err)
			got, err := d.Int(idx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	})

	t.Run("ObjectA1", func(t *testing.T) {
		out := []byte{0xB5, 0x66, 0x61, 0x01, 0xB6}
		d := mustDecode(t, out)
		idx, err := d.Lookup(0, "a")
		require.NoError(t, err)
		got, err := d.Int(idx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})
}

// TestDuplicateKeyScenario covers reject, keep_first and keep_last.
func TestDuplicateKeyScenario(t *testing.T) {
	doc := []byte{0xB5, 0x66, 'a', 0x01, 0x66, 'a', 0x02, 0xB6}

	_, err := Decode(doc)
	require.Error(t, err)
	assert.Equal(t, ErrDuplicateKey, KindOf(err))

	d := mustDecode(t, doc, WithDuplicateKeys(DuplicateKeyKeepLast))
	idx, err := d.Lookup(0, "a")
	require.NoError(t, err)
	v, err := d.Int(idx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	d = mustDecode(t, doc, WithDuplicateKeys(DuplicateKeyKeepFirst))
	idx, err = d.Lookup(0, "a")
	require.NoError(t, err)
	v, err = d.Int(idx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

// TestDepthScenario covers the 513-deep document at both limits.
func TestDepthScenario(t *testing.T) {
	build := func(depth int) ([]byte, error) {
		e := NewEncoder(WithMaxDepth(1024))
		for i := 0; i < depth; i++ {
			if err := e.BeginArray(); err != nil {
				return nil, err
			}
		}
		if err := e.WriteNull(); err != nil {
			return nil, err
		}
		if err := e.EndAllContainers(); err != nil {
			return nil, err
		}
		return e.EndDocument()
	}

	doc, err := build(513)
	require.NoError(t, err)

	_, err = Decode(doc)
	require.Error(t, err)
	assert.Equal(t, ErrMaxDepthExceeded, KindOf(err))

	_, err = Decode(doc, WithMaxDepth(1024))
	require.NoError(t, err)

	e := NewEncoder()
	var encErr error
	for i := 0; i < 513; i++ {
		if encErr = e.BeginArray(); encErr != nil {
			break
		}
	}
	require.Error(t, encErr)
	assert.Equal(t, ErrMaxDepthExceeded, KindOf(encErr))
}

// TestNaNStringifyScenario round-trips NaN through the configured
// spelling under symmetric policies.
func TestNaNStringifyScenario(t *testing.T) {
	e := NewEncoder()
	err := e.WriteFloat(math.NaN())
	require.Error(t, err)
	assert.Equal(t, ErrNaNNotAllowed, KindOf(err))

	opts := []Option{
		WithNonFinite(NonFiniteStringify),
		WithNonFiniteSpellings("Inf", "-Inf", "NaN"),
	}
	e = NewEncoder(opts...)
	require.NoError(t, e.WriteFloat(math.NaN()))
	out, err := e.EndDocument()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x68, 'N', 'a', 'N'}, out)

	d := mustDecode(t, out, opts...)
	assert.Equal(t, TypeString, d.Type(0))
	f, err := d.Float(0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))

	e = NewEncoder(opts...)
	require.NoError(t, e.WriteFloat(math.Inf(-1)))
	out, err = e.EndDocument()
	require.NoError(t, err)
	d = mustDecode(t, out, opts...)
	f, err = d.Float(0)
	require.NoError(t, err)
	assert.True(t, math.IsInf(f, -1))
}

// TestBigNumberStringifyScenario renders an out-of-range BigNumber as
// <significand>e<exp>.
func TestBigNumberStringifyScenario(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.WriteBigNumber(BigNumber{Magnitude: []byte{0x07}, Exponent: 200}))
	doc, err := e.EndDocument()
	require.NoError(t, err)

	d := mustDecode(t, doc,
		WithMaxBigNumberExponent(128),
		WithBigNumberRange(BigNumberStringify))
	assert.Equal(t, TypeString, d.Type(0))
	s, err := d.String(0)
	require.NoError(t, err)
	assert.Equal(t, "7e200", s)
}

// TestTypeMismatch covers the access error kinds.
func TestTypeMismatch(t *testing.T) {
	d := mustDecode(t, []byte{0x2A})
	_, err := d.Bool(0)
	require.Error(t, err)
	assert.Equal(t, ErrTypeMismatch, KindOf(err))
	_, err = d.String(0)
	assert.Equal(t, ErrTypeMismatch, KindOf(err))
	_, err = d.ArrayLen(0)
	assert.Equal(t, ErrTypeMismatch, KindOf(err))

	d = mustDecode(t, []byte{0xB5, 0x66, 'a', 0x01, 0xB6})
	_, err = d.Lookup(0, "missing")
	require.Error(t, err)
	assert.Equal(t, ErrKeyNotFound, KindOf(err))
}

// TestNumericBridging verifies int/uint/float cross-reads used by the
// value-equivalence rules.
func TestNumericBridging(t *testing.T) {
	e := NewEncoder()
	require.NoError(t, e.WriteUint(200))
	doc, err := e.EndDocument()
	require.NoError(t, err)
	d := mustDecode(t, doc)
	assert.Equal(t, TypeUint, d.Type(0))
	i, err := d.Int(0)
	require.NoError(t, err)
	assert.Equal(t, int64(200), i)
	f, err := d.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 200.0, f)

	e = NewEncoder()
	require.NoError(t, e.WriteUint(math.MaxUint64))
	doc, err = e.EndDocument()
	require.NoError(t, err)
	d = mustDecode(t, doc)
	_, err = d.Int(0)
	require.Error(t, err)
	assert.Equal(t, ErrValueOutOfRange, KindOf(err))

	// 42.0 canonicalises to the integer form and still reads as float.
	e = NewEncoder()
	require.NoError(t, e.WriteFloat(42.0))
	doc, err = e.EndDocument()
	require.NoError(t, err)
	d = mustDecode(t, doc)
	assert.Equal(t, TypeInt, d.Type(0))
	f, err = d.Float(0)
	require.NoError(t, err)
	assert.Equal(t, 42.0, f)
}

// TestDiagnostics verifies coding-path rendering from entry indices and
// on decode errors.
func TestDiagnostics(t *testing.T) {
	// {"users": [{"name": "ada"}]}
	e := NewEncoder()
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.WriteKey("users"))
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.WriteKey("name"))
	require.NoError(t, e.WriteString("ada"))
	require.NoError(t, e.EndAllContainers())
	doc, err := e.EndDocument()
	require.NoError(t, err)

	d := mustDecode(t, doc)
	users, err := d.Lookup(0, "users")
	require.NoError(t, err)
	obj, err := d.ChildAt(users, 0)
	require.NoError(t, err)
	name, err := d.Lookup(obj, "name")
	require.NoError(t, err)
	assert.Equal(t, "$.users[0].name", d.Diagnostics(name))
	assert.Equal(t, "$", d.Diagnostics(0))

	// A decode error inside a nested value carries its path.
	bad := []byte{0xB5, 0x66, 'a', 0xB4, 0xA8, 0xB6, 0xB6}
	_, err = Decode(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.a[0]")
	assert.Equal(t, ErrInvalidTypeCode, KindOf(err))
}

// TestDump sanity-checks the diagnostic rendering.
func TestDump(t *testing.T) {
	d := mustDecode(t, []byte{0xB5, 0x66, 'a', 0xB4, 0x01, 0xB9, 0xB6, 0xB6})
	assert.Equal(t, `{"a":[1,false]}`, d.Dump(0))
}
