package writer

import (
	"testing"

	"github.com/scigolib/bonjson/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ops replays the same producer call sequence into an encoder.
type op func(*Encoder) error

func replay(t *testing.T, opts wire.Options, ops []op) []byte {
	t.Helper()
	e := New(opts)
	for _, o := range ops {
		require.NoError(t, o(e))
	}
	return finish(t, e)
}

func key(s string) op      { return func(e *Encoder) error { return e.WriteKey(s) } }
func str(s string) op      { return func(e *Encoder) error { return e.WriteString(s) } }
func num(v int64) op       { return func(e *Encoder) error { return e.WriteInt(v) } }
func beginArr() op         { return (*Encoder).BeginArray }
func beginObj() op         { return (*Encoder).BeginObject }
func end() op              { return (*Encoder).EndContainer }

// autoAndPlain encodes the sequence with and without AutoRecords.
func autoAndPlain(t *testing.T, ops []op) (auto, plain []byte) {
	t.Helper()
	withAuto := wire.DefaultOptions()
	withAuto.AutoRecords = true
	return replay(t, withAuto, ops), replay(t, wire.DefaultOptions(), ops)
}

// TestRecordProbe_Commit verifies a homogeneous array of objects becomes a
// definition plus key-less instances.
func TestRecordProbe_Commit(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("a"), num(1), key("b"), num(2), end(),
		beginObj(), key("a"), num(3), key("b"), num(4), end(),
		end(),
	}
	auto, _ := autoAndPlain(t, ops)
	want := []byte{
		0xB4,
		0xBB, 0x66, 'a', 0x66, 'b', 0xB6,
		0xBA, 0x00, 0x01, 0x02, 0xB6,
		0xBA, 0x00, 0x03, 0x04, 0xB6,
		0xB6,
	}
	assert.Equal(t, want, auto)
}

// TestRecordProbe_SingleInstance falls back to plain encoding: one object
// does not pay for a definition.
func TestRecordProbe_SingleInstance(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("a"), num(1), end(),
		end(),
	}
	auto, plain := autoAndPlain(t, ops)
	assert.Equal(t, plain, auto)
	assert.Equal(t, []byte{0xB4, 0xB5, 0x66, 'a', 0x01, 0xB6, 0xB6}, auto)
}

// TestRecordProbe_KeyDivergence rewinds when a later element renames a key.
func TestRecordProbe_KeyDivergence(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("a"), num(1), key("b"), num(2), end(),
		beginObj(), key("a"), num(3), key("c"), num(4), end(),
		end(),
	}
	auto, plain := autoAndPlain(t, ops)
	assert.Equal(t, plain, auto, "divergence must reproduce plain bytes exactly")
}

// TestRecordProbe_ShortInstance rewinds when a later element drops a key.
func TestRecordProbe_ShortInstance(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("a"), num(1), key("b"), num(2), end(),
		beginObj(), key("a"), num(3), end(),
		end(),
	}
	auto, plain := autoAndPlain(t, ops)
	assert.Equal(t, plain, auto)
}

// TestRecordProbe_ExtraKey rewinds when a later element appends a key.
func TestRecordProbe_ExtraKey(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("a"), num(1), end(),
		beginObj(), key("a"), num(2), key("b"), num(3), end(),
		end(),
	}
	auto, plain := autoAndPlain(t, ops)
	assert.Equal(t, plain, auto)
}

// TestRecordProbe_MixedElements rewinds when a non-object element appears.
func TestRecordProbe_MixedElements(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("a"), num(1), end(),
		beginObj(), key("a"), num(2), end(),
		num(7),
		end(),
	}
	auto, plain := autoAndPlain(t, ops)
	assert.Equal(t, plain, auto)
}

// TestRecordProbe_NonObjectFirst never probes scalar arrays.
func TestRecordProbe_NonObjectFirst(t *testing.T) {
	ops := []op{beginArr(), num(1), num(2), num(3), end()}
	auto, plain := autoAndPlain(t, ops)
	assert.Equal(t, plain, auto)
	assert.Equal(t, []byte{0xB4, 0x01, 0x02, 0x03, 0xB6}, auto)
}

// TestRecordProbe_EmptyArray stays the two-byte form.
func TestRecordProbe_EmptyArray(t *testing.T) {
	auto, plain := autoAndPlain(t, []op{beginArr(), end()})
	assert.Equal(t, plain, auto)
	assert.Equal(t, []byte{0xB4, 0xB6}, auto)
}

// TestRecordProbe_NestedContainerValues commits with container values
// spliced verbatim, and never opens a nested probe.
func TestRecordProbe_NestedContainerValues(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("xs"), beginArr(), num(1), num(2), end(), end(),
		beginObj(), key("xs"), beginArr(), num(3), end(), end(),
		end(),
	}
	auto, _ := autoAndPlain(t, ops)
	want := []byte{
		0xB4,
		0xBB, 0x67, 'x', 's', 0xB6,
		0xBA, 0x00, 0xB4, 0x01, 0x02, 0xB6, 0xB6,
		0xBA, 0x00, 0xB4, 0x03, 0xB6, 0xB6,
		0xB6,
	}
	assert.Equal(t, want, auto)
}

// TestRecordProbe_DivergenceWithStringValues exercises the splice with
// variable-width values.
func TestRecordProbe_DivergenceWithStringValues(t *testing.T) {
	ops := []op{
		beginArr(),
		beginObj(), key("name"), str("ada"), key("role"), str("eng"), end(),
		beginObj(), key("name"), str("grace"), key("team"), str("core"), end(),
		end(),
	}
	auto, plain := autoAndPlain(t, ops)
	assert.Equal(t, plain, auto)
}

// TestRecordProbe_ExplicitDefDuringProbe rewinds before honouring the
// explicit API so definition numbering stays dense.
func TestRecordProbe_ExplicitDefDuringProbe(t *testing.T) {
	withAuto := wire.DefaultOptions()
	withAuto.AutoRecords = true
	e := New(withAuto)
	require.NoError(t, e.BeginArray())
	require.NoError(t, e.BeginObject())
	require.NoError(t, e.WriteKey("a"))
	require.NoError(t, e.WriteInt(1))
	require.NoError(t, e.EndContainer())

	def, err := e.WriteRecordDef([]string{"z"})
	require.NoError(t, err)
	assert.Equal(t, 0, def, "rewound probe must not have claimed an index")

	require.NoError(t, e.BeginRecordInstance(def))
	require.NoError(t, e.WriteInt(9))
	require.NoError(t, e.EndContainer())
	require.NoError(t, e.EndContainer())

	want := []byte{
		0xB4,
		0xB5, 0x66, 'a', 0x01, 0xB6,
		0xBB, 0x66, 'z', 0xB6,
		0xBA, 0x00, 0x09, 0xB6,
		0xB6,
	}
	assert.Equal(t, want, finish(t, e))
}

// TestRecordProbe_DeepProbeOnlyOnce verifies that an array as the first
// element ends the outer probe, so the inner array probes and commits.
func TestRecordProbe_DeepProbeOnlyOnce(t *testing.T) {
	inner := []op{
		beginObj(), key("v"), num(1), end(),
		beginObj(), key("v"), num(2), end(),
	}
	ops := append([]op{beginArr()}, inner...)
	ops = append(ops, end())
	auto, _ := autoAndPlain(t, ops)

	// The same two objects nested one array deeper: the outer probe is
	// killed by the array element, and the inner array is free to probe.
	nested := []op{beginArr(), beginArr()}
	nested = append(nested, inner...)
	nested = append(nested, end(), end())
	autoNested, _ := autoAndPlain(t, nested)

	want := append([]byte{0xB4}, auto...)
	want = append(want, 0xB6)
	assert.Equal(t, want, autoNested,
		"outer probe dies on the array element; the inner array still commits")
}
