package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAppendString_ShortForm pins the inline-length encoding.
func TestAppendString_ShortForm(t *testing.T) {
	assert.Equal(t, []byte{0x65}, AppendString(nil, nil))
	assert.Equal(t, []byte{0x6A, 'h', 'e', 'l', 'l', 'o'}, AppendString(nil, []byte("hello")))

	max := strings.Repeat("x", MaxShortStringLen)
	enc := AppendString(nil, []byte(max))
	assert.Equal(t, byte(0x9B), enc[0])
	assert.Len(t, enc, 1+MaxShortStringLen)
}

// TestAppendString_LongForm verifies the marker plus terminal chunk.
func TestAppendString_LongForm(t *testing.T) {
	s := strings.Repeat("y", MaxShortStringLen+1)
	enc := AppendString(nil, []byte(s))
	require.Equal(t, byte(CodeLongString), enc[0])
	payload, n, err := DecodeLength(enc, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(s))<<1, payload, "terminal chunk: continuation bit clear")
	assert.Equal(t, s, string(enc[1+n:]))
	assert.Equal(t, StringEncodedSize(len(s)), len(enc))
}

// TestAppendStringChunk verifies continuation flags.
func TestAppendStringChunk(t *testing.T) {
	enc := AppendStringChunk(nil, []byte("ab"), true)
	payload, _, err := DecodeLength(enc, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), payload&1)
	assert.Equal(t, uint64(2), payload>>1)

	enc = AppendStringChunk(nil, []byte("cd"), false)
	payload, _, err = DecodeLength(enc, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), payload&1)
}

// TestCheckString covers NUL and UTF-8 policy outcomes.
func TestCheckString(t *testing.T) {
	opts := DefaultOptions()

	repair, err := CheckString([]byte("ok"), 0, &opts)
	require.NoError(t, err)
	assert.False(t, repair)

	_, err = CheckString([]byte("a\x00b"), 0, &opts)
	require.Error(t, err)
	assert.Equal(t, KindNulInString, err.(*Error).Kind)

	opts.NulInString = NulAllow
	_, err = CheckString([]byte("a\x00b"), 0, &opts)
	require.NoError(t, err)

	_, err = CheckString([]byte{0xFF, 0xFE}, 0, &opts)
	require.Error(t, err)
	assert.Equal(t, KindInvalidUTF8, err.(*Error).Kind)

	opts.InvalidUTF8 = UTF8Replace
	repair, err = CheckString([]byte{0xFF, 0xFE}, 0, &opts)
	require.NoError(t, err)
	assert.True(t, repair)

	// Surrogate halves are malformed UTF-8.
	opts.InvalidUTF8 = UTF8Reject
	_, err = CheckString([]byte{0xED, 0xA0, 0x80}, 0, &opts)
	require.Error(t, err)
	assert.Equal(t, KindInvalidUTF8, err.(*Error).Kind)
}

// TestRepairUTF8 covers both repair strategies.
func TestRepairUTF8(t *testing.T) {
	in := []byte{'a', 0xFF, 'b'}
	assert.Equal(t, "a�b", string(RepairUTF8(in, UTF8Replace)))
	assert.Equal(t, "ab", string(RepairUTF8(in, UTF8Delete)))

	// Multi-byte sequences survive untouched.
	assert.Equal(t, "héllo", string(RepairUTF8([]byte("héllo"), UTF8Replace)))
}

// TestErrorRendering sanity-checks kind names and path flattening.
func TestErrorRendering(t *testing.T) {
	var p *PathSegment
	p = p.ChildKey("users").Child(3).ChildKey("name")
	assert.Equal(t, "$.users[3].name", p.String())

	err := Errorf(KindDuplicateKey, 12, "key %q", "a").WithPath(p)
	assert.Contains(t, err.Error(), "duplicate_key")
	assert.Contains(t, err.Error(), "$.users[3].name")
	assert.Contains(t, err.Error(), "offset 12")
}
