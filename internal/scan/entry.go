// Package scan implements the single-pass BONJSON scanner and the position
// map it produces: a preorder-indexed entry table with precomputed subtree
// sizes, supporting O(1) node addressing and O(1)-per-step sibling
// traversal.
package scan

import (
	"github.com/scigolib/bonjson/internal/wire"
	"golang.org/x/text/unicode/norm"
)

// Kind is the stored class of one position-map entry.
type Kind uint8

// Entry kinds.
const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindBigNumber
	KindString
	KindArray
	KindObject
)

// Entry flags.
const (
	// FlagChunked marks a string stored as multiple chunks; Offset points
	// at the first chunk header instead of contiguous payload bytes.
	FlagChunked uint8 = 1 << iota
	// FlagNeedsRepair marks a string whose bytes are malformed UTF-8 and
	// must be repaired on materialization per the policy.
	FlagNeedsRepair
	// FlagStringified marks a BigNumber that exceeded a configured cap
	// under the stringify policy; it reads as a rendered string.
	FlagStringified
	// FlagPacked marks an array that arrived in the typed (packed) wire
	// form; Bits holds the element type so re-encoding can keep it.
	FlagPacked
)

// Entry is one position-map slot. The table is laid out in preorder:
// a container at index i owns entries [i+1, i+Sub), and the next sibling
// of the subtree rooted at i sits at i+Sub.
type Entry struct {
	// Offset is the payload byte offset for strings and BigNumbers.
	Offset int64
	// Bits holds the value payload: bool (0/1), int64 bits, uint64, or
	// float64 bits, depending on Kind.
	Bits uint64
	// Sub is the subtree size in entries, at least 1.
	Sub int32
	// Count is the child entry count for containers (objects count keys
	// and values separately) and the wire byte length for strings.
	Count int32
	Kind  Kind
	Flags uint8
}

// Map is the scan result: the entry table, the sibling-index table, and a
// read-only view of the input bytes, which must outlive the map.
type Map struct {
	Data        []byte
	Entries     []Entry
	NextSibling []int32
	Opts        wire.Options
}

// Root returns the root entry index.
func (m *Map) Root() int { return 0 }

// rawString returns the wire bytes of a string entry, assembling chunks
// into a fresh buffer when necessary.
func (m *Map) rawString(e *Entry) []byte {
	if e.Flags&FlagChunked == 0 {
		return m.Data[e.Offset : e.Offset+int64(e.Count)]
	}
	out := make([]byte, 0, e.Count)
	pos := e.Offset
	for {
		payload, n, err := wire.DecodeLength(m.Data, pos)
		if err != nil {
			// The scanner validated the chunk chain; this is unreachable
			// on a map it produced.
			return out
		}
		pos += int64(n)
		ln := int64(payload >> 1)
		out = append(out, m.Data[pos:pos+ln]...)
		pos += ln
		if payload&1 == 0 {
			return out
		}
	}
}

// StringValue materializes the string at entry index i, applying UTF-8
// repair and Unicode normalization per the map's policy. The caller is
// responsible for checking that the entry is a string.
func (m *Map) StringValue(i int) string {
	s := m.WireString(i)
	if m.Opts.Normalization == wire.NormalizationNFC {
		s = norm.NFC.String(s)
	}
	return s
}

// WireString materializes the string at entry index i with UTF-8 repair
// applied but without Unicode normalization: the value as it should be
// put back on the wire.
func (m *Map) WireString(i int) string {
	e := &m.Entries[i]
	b := m.rawString(e)
	if e.Flags&FlagNeedsRepair != 0 {
		b = wire.RepairUTF8(b, m.Opts.InvalidUTF8)
	}
	return string(b)
}

// PlainKeyBytes returns the raw bytes of a string entry when they can be
// compared directly (contiguous, well formed, no normalization active).
func (m *Map) PlainKeyBytes(i int) ([]byte, bool) {
	e := &m.Entries[i]
	if e.Flags&(FlagChunked|FlagNeedsRepair) != 0 || m.Opts.Normalization != wire.NormalizationNone {
		return nil, false
	}
	return m.Data[e.Offset : e.Offset+int64(e.Count)], true
}
