// Copyright (c) 2025 SciGo BONJSON Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Package bonjson provides a pure Go codec for the BONJSON binary
// serialization format: a stream encoder with write-time limit
// enforcement and record-mode detection, and a single-pass decoder that
// builds an index-addressed position map for O(1) random access.
package bonjson

import (
	"math"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/scigolib/bonjson/internal/scan"
	"github.com/scigolib/bonjson/internal/wire"
)

// Type is the logical type of a decoded node.
type Type uint8

// Node types.
const (
	TypeInvalid Type = iota
	TypeNull
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
	TypeBigNumber
	TypeString
	TypeArray
	TypeObject
)

var typeNames = [...]string{"invalid", "null", "bool", "int", "uint", "float", "bignumber", "string", "array", "object"}

// String returns the lower-case type name.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// stringCacheSize bounds the cache of materialized (repaired, normalized,
// or chunk-assembled) strings, keyed by (offset, length).
const stringCacheSize = 256

// Document is a decoded BONJSON document: the position map plus
// value-oriented access. Reads are pure except for the lazy key index and
// string cache, so a Document is not safe to share across goroutines
// without external synchronisation. The input byte slice must not be
// mutated while the Document is in use.
type Document struct {
	m        *scan.Map
	keyIdx   map[int]map[string]int
	strCache *lru.Cache[uint64, string]
}

// Decode scans data once and returns a navigable document. On failure no
// document is returned; the error carries the byte offset and coding path
// where the failure was detected.
func Decode(data []byte, opts ...Option) (*Document, error) {
	return DecodeWithOptions(data, buildOptions(opts))
}

// DecodeWithOptions is Decode with a prebuilt Options value.
func DecodeWithOptions(data []byte, o Options) (*Document, error) {
	m, err := scan.Scan(data, o)
	if err != nil {
		return nil, err
	}
	return &Document{m: m}, nil
}

// Root returns the root node index. The root is always index 0.
func (d *Document) Root() int { return d.m.Root() }

// Len returns the number of position-map entries.
func (d *Document) Len() int { return len(d.m.Entries) }

// EncodedLen returns the size of the underlying document in bytes.
func (d *Document) EncodedLen() int { return len(d.m.Data) }

func (d *Document) entry(i int) *scan.Entry {
	if i < 0 || i >= len(d.m.Entries) {
		return nil
	}
	return &d.m.Entries[i]
}

// Type returns the logical type of the node at index i, or TypeInvalid
// when i is out of range. BigNumbers stringified by policy report
// TypeString.
func (d *Document) Type(i int) Type {
	e := d.entry(i)
	if e == nil {
		return TypeInvalid
	}
	switch e.Kind {
	case scan.KindNull:
		return TypeNull
	case scan.KindBool:
		return TypeBool
	case scan.KindInt:
		return TypeInt
	case scan.KindUint:
		return TypeUint
	case scan.KindFloat:
		return TypeFloat
	case scan.KindBigNumber:
		if e.Flags&scan.FlagStringified != 0 {
			return TypeString
		}
		return TypeBigNumber
	case scan.KindString:
		return TypeString
	case scan.KindArray:
		return TypeArray
	case scan.KindObject:
		return TypeObject
	}
	return TypeInvalid
}

func (d *Document) mismatch(i int, want string) error {
	return wire.Errorf(wire.KindTypeMismatch, -1, "node %d is %s, not %s", i, d.Type(i), want).
		WithPath(d.pathTo(i))
}

// Bool returns the boolean at index i.
func (d *Document) Bool(i int) (bool, error) {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindBool {
		return false, d.mismatch(i, "bool")
	}
	return e.Bits != 0, nil
}

// Int returns the integer at index i as int64. Unsigned nodes convert
// when they fit.
func (d *Document) Int(i int) (int64, error) {
	e := d.entry(i)
	if e == nil {
		return 0, d.mismatch(i, "int")
	}
	switch e.Kind {
	case scan.KindInt:
		return int64(e.Bits), nil
	case scan.KindUint:
		if e.Bits > math.MaxInt64 {
			return 0, wire.Errorf(wire.KindValueOutOfRange, -1, "%d overflows int64", e.Bits).
				WithPath(d.pathTo(i))
		}
		return int64(e.Bits), nil
	}
	return 0, d.mismatch(i, "int")
}

// Uint returns the integer at index i as uint64. Signed nodes convert
// when non-negative.
func (d *Document) Uint(i int) (uint64, error) {
	e := d.entry(i)
	if e == nil {
		return 0, d.mismatch(i, "uint")
	}
	switch e.Kind {
	case scan.KindUint:
		return e.Bits, nil
	case scan.KindInt:
		v := int64(e.Bits)
		if v < 0 {
			return 0, wire.Errorf(wire.KindValueOutOfRange, -1, "%d is negative", v).
				WithPath(d.pathTo(i))
		}
		return uint64(v), nil
	}
	return 0, d.mismatch(i, "uint")
}

// Float returns the float at index i. Integer nodes convert; under the
// stringify policy the configured non-finite spellings convert back to
// their float values.
func (d *Document) Float(i int) (float64, error) {
	e := d.entry(i)
	if e == nil {
		return 0, d.mismatch(i, "float")
	}
	switch e.Kind {
	case scan.KindFloat:
		return math.Float64frombits(e.Bits), nil
	case scan.KindInt:
		return float64(int64(e.Bits)), nil
	case scan.KindUint:
		return float64(e.Bits), nil
	case scan.KindString:
		if d.m.Opts.NonFinite == NonFiniteStringify {
			if f, ok := d.nonFiniteFromString(i); ok {
				return f, nil
			}
		}
	}
	return 0, d.mismatch(i, "float")
}

func (d *Document) nonFiniteFromString(i int) (float64, bool) {
	s := d.stringAt(i)
	switch s {
	case d.m.Opts.NonFiniteNaN():
		return math.NaN(), true
	case d.m.Opts.NonFinitePos():
		return math.Inf(1), true
	case d.m.Opts.NonFiniteNeg():
		return math.Inf(-1), true
	}
	return 0, false
}

// BigNumber returns the arbitrary-precision decimal at index i. It also
// serves nodes stringified by the range policy, returning the underlying
// number.
func (d *Document) BigNumber(i int) (BigNumber, error) {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindBigNumber {
		return BigNumber{}, d.mismatch(i, "bignumber")
	}
	bn, _, err := wire.DecodeBigNumber(d.m.Data, e.Offset)
	if err != nil {
		return BigNumber{}, err
	}
	return bn.Normalize(), nil
}

// String returns the string at index i, with UTF-8 repair and Unicode
// normalization applied per the policy. BigNumbers stringified by the
// range policy render as [-]<significand>[e<exp>].
func (d *Document) String(i int) (string, error) {
	e := d.entry(i)
	if e == nil {
		return "", d.mismatch(i, "string")
	}
	if e.Kind == scan.KindBigNumber && e.Flags&scan.FlagStringified != 0 {
		bn, _, err := wire.DecodeBigNumber(d.m.Data, e.Offset)
		if err != nil {
			return "", err
		}
		return bn.Normalize().String(), nil
	}
	if e.Kind != scan.KindString {
		return "", d.mismatch(i, "string")
	}
	return d.stringAt(i), nil
}

// stringAt materializes a string entry, caching transformed forms.
func (d *Document) stringAt(i int) string {
	e := &d.m.Entries[i]
	transformed := e.Flags&(scan.FlagChunked|scan.FlagNeedsRepair) != 0 ||
		d.m.Opts.Normalization == wire.NormalizationNFC
	if !transformed {
		return string(d.m.Data[e.Offset : e.Offset+int64(e.Count)])
	}
	key := uint64(e.Offset)<<32 | uint64(uint32(e.Count))
	if d.strCache == nil {
		d.strCache, _ = lru.New[uint64, string](stringCacheSize)
	} else if s, ok := d.strCache.Get(key); ok {
		return s
	}
	s := d.m.StringValue(i)
	d.strCache.Add(key, s)
	return s
}

// ArrayLen returns the element count of the array at index i.
func (d *Document) ArrayLen(i int) (int, error) {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindArray {
		return 0, d.mismatch(i, "array")
	}
	return int(e.Count), nil
}

// ObjectLen returns the number of key-value pairs of the object at
// index i.
func (d *Document) ObjectLen(i int) (int, error) {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindObject {
		return 0, d.mismatch(i, "object")
	}
	return int(e.Count) / 2, nil
}

// ChildAt returns the index of the k-th element of the array at index i.
// It walks the sibling table, costing O(k); sequential traversal should
// use Children instead.
func (d *Document) ChildAt(i, k int) (int, error) {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindArray {
		return 0, d.mismatch(i, "array")
	}
	if k < 0 || k >= int(e.Count) {
		return 0, wire.Errorf(wire.KindValueOutOfRange, -1, "index %d of %d", k, e.Count).
			WithPath(d.pathTo(i))
	}
	child := i + 1
	for ; k > 0; k-- {
		child = int(d.m.NextSibling[child])
	}
	return child, nil
}

// Diagnostics returns the resolved coding path of the node at index i,
// for error messages.
func (d *Document) Diagnostics(i int) string {
	return d.pathTo(i).String()
}

// pathTo reconstructs a node's coding path by descending from the root
// through the containers whose subtree spans the index.
func (d *Document) pathTo(target int) *wire.PathSegment {
	if target <= 0 || target >= len(d.m.Entries) {
		return nil
	}
	var p *wire.PathSegment
	cur := 0
	for cur != target {
		e := &d.m.Entries[cur]
		switch e.Kind {
		case scan.KindArray:
			child := cur + 1
			idx := 0
			for int(d.m.NextSibling[child]) <= target {
				child = int(d.m.NextSibling[child])
				idx++
			}
			p = p.Child(idx)
			cur = child
		case scan.KindObject:
			key := cur + 1
			for {
				value := key + 1
				next := int(d.m.NextSibling[value])
				if target == key || target < next {
					p = p.ChildKey(d.stringAt(key))
					if target == key {
						return p
					}
					cur = value
					break
				}
				key = next
			}
		default:
			return p
		}
	}
	return p
}

// Dump returns a compact JSON-ish rendering of the subtree at index i,
// intended for diagnostics and error messages, not for interchange.
func (d *Document) Dump(i int) string {
	var b strings.Builder
	d.render(i, &b)
	return b.String()
}

func (d *Document) render(i int, b *strings.Builder) {
	switch d.Type(i) {
	case TypeNull:
		b.WriteString("null")
	case TypeBool:
		v, _ := d.Bool(i)
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case TypeString:
		s, _ := d.String(i)
		b.WriteString("\"" + s + "\"")
	case TypeArray:
		b.WriteByte('[')
		it := d.Children(i)
		first := true
		for c, ok := it.Next(); ok; c, ok = it.Next() {
			if !first {
				b.WriteByte(',')
			}
			first = false
			d.render(c, b)
		}
		b.WriteByte(']')
	case TypeObject:
		b.WriteByte('{')
		it := d.Pairs(i)
		first := true
		for k, v, ok := it.Next(); ok; k, v, ok = it.Next() {
			if !first {
				b.WriteByte(',')
			}
			first = false
			d.render(k, b)
			b.WriteByte(':')
			d.render(v, b)
		}
		b.WriteByte('}')
	default:
		d.renderScalar(i, b)
	}
}

func (d *Document) renderScalar(i int, b *strings.Builder) {
	switch d.Type(i) {
	case TypeInt:
		v, _ := d.Int(i)
		b.WriteString(strconv.FormatInt(v, 10))
	case TypeUint:
		v, _ := d.Uint(i)
		b.WriteString(strconv.FormatUint(v, 10))
	case TypeFloat:
		v, _ := d.Float(i)
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case TypeBigNumber:
		bn, _ := d.BigNumber(i)
		b.WriteString(bn.String())
	}
}
