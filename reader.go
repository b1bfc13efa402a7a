// Copyright (c) 2025 SciGo BONJSON Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package bonjson

import (
	"bytes"
	"math"

	"github.com/scigolib/bonjson/internal/scan"
	"github.com/scigolib/bonjson/internal/wire"
	"golang.org/x/text/unicode/norm"
)

// linearLookupPairs is the object size up to which key lookup scans the
// key byte ranges directly; larger objects build a hash index on first
// query.
const linearLookupPairs = 12

// Lookup returns the value entry index for key in the object at index i,
// or ErrKeyNotFound. Under the keep_first duplicate policy the earliest
// occurrence wins, under keep_last the latest.
func (d *Document) Lookup(i int, key string) (int, error) {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindObject {
		return 0, d.mismatch(i, "object")
	}
	cmp := key
	if d.m.Opts.Normalization == wire.NormalizationNFC {
		cmp = norm.NFC.String(key)
	}
	pairs := int(e.Count) / 2
	if pairs <= linearLookupPairs {
		return d.linearLookup(i, pairs, cmp)
	}
	return d.indexedLookup(i, pairs, cmp)
}

func (d *Document) linearLookup(i, pairs int, cmp string) (int, error) {
	keepLast := d.m.Opts.DuplicateKeys == wire.DuplicateKeyKeepLast
	found := -1
	keyIdx := i + 1
	for k := 0; k < pairs; k++ {
		valueIdx := keyIdx + 1
		if d.keyEquals(keyIdx, cmp) {
			found = valueIdx
			if !keepLast {
				return found, nil
			}
		}
		keyIdx = int(d.m.NextSibling[valueIdx])
	}
	if found >= 0 {
		return found, nil
	}
	return 0, wire.Errorf(wire.KindKeyNotFound, -1, "key %q", cmp).WithPath(d.pathTo(i))
}

// keyEquals compares the key entry against the query, using direct byte
// comparison when the stored bytes need no transformation.
func (d *Document) keyEquals(keyIdx int, cmp string) bool {
	if raw, ok := d.m.PlainKeyBytes(keyIdx); ok {
		return bytes.Equal(raw, []byte(cmp))
	}
	return d.stringAt(keyIdx) == cmp
}

func (d *Document) indexedLookup(i, pairs int, cmp string) (int, error) {
	if d.keyIdx == nil {
		d.keyIdx = make(map[int]map[string]int)
	}
	idx, ok := d.keyIdx[i]
	if !ok {
		keepFirst := d.m.Opts.DuplicateKeys != wire.DuplicateKeyKeepLast
		idx = make(map[string]int, pairs)
		keyIdx := i + 1
		for k := 0; k < pairs; k++ {
			valueIdx := keyIdx + 1
			s := d.stringAt(keyIdx)
			if _, seen := idx[s]; !seen || !keepFirst {
				idx[s] = valueIdx
			}
			keyIdx = int(d.m.NextSibling[valueIdx])
		}
		d.keyIdx[i] = idx
	}
	if v, ok := idx[cmp]; ok {
		return v, nil
	}
	return 0, wire.Errorf(wire.KindKeyNotFound, -1, "key %q", cmp).WithPath(d.pathTo(i))
}

// LookupString is Lookup followed by String.
func (d *Document) LookupString(i int, key string) (string, error) {
	v, err := d.Lookup(i, key)
	if err != nil {
		return "", err
	}
	return d.String(v)
}

// Typed batch readers: contiguous buffers filled straight from the entry
// table, the symmetric fast path to the encoder's batch writers.

func (d *Document) arrayBounds(i int) (*scan.Entry, error) {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindArray {
		return nil, d.mismatch(i, "array")
	}
	return e, nil
}

// ReadIntArray reads an array of integers into a contiguous []int64.
func (d *Document) ReadIntArray(i int) ([]int64, error) {
	e, err := d.arrayBounds(i)
	if err != nil {
		return nil, err
	}
	out := make([]int64, e.Count)
	idx := i + 1
	for k := range out {
		el := &d.m.Entries[idx]
		switch el.Kind {
		case scan.KindInt:
			out[k] = int64(el.Bits)
		case scan.KindUint:
			if el.Bits > math.MaxInt64 {
				return nil, wire.Errorf(wire.KindValueOutOfRange, -1, "%d overflows int64", el.Bits).
					WithPath(d.pathTo(idx))
			}
			out[k] = int64(el.Bits)
		default:
			return nil, d.mismatch(idx, "int")
		}
		idx = int(d.m.NextSibling[idx])
	}
	return out, nil
}

// ReadUintArray reads an array of non-negative integers into a contiguous
// []uint64.
func (d *Document) ReadUintArray(i int) ([]uint64, error) {
	e, err := d.arrayBounds(i)
	if err != nil {
		return nil, err
	}
	out := make([]uint64, e.Count)
	idx := i + 1
	for k := range out {
		el := &d.m.Entries[idx]
		switch el.Kind {
		case scan.KindUint:
			out[k] = el.Bits
		case scan.KindInt:
			v := int64(el.Bits)
			if v < 0 {
				return nil, wire.Errorf(wire.KindValueOutOfRange, -1, "%d is negative", v).
					WithPath(d.pathTo(idx))
			}
			out[k] = uint64(v)
		default:
			return nil, d.mismatch(idx, "uint")
		}
		idx = int(d.m.NextSibling[idx])
	}
	return out, nil
}

// ReadFloatArray reads an array of numbers into a contiguous []float64.
func (d *Document) ReadFloatArray(i int) ([]float64, error) {
	e, err := d.arrayBounds(i)
	if err != nil {
		return nil, err
	}
	out := make([]float64, e.Count)
	idx := i + 1
	for k := range out {
		el := &d.m.Entries[idx]
		switch el.Kind {
		case scan.KindFloat:
			out[k] = math.Float64frombits(el.Bits)
		case scan.KindInt:
			out[k] = float64(int64(el.Bits))
		case scan.KindUint:
			out[k] = float64(el.Bits)
		default:
			return nil, d.mismatch(idx, "float")
		}
		idx = int(d.m.NextSibling[idx])
	}
	return out, nil
}

// ReadBoolArray reads an array of booleans into a contiguous []bool.
func (d *Document) ReadBoolArray(i int) ([]bool, error) {
	e, err := d.arrayBounds(i)
	if err != nil {
		return nil, err
	}
	out := make([]bool, e.Count)
	idx := i + 1
	for k := range out {
		el := &d.m.Entries[idx]
		if el.Kind != scan.KindBool {
			return nil, d.mismatch(idx, "bool")
		}
		out[k] = el.Bits != 0
		idx = int(d.m.NextSibling[idx])
	}
	return out, nil
}

// ReadStringArray reads an array of strings into a contiguous []string.
func (d *Document) ReadStringArray(i int) ([]string, error) {
	e, err := d.arrayBounds(i)
	if err != nil {
		return nil, err
	}
	out := make([]string, e.Count)
	idx := i + 1
	for k := range out {
		s, err := d.String(idx)
		if err != nil {
			return nil, err
		}
		out[k] = s
		idx = int(d.m.NextSibling[idx])
	}
	return out, nil
}
