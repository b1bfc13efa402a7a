// Copyright (c) 2025 SciGo BONJSON Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package bonjson

import "github.com/scigolib/bonjson/internal/scan"

// ArrayIter walks the elements of an array, maintaining a running sibling
// cursor so each step is O(1).
type ArrayIter struct {
	d         *Document
	next      int
	remaining int
}

// Children returns an element cursor for the array at index i. A
// non-array index yields an empty cursor.
func (d *Document) Children(i int) *ArrayIter {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindArray {
		return &ArrayIter{d: d}
	}
	return &ArrayIter{d: d, next: i + 1, remaining: int(e.Count)}
}

// Next returns the next element index, or false when exhausted.
func (it *ArrayIter) Next() (int, bool) {
	if it.remaining == 0 {
		return 0, false
	}
	idx := it.next
	it.next = int(it.d.m.NextSibling[idx])
	it.remaining--
	return idx, true
}

// PairIter walks the key-value pairs of an object with an O(1) step.
type PairIter struct {
	d         *Document
	next      int
	remaining int // pairs left
}

// Pairs returns a pair cursor for the object at index i. A non-object
// index yields an empty cursor.
func (d *Document) Pairs(i int) *PairIter {
	e := d.entry(i)
	if e == nil || e.Kind != scan.KindObject {
		return &PairIter{d: d}
	}
	return &PairIter{d: d, next: i + 1, remaining: int(e.Count) / 2}
}

// Next returns the next key and value entry indices, or false when
// exhausted.
func (it *PairIter) Next() (key, value int, ok bool) {
	if it.remaining == 0 {
		return 0, 0, false
	}
	key = it.next
	value = key + 1
	it.next = int(it.d.m.NextSibling[value])
	it.remaining--
	return key, value, true
}
