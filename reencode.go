// Copyright (c) 2025 SciGo BONJSON Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package bonjson

import (
	"math"

	"github.com/scigolib/bonjson/internal/scan"
	"github.com/scigolib/bonjson/internal/wire"
)

// Reencode serializes the decoded document back to canonical bytes:
// minimum-width integers and floats, short string forms, single-chunk
// long strings, stripped BigNumber magnitudes. Record instances re-encode
// as plain objects, so a record-form input comes back longer; otherwise the
// result is never longer than an already-canonical input. The result is a
// fixed point of decode/encode.
func (d *Document) Reencode() ([]byte, error) {
	o := d.m.Opts
	// Values already admitted by the decode policy must re-encode even
	// where the write-time default would reject them.
	o.NonFinite = wire.NonFiniteAllow
	o.MaxBigNumberExponent = 0
	o.MaxBigNumberMagnitude = 0
	o.AutoRecords = false
	enc := encoderFor(o)
	if err := d.reencodeNode(enc, d.Root()); err != nil {
		return nil, err
	}
	return enc.EndDocument()
}

func (d *Document) reencodeNode(enc reencoder, i int) error {
	e := &d.m.Entries[i]
	switch e.Kind {
	case scan.KindNull:
		return enc.WriteNull()
	case scan.KindBool:
		return enc.WriteBool(e.Bits != 0)
	case scan.KindInt:
		return enc.WriteInt(int64(e.Bits))
	case scan.KindUint:
		return enc.WriteUint(e.Bits)
	case scan.KindFloat:
		return enc.WriteFloat(math.Float64frombits(e.Bits))
	case scan.KindBigNumber:
		bn, _, err := wire.DecodeBigNumber(d.m.Data, e.Offset)
		if err != nil {
			return err
		}
		return enc.WriteBigNumber(bn)
	case scan.KindString:
		return enc.WriteString(d.m.WireString(i))
	case scan.KindArray:
		if e.Flags&scan.FlagPacked != 0 {
			return d.reencodePacked(enc, i, wire.ElemType(e.Bits))
		}
		if err := enc.BeginArray(); err != nil {
			return err
		}
		it := d.Children(i)
		for c, ok := it.Next(); ok; c, ok = it.Next() {
			if err := d.reencodeNode(enc, c); err != nil {
				return err
			}
		}
		return enc.EndContainer()
	case scan.KindObject:
		if err := enc.BeginObject(); err != nil {
			return err
		}
		it := d.Pairs(i)
		for k, v, ok := it.Next(); ok; k, v, ok = it.Next() {
			if err := enc.WriteKey(d.m.WireString(k)); err != nil {
				return err
			}
			if err := d.reencodeNode(enc, v); err != nil {
				return err
			}
		}
		return enc.EndContainer()
	}
	return wire.Errorf(wire.KindInvalidData, -1, "entry %d has unknown kind", i)
}

// reencodePacked re-emits a typed array through the matching batch
// writer, keeping the packed wire form.
func (d *Document) reencodePacked(enc reencoder, i int, elem wire.ElemType) error {
	e := &d.m.Entries[i]
	n := int(e.Count)
	first := i + 1
	switch elem {
	case wire.ElemInt8:
		out := make([]int8, n)
		for k := range out {
			out[k] = int8(int64(d.m.Entries[first+k].Bits))
		}
		return enc.WriteInt8Array(out)
	case wire.ElemInt16:
		out := make([]int16, n)
		for k := range out {
			out[k] = int16(int64(d.m.Entries[first+k].Bits))
		}
		return enc.WriteInt16Array(out)
	case wire.ElemInt32:
		out := make([]int32, n)
		for k := range out {
			out[k] = int32(int64(d.m.Entries[first+k].Bits))
		}
		return enc.WriteInt32Array(out)
	case wire.ElemInt64:
		out := make([]int64, n)
		for k := range out {
			out[k] = int64(d.m.Entries[first+k].Bits)
		}
		return enc.WriteInt64Array(out)
	case wire.ElemUint8:
		out := make([]uint8, n)
		for k := range out {
			out[k] = uint8(d.m.Entries[first+k].Bits)
		}
		return enc.WriteUint8Array(out)
	case wire.ElemUint16:
		out := make([]uint16, n)
		for k := range out {
			out[k] = uint16(d.m.Entries[first+k].Bits)
		}
		return enc.WriteUint16Array(out)
	case wire.ElemUint32:
		out := make([]uint32, n)
		for k := range out {
			out[k] = uint32(d.m.Entries[first+k].Bits)
		}
		return enc.WriteUint32Array(out)
	case wire.ElemUint64:
		out := make([]uint64, n)
		for k := range out {
			out[k] = d.m.Entries[first+k].Bits
		}
		return enc.WriteUint64Array(out)
	case wire.ElemFloat32:
		out := make([]float32, n)
		for k := range out {
			out[k] = float32(math.Float64frombits(d.m.Entries[first+k].Bits))
		}
		return enc.WriteFloat32Array(out)
	case wire.ElemFloat64:
		out := make([]float64, n)
		for k := range out {
			out[k] = math.Float64frombits(d.m.Entries[first+k].Bits)
		}
		return enc.WriteFloat64Array(out)
	default:
		out := make([]bool, n)
		for k := range out {
			out[k] = d.m.Entries[first+k].Bits != 0
		}
		return enc.WriteBoolArray(out)
	}
}

// reencoder is the subset of the stream encoder Reencode drives.
type reencoder interface {
	WriteNull() error
	WriteBool(bool) error
	WriteInt(int64) error
	WriteUint(uint64) error
	WriteFloat(float64) error
	WriteBigNumber(wire.BigNumber) error
	WriteString(string) error
	WriteKey(string) error
	BeginArray() error
	BeginObject() error
	EndContainer() error
	EndDocument() ([]byte, error)
	WriteInt8Array([]int8) error
	WriteInt16Array([]int16) error
	WriteInt32Array([]int32) error
	WriteInt64Array([]int64) error
	WriteUint8Array([]uint8) error
	WriteUint16Array([]uint16) error
	WriteUint32Array([]uint32) error
	WriteUint64Array([]uint64) error
	WriteFloat32Array([]float32) error
	WriteFloat64Array([]float64) error
	WriteBoolArray([]bool) error
}
