// Copyright (c) 2025 SciGo BONJSON Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package bonjson

import (
	"github.com/scigolib/bonjson/internal/wire"
	"github.com/scigolib/bonjson/internal/writer"
)

// Encoder serializes a value tree to BONJSON bytes. It owns a single
// growable buffer; the bytes are handed over by EndDocument and the
// encoder may not be reused afterwards.
//
// Write operations are strictly sequential: the byte stream is a function
// of the exact call sequence. After the first failure every subsequent
// operation returns the same error and EndDocument never exposes the
// partial buffer.
//
// Not safe for concurrent use.
type Encoder struct {
	enc *writer.Encoder
}

// NewEncoder creates an encoder with the given policy options and begins
// the document.
func NewEncoder(opts ...Option) *Encoder {
	return &Encoder{enc: writer.New(buildOptions(opts))}
}

// NewEncoderWithOptions creates an encoder from a prebuilt Options value.
func NewEncoderWithOptions(o Options) *Encoder {
	return &Encoder{enc: writer.New(o)}
}

// WriteNull writes a null value.
func (e *Encoder) WriteNull() error { return e.enc.WriteNull() }

// WriteBool writes a boolean value.
func (e *Encoder) WriteBool(v bool) error { return e.enc.WriteBool(v) }

// WriteInt writes a signed integer in its minimum-width form.
func (e *Encoder) WriteInt(v int64) error { return e.enc.WriteInt(v) }

// WriteUint writes an unsigned integer in its minimum-width form.
func (e *Encoder) WriteUint(v uint64) error { return e.enc.WriteUint(v) }

// WriteFloat writes a float in its narrowest lossless width; whole numbers
// inside the integer range take the integer form. Non-finite values follow
// the configured policy.
func (e *Encoder) WriteFloat(v float64) error { return e.enc.WriteFloat(v) }

// WriteBigNumber writes an arbitrary-precision decimal.
func (e *Encoder) WriteBigNumber(bn BigNumber) error { return e.enc.WriteBigNumber(bn) }

// WriteString writes a string value, or an object key when one is
// expected.
func (e *Encoder) WriteString(s string) error { return e.enc.WriteString(s) }

// WriteKey writes an object key.
func (e *Encoder) WriteKey(s string) error { return e.enc.WriteKey(s) }

// BeginArray opens an array.
func (e *Encoder) BeginArray() error { return e.enc.BeginArray() }

// BeginObject opens an object.
func (e *Encoder) BeginObject() error { return e.enc.BeginObject() }

// EndContainer closes the innermost open container.
func (e *Encoder) EndContainer() error { return e.enc.EndContainer() }

// EndAllContainers closes every open container.
func (e *Encoder) EndAllContainers() error { return e.enc.EndAllContainers() }

// EndDocument finalizes the document and returns the encoded bytes.
func (e *Encoder) EndDocument() ([]byte, error) { return e.enc.EndDocument() }

// Err returns the sticky error, if any.
func (e *Encoder) Err() error { return e.enc.Err() }

// WriteRecordDef writes a record definition and returns its index for use
// with BeginRecordInstance.
func (e *Encoder) WriteRecordDef(keys []string) (int, error) { return e.enc.WriteRecordDef(keys) }

// BeginRecordDef opens a streaming record definition; keys are supplied
// as string writes and EndRecordDef seals it.
func (e *Encoder) BeginRecordDef() error { return e.enc.BeginRecordDef() }

// EndRecordDef seals the open record definition and returns its index.
func (e *Encoder) EndRecordDef() (int, error) { return e.enc.EndRecordDef() }

// BeginRecordInstance opens a key-less instance of a previously written
// record definition; the body must supply exactly one value per key, in
// definition order, and is closed with EndRecordInstance or EndContainer.
func (e *Encoder) BeginRecordInstance(def int) error { return e.enc.BeginRecordInstance(def) }

// EndRecordInstance closes the innermost container, which must be a
// record instance.
func (e *Encoder) EndRecordInstance() error { return e.enc.EndRecordInstance() }

// Typed-array batch writers: one type code, one element count, packed
// little-endian elements. The symmetric fast path to the typed readers.

// WriteInt8Array writes a packed array of int8 values.
func (e *Encoder) WriteInt8Array(v []int8) error { return e.enc.WriteInt8Array(v) }

// WriteInt16Array writes a packed array of int16 values.
func (e *Encoder) WriteInt16Array(v []int16) error { return e.enc.WriteInt16Array(v) }

// WriteInt32Array writes a packed array of int32 values.
func (e *Encoder) WriteInt32Array(v []int32) error { return e.enc.WriteInt32Array(v) }

// WriteInt64Array writes a packed array of int64 values.
func (e *Encoder) WriteInt64Array(v []int64) error { return e.enc.WriteInt64Array(v) }

// WriteUint8Array writes a packed array of uint8 values.
func (e *Encoder) WriteUint8Array(v []uint8) error { return e.enc.WriteUint8Array(v) }

// WriteUint16Array writes a packed array of uint16 values.
func (e *Encoder) WriteUint16Array(v []uint16) error { return e.enc.WriteUint16Array(v) }

// WriteUint32Array writes a packed array of uint32 values.
func (e *Encoder) WriteUint32Array(v []uint32) error { return e.enc.WriteUint32Array(v) }

// WriteUint64Array writes a packed array of uint64 values.
func (e *Encoder) WriteUint64Array(v []uint64) error { return e.enc.WriteUint64Array(v) }

// WriteFloat32Array writes a packed array of float32 values.
func (e *Encoder) WriteFloat32Array(v []float32) error { return e.enc.WriteFloat32Array(v) }

// WriteFloat64Array writes a packed array of float64 values.
func (e *Encoder) WriteFloat64Array(v []float64) error { return e.enc.WriteFloat64Array(v) }

// WriteBoolArray writes a packed array of booleans.
func (e *Encoder) WriteBoolArray(v []bool) error { return e.enc.WriteBoolArray(v) }

// WriteStringArray writes an array of strings through the batch surface.
func (e *Encoder) WriteStringArray(v []string) error { return e.enc.WriteStringArray(v) }

// encoderFor hands Document.Reencode a stream encoder with adjusted
// policy options.
func encoderFor(o wire.Options) *writer.Encoder { return writer.New(o) }
