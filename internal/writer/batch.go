package writer

import (
	"encoding/binary"
	"math"

	"github.com/scigolib/bonjson/internal/utils"
	"github.com/scigolib/bonjson/internal/wire"
)

// Typed-array batch writers: one type code, one length payload carrying
// the element count, then the packed little-endian elements. No
// per-element dispatch happens on either side of the wire.

// beginTypedArray performs the shared validation and emits the header.
func (e *Encoder) beginTypedArray(code byte, count, elemSize int) error {
	if _, err := e.prepareValue(vcOtherContainer); err != nil {
		return err
	}
	if err := e.checkDepth(); err != nil {
		return err
	}
	if count > e.opts.MaxContainerSize {
		return e.fail(wire.Errorf(wire.KindMaxContainerSizeExceeded, int64(len(e.buf)),
			"typed array has %d elements, limit %d", count, e.opts.MaxContainerSize))
	}
	if _, err := utils.SafeMultiply(uint64(count), uint64(elemSize)); err != nil {
		return e.fail(wire.NewError(wire.KindValueOutOfRange, int64(len(e.buf)), err.Error()))
	}
	e.buf = append(e.buf, code)
	e.buf = wire.AppendLength(e.buf, uint64(count))
	return nil
}

func (e *Encoder) finishTypedArray() error {
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

// WriteInt8Array writes a packed array of int8 values.
func (e *Encoder) WriteInt8Array(v []int8) error {
	if err := e.beginTypedArray(wire.CodeTypedInt8, len(v), 1); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = append(e.buf, byte(x))
	}
	return e.finishTypedArray()
}

// WriteInt16Array writes a packed array of int16 values.
func (e *Encoder) WriteInt16Array(v []int16) error {
	if err := e.beginTypedArray(wire.CodeTypedInt16, len(v), 2); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(x))
	}
	return e.finishTypedArray()
}

// WriteInt32Array writes a packed array of int32 values.
func (e *Encoder) WriteInt32Array(v []int32) error {
	if err := e.beginTypedArray(wire.CodeTypedInt32, len(v), 4); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(x))
	}
	return e.finishTypedArray()
}

// WriteInt64Array writes a packed array of int64 values.
func (e *Encoder) WriteInt64Array(v []int64) error {
	if err := e.beginTypedArray(wire.CodeTypedInt64, len(v), 8); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(x))
	}
	return e.finishTypedArray()
}

// WriteUint8Array writes a packed array of uint8 values.
func (e *Encoder) WriteUint8Array(v []uint8) error {
	if err := e.beginTypedArray(wire.CodeTypedUint8, len(v), 1); err != nil {
		return err
	}
	e.buf = append(e.buf, v...)
	return e.finishTypedArray()
}

// WriteUint16Array writes a packed array of uint16 values.
func (e *Encoder) WriteUint16Array(v []uint16) error {
	if err := e.beginTypedArray(wire.CodeTypedUint16, len(v), 2); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint16(e.buf, x)
	}
	return e.finishTypedArray()
}

// WriteUint32Array writes a packed array of uint32 values.
func (e *Encoder) WriteUint32Array(v []uint32) error {
	if err := e.beginTypedArray(wire.CodeTypedUint32, len(v), 4); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint32(e.buf, x)
	}
	return e.finishTypedArray()
}

// WriteUint64Array writes a packed array of uint64 values.
func (e *Encoder) WriteUint64Array(v []uint64) error {
	if err := e.beginTypedArray(wire.CodeTypedUint64, len(v), 8); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint64(e.buf, x)
	}
	return e.finishTypedArray()
}

// WriteFloat32Array writes a packed array of float32 values. Non-finite
// elements follow the non-finite policy; stringification is not available
// on the packed path.
func (e *Encoder) WriteFloat32Array(v []float32) error {
	if e.opts.NonFinite != wire.NonFiniteAllow {
		for _, x := range v {
			f := float64(x)
			if math.IsNaN(f) {
				return e.fail(wire.NewError(wire.KindNaNNotAllowed, int64(len(e.buf)), "NaN in typed array"))
			}
			if math.IsInf(f, 0) {
				return e.fail(wire.NewError(wire.KindInfinityNotAllowed, int64(len(e.buf)), "infinity in typed array"))
			}
		}
	}
	if err := e.beginTypedArray(wire.CodeTypedFloat32, len(v), 4); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(x))
	}
	return e.finishTypedArray()
}

// WriteFloat64Array writes a packed array of float64 values.
func (e *Encoder) WriteFloat64Array(v []float64) error {
	if e.opts.NonFinite != wire.NonFiniteAllow {
		for _, x := range v {
			if math.IsNaN(x) {
				return e.fail(wire.NewError(wire.KindNaNNotAllowed, int64(len(e.buf)), "NaN in typed array"))
			}
			if math.IsInf(x, 0) {
				return e.fail(wire.NewError(wire.KindInfinityNotAllowed, int64(len(e.buf)), "infinity in typed array"))
			}
		}
	}
	if err := e.beginTypedArray(wire.CodeTypedFloat64, len(v), 8); err != nil {
		return err
	}
	for _, x := range v {
		e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(x))
	}
	return e.finishTypedArray()
}

// WriteBoolArray writes a packed array of booleans, one byte per element.
func (e *Encoder) WriteBoolArray(v []bool) error {
	if err := e.beginTypedArray(wire.CodeTypedBool, len(v), 1); err != nil {
		return err
	}
	for _, x := range v {
		b := byte(0)
		if x {
			b = 1
		}
		e.buf = append(e.buf, b)
	}
	return e.finishTypedArray()
}

// WriteStringArray writes an array of strings. Strings have no fixed
// width, so this batches at the API level over the plain array form.
func (e *Encoder) WriteStringArray(v []string) error {
	if err := e.BeginArray(); err != nil {
		return err
	}
	for _, s := range v {
		if err := e.WriteString(s); err != nil {
			return err
		}
	}
	return e.EndContainer()
}
