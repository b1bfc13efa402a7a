// Package writer implements the BONJSON stream encoder: a buffer-owning
// encoder with a container-frame stack, write-time limit enforcement,
// typed-array batch fast paths, and record-mode detection with
// savepoint-and-rewind rollback.
package writer

import (
	"math"

	"github.com/dolthub/maphash"
	"github.com/scigolib/bonjson/internal/wire"
	"golang.org/x/text/unicode/norm"
)

type containerKind uint8

const (
	kindArray containerKind = iota
	kindObject
	kindRecord // explicit record instance: values only
)

// valueClass drives record-probe transitions in prepareValue.
type valueClass uint8

const (
	vcPrimitive valueClass = iota
	vcString
	vcObjectBegin
	vcOtherContainer
)

type frame struct {
	kind      containerKind
	elems     int // children written: objects count keys and values, records count values
	expectKey bool
	lastKey   string
	keys      []string // comparison forms of keys seen, for duplicate detection
	dup       *keySet
	defKeys   []string // kindRecord: the definition's keys

	// Record-mode probing. On an array frame, probe is the active probe;
	// on an object frame, probed marks an element streamed under it.
	probe      *recordProbe
	probed     bool
	valueStart int // probed object: buffer offset of the in-progress value, -1 if none
}

// Encoder owns a single growable byte buffer and the container stack.
// Operations are strictly sequential; after the first failure the encoder
// is poisoned and every subsequent operation returns the same error.
type Encoder struct {
	buf    []byte
	opts   wire.Options
	stack  []frame
	defs   [][]string
	hasher maphash.Hasher[string]

	rootWritten bool
	finished    bool
	probing     bool
	defOpen     bool
	pendingDef  []string
	err         error
}

const initialBufferSize = 256

// New creates an encoder with the given policy. The document starts
// implicitly; EndDocument finalizes it and hands over the buffer.
func New(opts wire.Options) *Encoder {
	return &Encoder{
		buf:    make([]byte, 0, initialBufferSize),
		opts:   opts,
		hasher: maphash.NewHasher[string](),
	}
}

// Err returns the sticky error, if any.
func (e *Encoder) Err() error { return e.err }

func (e *Encoder) fail(err *wire.Error) error {
	if err.Path == nil {
		err.Path = e.path()
	}
	e.err = err
	return err
}

func (e *Encoder) top() *frame {
	if len(e.stack) == 0 {
		return nil
	}
	return &e.stack[len(e.stack)-1]
}

func (e *Encoder) path() *wire.PathSegment {
	var p *wire.PathSegment
	for i := range e.stack {
		f := &e.stack[i]
		switch {
		case f.kind == kindArray:
			p = p.Child(f.elems)
		case !f.expectKey && f.lastKey != "":
			p = p.ChildKey(f.lastKey)
		}
	}
	return p
}

// checkSize enforces the document-size limit over the bytes written so far.
func (e *Encoder) checkSize() error {
	if int64(len(e.buf)) > e.opts.MaxDocumentSize {
		return e.fail(wire.Errorf(wire.KindMaxDocumentSizeExceeded, int64(len(e.buf)),
			"document exceeds %d bytes", e.opts.MaxDocumentSize))
	}
	return nil
}

func (e *Encoder) checkDepth() error {
	if len(e.stack)+1 > e.opts.MaxDepth {
		return e.fail(wire.Errorf(wire.KindMaxDepthExceeded, int64(len(e.buf)),
			"nesting exceeds %d", e.opts.MaxDepth))
	}
	return nil
}

// prepareValue validates that a value may start here and performs any
// record-probe transition the value class forces. It must not be used for
// object keys.
func (e *Encoder) prepareValue(class valueClass) (*frame, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.finished {
		return nil, e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "document already finished"))
	}
	if e.defOpen {
		return nil, e.fail(wire.NewError(wire.KindInvalidObjectKey, int64(len(e.buf)),
			"record definitions hold only string keys"))
	}
	top := e.top()
	if top == nil {
		if e.rootWritten {
			return nil, e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "more than one root value"))
		}
		return nil, nil
	}
	if top.kind == kindObject && !top.probed && top.expectKey && top.probe == nil {
		if class != vcString {
			return nil, e.fail(wire.NewError(wire.KindInvalidObjectKey, int64(len(e.buf)),
				"non-string value where an object key is expected"))
		}
	}
	if top.probed && top.expectKey && class != vcString {
		return nil, e.fail(wire.NewError(wire.KindInvalidObjectKey, int64(len(e.buf)),
			"non-string value where an object key is expected"))
	}
	if top.kind == kindRecord && top.elems >= len(top.defKeys) {
		return nil, e.fail(wire.Errorf(wire.KindInvalidData, int64(len(e.buf)),
			"record instance already has %d values", len(top.defKeys)))
	}
	if top.probe != nil && !top.probed && class != vcObjectBegin {
		// A non-object element ends the probe: nothing recorded yet in
		// the first-element state, a full rewind otherwise.
		switch top.probe.state {
		case probeFirst:
			top.probe = nil
			e.probing = false
		case probeStream:
			if err := e.rollbackProbe(top); err != nil {
				return nil, err
			}
		}
	}
	if top.probed && top.valueStart < 0 {
		top.valueStart = len(e.buf)
	}
	return top, nil
}

// valueDone records the completion of one value in the enclosing container.
func (e *Encoder) valueDone() error {
	if len(e.stack) == 0 {
		e.rootWritten = true
		return nil
	}
	top := e.top()
	if top.probed && top.valueStart >= 0 {
		top.probe.cur = append(top.probe.cur, span{start: top.valueStart, end: len(e.buf)})
		top.valueStart = -1
	}
	top.elems++
	limit := top.elems
	if top.kind == kindRecord {
		limit *= 2
	}
	if limit > e.opts.MaxContainerSize {
		return e.fail(wire.Errorf(wire.KindMaxContainerSizeExceeded, int64(len(e.buf)),
			"container exceeds %d elements", e.opts.MaxContainerSize))
	}
	if top.kind == kindObject {
		top.expectKey = true
	}
	return nil
}

// prepareString applies the string policies: length limit, NUL handling,
// UTF-8 validation or repair. It returns the bytes to put on the wire.
func (e *Encoder) prepareString(s string) (string, error) {
	if len(s) > e.opts.MaxStringLength {
		return "", e.fail(wire.Errorf(wire.KindMaxStringLengthExceeded, int64(len(e.buf)),
			"string is %d bytes, limit %d", len(s), e.opts.MaxStringLength))
	}
	repair, err := wire.CheckString([]byte(s), int64(len(e.buf)), &e.opts)
	if err != nil {
		return "", e.fail(err.(*wire.Error))
	}
	if repair {
		s = string(wire.RepairUTF8([]byte(s), e.opts.InvalidUTF8))
	}
	return s, nil
}

// WriteNull writes a null value.
func (e *Encoder) WriteNull() error {
	if _, err := e.prepareValue(vcPrimitive); err != nil {
		return err
	}
	e.buf = append(e.buf, wire.CodeNull)
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

// WriteBool writes a boolean value.
func (e *Encoder) WriteBool(v bool) error {
	if _, err := e.prepareValue(vcPrimitive); err != nil {
		return err
	}
	code := byte(wire.CodeFalse)
	if v {
		code = wire.CodeTrue
	}
	e.buf = append(e.buf, code)
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

// WriteInt writes a signed integer in its minimum-width form.
func (e *Encoder) WriteInt(v int64) error {
	if _, err := e.prepareValue(vcPrimitive); err != nil {
		return err
	}
	e.buf = wire.AppendInt(e.buf, v)
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

// WriteUint writes an unsigned integer in its minimum-width form.
func (e *Encoder) WriteUint(v uint64) error {
	if _, err := e.prepareValue(vcPrimitive); err != nil {
		return err
	}
	e.buf = wire.AppendUint(e.buf, v)
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

// WriteFloat writes a float in its narrowest lossless form. Non-finite
// values follow the configured policy.
func (e *Encoder) WriteFloat(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		switch e.opts.NonFinite {
		case wire.NonFiniteReject:
			if e.err != nil {
				return e.err
			}
			if math.IsNaN(v) {
				return e.fail(wire.NewError(wire.KindNaNNotAllowed, int64(len(e.buf)), "NaN rejected by policy"))
			}
			return e.fail(wire.NewError(wire.KindInfinityNotAllowed, int64(len(e.buf)), "infinity rejected by policy"))
		case wire.NonFiniteStringify:
			return e.WriteString(e.nonFiniteSpelling(v))
		}
	}
	if _, err := e.prepareValue(vcPrimitive); err != nil {
		return err
	}
	e.buf = wire.AppendFloat(e.buf, v)
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

func (e *Encoder) nonFiniteSpelling(v float64) string {
	switch {
	case math.IsNaN(v):
		return e.opts.NonFiniteNaN()
	case v > 0:
		return e.opts.NonFinitePos()
	default:
		return e.opts.NonFiniteNeg()
	}
}

// WriteBigNumber writes an arbitrary-precision decimal. Out-of-range
// numbers follow the configured policy.
func (e *Encoder) WriteBigNumber(bn wire.BigNumber) error {
	bn = bn.Normalize()
	if kind, over := e.bigNumberOver(bn); over {
		if e.opts.BigNumberRange == wire.BigNumberStringify {
			return e.WriteString(bn.String())
		}
		if e.err != nil {
			return e.err
		}
		return e.fail(wire.NewError(kind, int64(len(e.buf)), "bignumber exceeds configured cap"))
	}
	if _, err := e.prepareValue(vcPrimitive); err != nil {
		return err
	}
	e.buf = wire.AppendBigNumber(e.buf, bn)
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

func (e *Encoder) bigNumberOver(bn wire.BigNumber) (wire.ErrorKind, bool) {
	if limit := e.opts.MaxBigNumberExponent; limit > 0 {
		exp := bn.Exponent
		if exp < 0 {
			exp = -exp
		}
		if exp > limit || exp < 0 {
			return wire.KindMaxBigNumberExponentExceeded, true
		}
	}
	if limit := e.opts.MaxBigNumberMagnitude; limit > 0 && len(bn.Magnitude) > limit {
		return wire.KindMaxBigNumberMagnitudeExceeded, true
	}
	return wire.KindNone, false
}

// WriteString writes a string value, or an object key when one is
// expected, or a definition key when a record definition is open.
func (e *Encoder) WriteString(s string) error {
	if e.err != nil {
		return e.err
	}
	if e.defOpen {
		e.pendingDef = append(e.pendingDef, s)
		return nil
	}
	if top := e.top(); top != nil && (top.kind == kindObject || top.probed) && top.expectKey {
		return e.writeKey(top, s)
	}
	if _, err := e.prepareValue(vcString); err != nil {
		return err
	}
	s, err := e.prepareString(s)
	if err != nil {
		return err
	}
	e.buf = wire.AppendString(e.buf, []byte(s))
	if err := e.checkSize(); err != nil {
		return err
	}
	return e.valueDone()
}

// WriteKey writes an object key. It fails outside an object or when a
// value is expected instead.
func (e *Encoder) WriteKey(s string) error {
	if e.err != nil {
		return e.err
	}
	top := e.top()
	if top == nil || (top.kind != kindObject && !top.probed) {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "key outside an object"))
	}
	if !top.expectKey {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "key written where a value is expected"))
	}
	return e.writeKey(top, s)
}

func (e *Encoder) writeKey(top *frame, s string) error {
	s, err := e.prepareString(s)
	if err != nil {
		return err
	}
	cmp := s
	if e.opts.Normalization == wire.NormalizationNFC {
		cmp = norm.NFC.String(s)
	}
	if e.opts.DuplicateKeys == wire.DuplicateKeyReject {
		if e.isDuplicateKey(top, cmp) {
			return e.fail(wire.Errorf(wire.KindDuplicateKey, int64(len(e.buf)), "key %q", s))
		}
	}
	if top.probed {
		if err := e.probeKey(top, s); err != nil {
			return err
		}
	} else {
		e.buf = wire.AppendString(e.buf, []byte(s))
		if err := e.checkSize(); err != nil {
			return err
		}
	}
	top.elems++
	if top.elems > e.opts.MaxContainerSize {
		return e.fail(wire.Errorf(wire.KindMaxContainerSizeExceeded, int64(len(e.buf)),
			"container exceeds %d elements", e.opts.MaxContainerSize))
	}
	top.expectKey = false
	top.lastKey = s
	top.keys = append(top.keys, cmp)
	return nil
}

const linearDupKeys = 8

func (e *Encoder) isDuplicateKey(top *frame, cmp string) bool {
	if len(top.keys) < linearDupKeys {
		for _, k := range top.keys {
			if k == cmp {
				return true
			}
		}
		return false
	}
	if top.dup == nil {
		top.dup = newKeySet(e.hasher)
		for _, k := range top.keys {
			top.dup.probe(k)
		}
	}
	if top.dup.probe(cmp) {
		for _, k := range top.keys {
			if k == cmp {
				return true
			}
		}
	}
	return false
}

// BeginArray opens an array. Under AutoRecords it also opens a record
// probe unless one is already active higher in the stack.
func (e *Encoder) BeginArray() error {
	if _, err := e.prepareValue(vcOtherContainer); err != nil {
		return err
	}
	if err := e.checkDepth(); err != nil {
		return err
	}
	e.buf = append(e.buf, wire.CodeArrayBegin)
	if err := e.checkSize(); err != nil {
		return err
	}
	f := frame{kind: kindArray, valueStart: -1}
	if e.opts.AutoRecords && !e.probing {
		f.probe = &recordProbe{save: len(e.buf), state: probeFirst}
		e.probing = true
	}
	e.stack = append(e.stack, f)
	return nil
}

// BeginObject opens an object.
func (e *Encoder) BeginObject() error {
	top, err := e.prepareValue(vcObjectBegin)
	if err != nil {
		return err
	}
	if err := e.checkDepth(); err != nil {
		return err
	}
	if top != nil && top.probe != nil && !top.probed {
		return e.beginProbedObject(top)
	}
	e.buf = append(e.buf, wire.CodeObjectBegin)
	if err := e.checkSize(); err != nil {
		return err
	}
	e.stack = append(e.stack, frame{kind: kindObject, expectKey: true, valueStart: -1})
	return nil
}

// EndContainer closes the innermost open container.
func (e *Encoder) EndContainer() error {
	if e.err != nil {
		return e.err
	}
	if e.defOpen {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)),
			"record definition must be sealed with EndRecordDef"))
	}
	top := e.top()
	if top == nil {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "no open container"))
	}
	if (top.kind == kindObject || top.probed) && !top.expectKey {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "object ends after a key with no value"))
	}
	if top.kind == kindRecord && top.elems != len(top.defKeys) {
		return e.fail(wire.Errorf(wire.KindInvalidData, int64(len(e.buf)),
			"record instance has %d of %d values", top.elems, len(top.defKeys)))
	}
	if top.probed {
		return e.endProbedObject(top)
	}
	if top.probe != nil {
		return e.endProbedArray(top)
	}
	e.buf = append(e.buf, wire.CodeContainerEnd)
	if err := e.checkSize(); err != nil {
		return err
	}
	e.stack = e.stack[:len(e.stack)-1]
	return e.valueDone()
}

// EndAllContainers closes every open container.
func (e *Encoder) EndAllContainers() error {
	if e.err != nil {
		return e.err
	}
	for len(e.stack) > 0 {
		if err := e.EndContainer(); err != nil {
			return err
		}
	}
	return nil
}

// EndDocument finalizes the document and returns the encoded bytes. The
// buffer is owned by the caller afterwards; the encoder may not be reused.
func (e *Encoder) EndDocument() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.defOpen {
		return nil, e.fail(wire.NewError(wire.KindUnclosedContainer, int64(len(e.buf)),
			"record definition still open"))
	}
	if len(e.stack) > 0 {
		return nil, e.fail(wire.Errorf(wire.KindUnclosedContainer, int64(len(e.buf)),
			"%d containers still open", len(e.stack)))
	}
	if !e.rootWritten {
		return nil, e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "document has no root value"))
	}
	e.finished = true
	return e.buf, nil
}

// WriteRecordDef writes a record definition and returns its index. Any
// active probe is first rewound to plain encoding so definition numbering
// stays dense.
func (e *Encoder) WriteRecordDef(keys []string) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if e.probing {
		if err := e.rollbackActiveProbe(); err != nil {
			return 0, err
		}
	}
	top := e.top()
	if top != nil && top.kind != kindArray {
		return 0, e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "record definition inside an object"))
	}
	if top == nil && e.rootWritten {
		return 0, e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "record definition after the root value"))
	}
	if 2*len(keys) > e.opts.MaxContainerSize {
		return 0, e.fail(wire.Errorf(wire.KindMaxContainerSizeExceeded, int64(len(e.buf)),
			"record definition exceeds %d keys", e.opts.MaxContainerSize/2))
	}
	prepared := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		p, err := e.prepareString(k)
		if err != nil {
			return 0, err
		}
		cmp := p
		if e.opts.Normalization == wire.NormalizationNFC {
			cmp = norm.NFC.String(p)
		}
		if e.opts.DuplicateKeys == wire.DuplicateKeyReject {
			if _, dup := seen[cmp]; dup {
				return 0, e.fail(wire.Errorf(wire.KindDuplicateKey, int64(len(e.buf)), "key %q", p))
			}
			seen[cmp] = struct{}{}
		}
		prepared = append(prepared, p)
	}
	e.buf = append(e.buf, wire.CodeRecordDef)
	for _, k := range prepared {
		e.buf = wire.AppendString(e.buf, []byte(k))
	}
	e.buf = append(e.buf, wire.CodeContainerEnd)
	if err := e.checkSize(); err != nil {
		return 0, err
	}
	e.defs = append(e.defs, prepared)
	return len(e.defs) - 1, nil
}

// BeginRecordDef opens a streaming record definition: the keys are
// supplied as string writes and EndRecordDef seals it.
func (e *Encoder) BeginRecordDef() error {
	if e.err != nil {
		return e.err
	}
	if e.defOpen {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "record definition already open"))
	}
	if e.probing {
		if err := e.rollbackActiveProbe(); err != nil {
			return err
		}
	}
	top := e.top()
	if top != nil && top.kind != kindArray {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "record definition inside an object"))
	}
	if top == nil && e.rootWritten {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "record definition after the root value"))
	}
	e.defOpen = true
	e.pendingDef = nil
	return nil
}

// EndRecordDef seals the open record definition and returns its index.
func (e *Encoder) EndRecordDef() (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	if !e.defOpen {
		return 0, e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "no open record definition"))
	}
	e.defOpen = false
	keys := e.pendingDef
	e.pendingDef = nil
	return e.WriteRecordDef(keys)
}

// EndRecordInstance closes the innermost container, which must be a
// record instance.
func (e *Encoder) EndRecordInstance() error {
	if e.err != nil {
		return e.err
	}
	if top := e.top(); top == nil || top.kind != kindRecord {
		return e.fail(wire.NewError(wire.KindInvalidData, int64(len(e.buf)), "no open record instance"))
	}
	return e.EndContainer()
}

// BeginRecordInstance opens a key-less instance of a previously written
// record definition. The body must supply exactly one value per key.
func (e *Encoder) BeginRecordInstance(def int) error {
	if e.err != nil {
		return e.err
	}
	if e.probing {
		if err := e.rollbackActiveProbe(); err != nil {
			return err
		}
	}
	if def < 0 || def >= len(e.defs) {
		return e.fail(wire.Errorf(wire.KindInvalidData, int64(len(e.buf)),
			"record definition index %d of %d", def, len(e.defs)))
	}
	if _, err := e.prepareValue(vcOtherContainer); err != nil {
		return err
	}
	if err := e.checkDepth(); err != nil {
		return err
	}
	e.buf = append(e.buf, wire.CodeRecordInstance)
	e.buf = wire.AppendULEB128(e.buf, uint64(def))
	if err := e.checkSize(); err != nil {
		return err
	}
	e.stack = append(e.stack, frame{kind: kindRecord, defKeys: e.defs[def], valueStart: -1})
	return nil
}
