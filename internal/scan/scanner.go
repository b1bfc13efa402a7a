package scan

import (
	"bytes"
	"math"

	"github.com/dolthub/maphash"
	"github.com/scigolib/bonjson/internal/wire"
)

// maxEntries bounds the entry table so subtree sizes and sibling indices
// fit in int32.
const maxEntries = math.MaxInt32 - 1

// linearDupKeys is the number of keys per object checked by direct byte
// comparison before the scratch hash set takes over.
const linearDupKeys = 8

type keyRef struct {
	off   int64
	ln    int32
	flags uint8
}

type recordDef struct {
	keys []keyRef
}

type frame struct {
	kind      Kind
	entry     int32
	children  int
	expectKey bool
	record    *recordDef
	nextKey   int
	keys      []int32 // entry indices of keys read so far
	dup       *dupSet
	lastKey   []byte
}

type scanner struct {
	data      []byte
	opts      *wire.Options
	pos       int64
	entries   []Entry
	stack     []frame
	defs      []recordDef
	hasher    maphash.Hasher[string]
	rootDone  bool
	dirtyKeys bool // a key needed repair or was chunked; duplicate check must be re-run
}

// Scan reads data front to back exactly once and builds the position map.
// On failure no map is returned; the error carries the byte offset and the
// coding path where the failure was detected.
func Scan(data []byte, opts wire.Options) (*Map, error) {
	if int64(len(data)) > opts.MaxDocumentSize {
		return nil, wire.Errorf(wire.KindMaxDocumentSizeExceeded, 0,
			"document is %d bytes, limit %d", len(data), opts.MaxDocumentSize)
	}
	s := &scanner{
		data:    data,
		opts:    &opts,
		entries: make([]Entry, 0, 16),
		hasher:  maphash.NewHasher[string](),
	}
	if err := s.run(); err != nil {
		if we, ok := err.(*wire.Error); ok && we.Path == nil {
			we.Path = s.path()
		}
		return nil, err
	}
	m := &Map{Data: data, Entries: s.entries, Opts: opts}
	m.NextSibling = make([]int32, len(s.entries))
	for i := range s.entries {
		m.NextSibling[i] = int32(i) + s.entries[i].Sub
	}
	if opts.DuplicateKeys == wire.DuplicateKeyReject &&
		(opts.Normalization == wire.NormalizationNFC || s.dirtyKeys) {
		if err := checkNormalizedDuplicates(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (s *scanner) run() error {
	for {
		if s.rootDone && len(s.stack) == 0 {
			break
		}
		if s.pos >= int64(len(s.data)) {
			if len(s.stack) > 0 {
				return wire.NewError(wire.KindUnclosedContainer, s.pos, "input ends inside a container")
			}
			return wire.NewError(wire.KindTruncated, s.pos, "no root value")
		}
		if err := s.step(); err != nil {
			return err
		}
	}
	if s.pos < int64(len(s.data)) && s.opts.TrailingBytes == wire.TrailingBytesReject {
		return wire.Errorf(wire.KindTrailingBytes, s.pos,
			"%d bytes after the root value", int64(len(s.data))-s.pos)
	}
	return nil
}

//nolint:maintidx // The type-code dispatch is one flat switch by design.
func (s *scanner) step() error {
	b := s.data[s.pos]
	tc := wire.Dispatch[b]

	switch tc.Class {
	case wire.ClassReserved:
		return wire.Errorf(wire.KindInvalidTypeCode, s.pos, "type code 0x%02X", b)
	case wire.ClassContainerEnd:
		return s.closeContainer()
	case wire.ClassRecordDef:
		return s.scanRecordDef()
	}

	top := s.top()
	if top != nil && top.record == nil && top.kind == KindObject && top.expectKey {
		if tc.Class != wire.ClassShortString && tc.Class != wire.ClassLongString {
			return wire.Errorf(wire.KindInvalidObjectKey, s.pos,
				"type code 0x%02X where an object key is expected", b)
		}
		ref, err := s.parseString(tc)
		if err != nil {
			return err
		}
		return s.keyDone(top, ref)
	}
	if top != nil && top.record != nil {
		if err := s.synthesizeRecordKey(top); err != nil {
			return err
		}
	}

	switch tc.Class {
	case wire.ClassSmallInt:
		s.pos++
		if _, err := s.emit(Entry{Kind: KindInt, Bits: uint64(int64(tc.Arg)), Sub: 1}); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassNull:
		s.pos++
		if _, err := s.emit(Entry{Kind: KindNull, Sub: 1}); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassTrue, wire.ClassFalse:
		var v uint64
		if tc.Class == wire.ClassTrue {
			v = 1
		}
		s.pos++
		if _, err := s.emit(Entry{Kind: KindBool, Bits: v, Sub: 1}); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassShortString, wire.ClassLongString:
		ref, err := s.parseString(tc)
		if err != nil {
			return err
		}
		e := Entry{Kind: KindString, Offset: ref.off, Count: ref.ln, Flags: ref.flags, Sub: 1}
		if _, err := s.emit(e); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassSignedInt:
		v, n, err := wire.DecodeInt(s.data, s.pos+1)
		if err != nil {
			return err
		}
		s.pos += 1 + int64(n)
		if _, err := s.emit(Entry{Kind: KindInt, Bits: uint64(v), Sub: 1}); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassUnsignedInt:
		v, n, err := wire.DecodeUint(s.data, s.pos+1)
		if err != nil {
			return err
		}
		s.pos += 1 + int64(n)
		if _, err := s.emit(Entry{Kind: KindUint, Bits: v, Sub: 1}); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassFloat:
		start := s.pos
		f, n, err := wire.DecodeFloat(s.data, s.pos+1)
		if err != nil {
			return err
		}
		if err := s.checkNonFinite(f, start); err != nil {
			return err
		}
		s.pos += 1 + int64(n)
		if _, err := s.emit(Entry{Kind: KindFloat, Bits: math.Float64bits(f), Sub: 1}); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassBigNumber:
		start := s.pos
		bn, n, err := wire.DecodeBigNumber(s.data, s.pos+1)
		if err != nil {
			return err
		}
		flags, err := s.checkBigNumber(bn, start)
		if err != nil {
			return err
		}
		e := Entry{Kind: KindBigNumber, Offset: s.pos + 1, Count: int32(n), Flags: flags, Sub: 1}
		s.pos += 1 + int64(n)
		if _, err := s.emit(e); err != nil {
			return err
		}
		return s.valueDone()

	case wire.ClassArrayBegin, wire.ClassObjectBegin:
		kind := KindArray
		if tc.Class == wire.ClassObjectBegin {
			kind = KindObject
		}
		if err := s.checkDepth(); err != nil {
			return err
		}
		idx, err := s.emit(Entry{Kind: kind, Sub: 1})
		if err != nil {
			return err
		}
		s.pos++
		s.stack = append(s.stack, frame{kind: kind, entry: idx, expectKey: kind == KindObject})
		return nil

	case wire.ClassRecordInstance:
		return s.scanRecordInstance()

	case wire.ClassTypedArray:
		return s.scanTypedArray(wire.ElemType(tc.Arg))
	}
	return wire.Errorf(wire.KindInvalidTypeCode, s.pos, "type code 0x%02X", b)
}

func (s *scanner) top() *frame {
	if len(s.stack) == 0 {
		return nil
	}
	return &s.stack[len(s.stack)-1]
}

func (s *scanner) emit(e Entry) (int32, error) {
	if len(s.entries) >= maxEntries {
		return 0, wire.NewError(wire.KindValueOutOfRange, s.pos, "entry table overflow")
	}
	s.entries = append(s.entries, e)
	return int32(len(s.entries) - 1), nil
}

func (s *scanner) checkDepth() error {
	if len(s.stack)+1 > s.opts.MaxDepth {
		return wire.Errorf(wire.KindMaxDepthExceeded, s.pos, "nesting exceeds %d", s.opts.MaxDepth)
	}
	return nil
}

// valueDone records the completion of one value in the enclosing container.
func (s *scanner) valueDone() error {
	top := s.top()
	if top == nil {
		s.rootDone = true
		return nil
	}
	top.children++
	if top.children > s.opts.MaxContainerSize {
		return wire.Errorf(wire.KindMaxContainerSizeExceeded, s.pos,
			"container exceeds %d elements", s.opts.MaxContainerSize)
	}
	if top.kind == KindObject && top.record == nil {
		top.expectKey = true
	}
	return nil
}

func (s *scanner) keyDone(top *frame, ref keyRef) error {
	idx, err := s.emit(Entry{Kind: KindString, Offset: ref.off, Count: ref.ln, Flags: ref.flags, Sub: 1})
	if err != nil {
		return err
	}
	top.children++
	if top.children > s.opts.MaxContainerSize {
		return wire.Errorf(wire.KindMaxContainerSizeExceeded, s.pos,
			"container exceeds %d elements", s.opts.MaxContainerSize)
	}
	top.expectKey = false
	raw := s.keyBytesFor(ref)
	top.lastKey = raw
	if ref.flags&FlagNeedsRepair != 0 {
		s.dirtyKeys = true
	}
	if s.opts.DuplicateKeys == wire.DuplicateKeyReject && raw != nil {
		if err := s.checkDuplicate(top, idx, raw); err != nil {
			return err
		}
	}
	top.keys = append(top.keys, idx)
	return nil
}

// keyBytesFor returns the raw wire bytes of a key when they are contiguous;
// chunked keys fall back to the deferred duplicate pass.
func (s *scanner) keyBytesFor(ref keyRef) []byte {
	if ref.flags&FlagChunked != 0 {
		s.dirtyKeys = true
		return nil
	}
	return s.data[ref.off : ref.off+int64(ref.ln)]
}

func (s *scanner) checkDuplicate(top *frame, idx int32, raw []byte) error {
	if len(top.keys) < linearDupKeys {
		for _, k := range top.keys {
			prev, ok := s.rawEntryBytes(k)
			if ok && bytes.Equal(prev, raw) {
				return wire.Errorf(wire.KindDuplicateKey, s.pos, "key %q", raw)
			}
		}
		return nil
	}
	if top.dup == nil {
		top.dup = newDupSet(s.hasher)
		for _, k := range top.keys {
			if prev, ok := s.rawEntryBytes(k); ok {
				top.dup.probe(prev)
			}
		}
	}
	if top.dup.probe(raw) {
		// Hash hit: confirm against the stored key bytes.
		for _, k := range top.keys {
			prev, ok := s.rawEntryBytes(k)
			if ok && bytes.Equal(prev, raw) {
				return wire.Errorf(wire.KindDuplicateKey, s.pos, "key %q", raw)
			}
		}
	}
	return nil
}

func (s *scanner) rawEntryBytes(idx int32) ([]byte, bool) {
	e := &s.entries[idx]
	if e.Flags&FlagChunked != 0 {
		return nil, false
	}
	return s.data[e.Offset : e.Offset+int64(e.Count)], true
}

func (s *scanner) synthesizeRecordKey(top *frame) error {
	if top.nextKey >= len(top.record.keys) {
		return wire.Errorf(wire.KindInvalidData, s.pos,
			"record instance has more than %d values", len(top.record.keys))
	}
	k := top.record.keys[top.nextKey]
	if _, err := s.emit(Entry{Kind: KindString, Offset: k.off, Count: k.ln, Flags: k.flags, Sub: 1}); err != nil {
		return err
	}
	top.nextKey++
	top.children++
	if top.children > s.opts.MaxContainerSize {
		return wire.Errorf(wire.KindMaxContainerSizeExceeded, s.pos,
			"container exceeds %d elements", s.opts.MaxContainerSize)
	}
	top.lastKey = s.keyBytesFor(k)
	return nil
}

func (s *scanner) closeContainer() error {
	top := s.top()
	if top == nil {
		return wire.NewError(wire.KindInvalidData, s.pos, "container end outside a container")
	}
	if top.kind == KindObject && top.record == nil && !top.expectKey {
		return wire.NewError(wire.KindInvalidData, s.pos, "object ends after a key with no value")
	}
	if top.record != nil && top.nextKey != len(top.record.keys) {
		return wire.Errorf(wire.KindInvalidData, s.pos,
			"record instance has %d of %d values", top.nextKey, len(top.record.keys))
	}
	e := &s.entries[top.entry]
	e.Sub = int32(len(s.entries)) - top.entry
	e.Count = int32(top.children)
	s.pos++
	s.stack = s.stack[:len(s.stack)-1]
	return s.valueDone()
}

func (s *scanner) checkNonFinite(f float64, offset int64) error {
	if s.opts.NonFinite != wire.NonFiniteReject {
		return nil
	}
	if math.IsNaN(f) {
		return wire.NewError(wire.KindNaNNotAllowed, offset, "NaN rejected by policy")
	}
	if math.IsInf(f, 0) {
		return wire.NewError(wire.KindInfinityNotAllowed, offset, "infinity rejected by policy")
	}
	return nil
}

func (s *scanner) checkBigNumber(bn wire.BigNumber, offset int64) (uint8, error) {
	var flags uint8
	if limit := s.opts.MaxBigNumberExponent; limit > 0 {
		exp := bn.Exponent
		if exp < 0 {
			exp = -exp
		}
		if exp > limit || exp < 0 {
			if s.opts.BigNumberRange == wire.BigNumberStringify {
				flags |= FlagStringified
			} else {
				return 0, wire.Errorf(wire.KindMaxBigNumberExponentExceeded, offset,
					"exponent %d exceeds %d", bn.Exponent, limit)
			}
		}
	}
	if limit := s.opts.MaxBigNumberMagnitude; limit > 0 && len(bn.Magnitude) > limit {
		if s.opts.BigNumberRange == wire.BigNumberStringify {
			flags |= FlagStringified
		} else {
			return 0, wire.Errorf(wire.KindMaxBigNumberMagnitudeExceeded, offset,
				"magnitude is %d bytes, limit %d", len(bn.Magnitude), limit)
		}
	}
	return flags, nil
}

// parseString consumes a short or long string and returns its reference.
func (s *scanner) parseString(tc wire.TypeCode) (keyRef, error) {
	if tc.Class == wire.ClassShortString {
		ln := int64(tc.Arg)
		start := s.pos + 1
		if start+ln > int64(len(s.data)) {
			return keyRef{}, wire.NewError(wire.KindTruncated, s.pos, "short string payload")
		}
		if int(ln) > s.opts.MaxStringLength {
			return keyRef{}, wire.Errorf(wire.KindMaxStringLengthExceeded, s.pos,
				"string is %d bytes, limit %d", ln, s.opts.MaxStringLength)
		}
		repair, err := wire.CheckString(s.data[start:start+ln], s.pos, s.opts)
		if err != nil {
			return keyRef{}, err
		}
		var flags uint8
		if repair {
			flags |= FlagNeedsRepair
		}
		s.pos = start + ln
		return keyRef{off: start, ln: int32(ln), flags: flags}, nil
	}
	return s.parseLongString()
}

func (s *scanner) parseLongString() (keyRef, error) {
	start := s.pos
	firstHeader := s.pos + 1
	pos := firstHeader
	var total int64
	var chunks int
	var firstPayload int64
	for {
		payload, n, err := wire.DecodeLength(s.data, pos)
		if err != nil {
			return keyRef{}, err
		}
		more := payload&1 != 0
		ln := int64(payload >> 1)
		if ln == 0 && more {
			return keyRef{}, wire.NewError(wire.KindEmptyChunkContinuation, pos, "empty chunk with continuation set")
		}
		pos += int64(n)
		if chunks == 0 {
			firstPayload = pos
		}
		if ln > int64(len(s.data))-pos {
			return keyRef{}, wire.NewError(wire.KindTruncated, pos, "string chunk payload")
		}
		total += ln
		if total > int64(s.opts.MaxStringLength) {
			return keyRef{}, wire.Errorf(wire.KindMaxStringLengthExceeded, start,
				"string exceeds %d bytes", s.opts.MaxStringLength)
		}
		pos += ln
		chunks++
		if chunks > wire.MaxChunksPerString {
			return keyRef{}, wire.Errorf(wire.KindTooManyChunks, start,
				"more than %d chunks", wire.MaxChunksPerString)
		}
		if !more {
			break
		}
	}

	var flags uint8
	var body []byte
	var off int64
	if chunks == 1 {
		off = firstPayload
		body = s.data[firstPayload : firstPayload+total]
	} else {
		flags |= FlagChunked
		off = firstHeader
		body = assembleChunks(s.data, firstHeader, total)
	}
	repair, err := wire.CheckString(body, start, s.opts)
	if err != nil {
		return keyRef{}, err
	}
	if repair {
		flags |= FlagNeedsRepair
	}
	if total > math.MaxInt32 {
		return keyRef{}, wire.NewError(wire.KindMaxStringLengthExceeded, start, "string too large to index")
	}
	s.pos = pos
	return keyRef{off: off, ln: int32(total), flags: flags}, nil
}

// assembleChunks concatenates an already bounds-checked chunk chain.
func assembleChunks(data []byte, firstHeader int64, total int64) []byte {
	out := make([]byte, 0, total)
	pos := firstHeader
	for {
		payload, n, _ := wire.DecodeLength(data, pos)
		pos += int64(n)
		ln := int64(payload >> 1)
		out = append(out, data[pos:pos+ln]...)
		pos += ln
		if payload&1 == 0 {
			return out
		}
	}
}

func (s *scanner) scanRecordDef() error {
	top := s.top()
	if top != nil && (top.kind != KindArray || top.record != nil) {
		return wire.NewError(wire.KindInvalidData, s.pos, "record definition inside an object")
	}
	defStart := s.pos
	s.pos++
	var def recordDef
	var rawKeys [][]byte
	for {
		if s.pos >= int64(len(s.data)) {
			return wire.NewError(wire.KindUnclosedContainer, defStart, "unterminated record definition")
		}
		b := s.data[s.pos]
		tc := wire.Dispatch[b]
		if tc.Class == wire.ClassContainerEnd {
			s.pos++
			break
		}
		if tc.Class != wire.ClassShortString && tc.Class != wire.ClassLongString {
			return wire.Errorf(wire.KindInvalidObjectKey, s.pos,
				"type code 0x%02X inside a record definition", b)
		}
		ref, err := s.parseString(tc)
		if err != nil {
			return err
		}
		if 2*(len(def.keys)+1) > s.opts.MaxContainerSize {
			return wire.Errorf(wire.KindMaxContainerSizeExceeded, defStart,
				"record definition exceeds %d keys", s.opts.MaxContainerSize/2)
		}
		raw := s.keyBytesFor(ref)
		if ref.flags&FlagNeedsRepair != 0 {
			s.dirtyKeys = true
		}
		if s.opts.DuplicateKeys == wire.DuplicateKeyReject && raw != nil {
			for _, prev := range rawKeys {
				if bytes.Equal(prev, raw) {
					return wire.Errorf(wire.KindDuplicateKey, s.pos, "key %q", raw)
				}
			}
		}
		rawKeys = append(rawKeys, raw)
		def.keys = append(def.keys, ref)
	}
	s.defs = append(s.defs, def)
	return nil
}

func (s *scanner) scanRecordInstance() error {
	start := s.pos
	idx, n, err := wire.DecodeULEB128(s.data, s.pos+1)
	if err != nil {
		return err
	}
	if idx >= uint64(len(s.defs)) {
		return wire.Errorf(wire.KindInvalidData, start, "record definition index %d of %d", idx, len(s.defs))
	}
	if err := s.checkDepth(); err != nil {
		return err
	}
	entryIdx, err := s.emit(Entry{Kind: KindObject, Sub: 1})
	if err != nil {
		return err
	}
	s.pos += 1 + int64(n)
	s.stack = append(s.stack, frame{kind: KindObject, entry: entryIdx, record: &s.defs[idx]})
	return nil
}

func (s *scanner) scanTypedArray(elem wire.ElemType) error {
	start := s.pos
	count, n, err := wire.DecodeLength(s.data, s.pos+1)
	if err != nil {
		return err
	}
	if count > uint64(s.opts.MaxContainerSize) {
		return wire.Errorf(wire.KindMaxContainerSizeExceeded, start,
			"typed array has %d elements, limit %d", count, s.opts.MaxContainerSize)
	}
	if err := s.checkDepth(); err != nil {
		return err
	}
	esz := uint64(elem.Size())
	if count > uint64(math.MaxInt64)/esz {
		return wire.NewError(wire.KindValueOutOfRange, start, "typed array size overflow")
	}
	body := s.pos + 1 + int64(n)
	size := int64(count * esz)
	if size > int64(len(s.data))-body {
		return wire.NewError(wire.KindTruncated, start, "typed array payload")
	}
	if len(s.entries)+int(count)+1 > maxEntries {
		return wire.NewError(wire.KindValueOutOfRange, start, "entry table overflow")
	}
	if _, err := s.emit(Entry{
		Kind:  KindArray,
		Bits:  uint64(elem),
		Count: int32(count),
		Sub:   int32(count) + 1,
		Flags: FlagPacked,
	}); err != nil {
		return err
	}
	for i := int64(0); i < int64(count); i++ {
		off := body + i*int64(esz)
		e, err := decodeTypedElement(s.data, off, elem)
		if err != nil {
			return err
		}
		if _, err := s.emit(e); err != nil {
			return err
		}
	}
	s.pos = body + size
	return s.valueDone()
}

func decodeTypedElement(data []byte, off int64, elem wire.ElemType) (Entry, error) {
	le := func(w int) uint64 {
		var v uint64
		for i := 0; i < w; i++ {
			v |= uint64(data[off+int64(i)]) << (8 * i)
		}
		return v
	}
	switch elem {
	case wire.ElemInt8:
		return Entry{Kind: KindInt, Bits: uint64(int64(int8(data[off]))), Sub: 1}, nil
	case wire.ElemInt16:
		return Entry{Kind: KindInt, Bits: uint64(int64(int16(le(2)))), Sub: 1}, nil
	case wire.ElemInt32:
		return Entry{Kind: KindInt, Bits: uint64(int64(int32(le(4)))), Sub: 1}, nil
	case wire.ElemInt64:
		return Entry{Kind: KindInt, Bits: le(8), Sub: 1}, nil
	case wire.ElemUint8:
		return Entry{Kind: KindUint, Bits: uint64(data[off]), Sub: 1}, nil
	case wire.ElemUint16:
		return Entry{Kind: KindUint, Bits: le(2), Sub: 1}, nil
	case wire.ElemUint32:
		return Entry{Kind: KindUint, Bits: le(4), Sub: 1}, nil
	case wire.ElemUint64:
		return Entry{Kind: KindUint, Bits: le(8), Sub: 1}, nil
	case wire.ElemFloat32:
		f := math.Float32frombits(uint32(le(4)))
		return Entry{Kind: KindFloat, Bits: math.Float64bits(float64(f)), Sub: 1}, nil
	case wire.ElemFloat64:
		return Entry{Kind: KindFloat, Bits: le(8), Sub: 1}, nil
	case wire.ElemBool:
		b := data[off]
		if b > 1 {
			return Entry{}, wire.Errorf(wire.KindInvalidData, off, "bool element byte 0x%02X", b)
		}
		return Entry{Kind: KindBool, Bits: uint64(b), Sub: 1}, nil
	}
	return Entry{}, wire.NewError(wire.KindInvalidData, off, "unknown element type")
}

// path reconstructs the coding path of the current scan position from the
// open container stack.
func (s *scanner) path() *wire.PathSegment {
	var p *wire.PathSegment
	for i := range s.stack {
		f := &s.stack[i]
		switch {
		case f.kind == KindArray:
			p = p.Child(f.children)
		case f.lastKey != nil && (!f.expectKey || f.record != nil):
			p = p.ChildKey(string(f.lastKey))
		}
	}
	return p
}

// checkNormalizedDuplicates re-runs duplicate-key detection over
// materialized (repaired, normalized) key strings. It runs only when raw
// byte comparison during the scan was not authoritative.
func checkNormalizedDuplicates(m *Map) error {
	for i := range m.Entries {
		e := &m.Entries[i]
		if e.Kind != KindObject || e.Count == 0 {
			continue
		}
		seen := make(map[string]struct{}, e.Count/2)
		child := int32(i) + 1
		for k := int32(0); k < e.Count; k += 2 {
			key := m.StringValue(int(child))
			if _, dup := seen[key]; dup {
				return wire.Errorf(wire.KindDuplicateKey, m.Entries[child].Offset, "key %q", key)
			}
			seen[key] = struct{}{}
			value := child + 1
			child = value + m.Entries[value].Sub
		}
	}
	return nil
}
