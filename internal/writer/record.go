package writer

import (
	set3 "github.com/TomTonic/Set3"
	"github.com/dolthub/maphash"
	"github.com/scigolib/bonjson/internal/utils"
	"github.com/scigolib/bonjson/internal/wire"
)

// Record-mode probing.
//
// When AutoRecords is on, an array opens a probe. While the probe is
// alive, the elements' keys are withheld from the buffer: only the raw
// value bytes are appended, with their spans recorded per instance. When
// the array closes with two or more key-identical objects, the region is
// rewritten as a record definition plus key-less instances; on any
// divergence (or a single instance) it is rewritten as plain objects.
// Value bytes contain no absolute offsets, so they can be spliced
// verbatim; the resulting bit sequence is identical to what plain
// encoding would have produced.
//
// Only one probe is active at a time. Nested arrays inside a probed value
// encode plainly, and the explicit record APIs rewind the active probe
// before writing, so definition indices never need renumbering.

type probeState uint8

const (
	probeFirst   probeState = iota // array open, no element seen
	probeCollect                   // inside the first object, collecting the schema
	probeStream                    // schema fixed, streaming instances
)

type span struct {
	start, end int
}

type recordProbe struct {
	save      int // buffer offset of the array content
	state     probeState
	schema    []string
	firstKeys []string
	spans     [][]span // value spans of completed instances
	cur       []span   // value spans of the instance in progress
	keyPos    int      // schema keys matched in the instance in progress
}

// beginProbedObject starts an element object under an active probe. No
// bytes are written; the frame is marked so keys are intercepted.
func (e *Encoder) beginProbedObject(top *frame) error {
	p := top.probe
	switch p.state {
	case probeFirst:
		p.state = probeCollect
	case probeStream:
		p.keyPos = 0
	}
	e.stack = append(e.stack, frame{kind: kindObject, probed: true, probe: p, expectKey: true, valueStart: -1})
	return nil
}

// probeKey handles a key inside a probed object: collected during the
// first element, matched against the schema afterwards. A mismatch
// rewinds to plain encoding and writes the key plainly.
func (e *Encoder) probeKey(top *frame, s string) error {
	p := top.probe
	if p.state == probeCollect {
		p.firstKeys = append(p.firstKeys, s)
		return nil
	}
	if p.keyPos < len(p.schema) && p.schema[p.keyPos] == s {
		p.keyPos++
		return nil
	}
	if err := e.rollbackProbeMid(top); err != nil {
		return err
	}
	e.buf = wire.AppendString(e.buf, []byte(s))
	return e.checkSize()
}

// endProbedObject closes an element object under an active probe.
func (e *Encoder) endProbedObject(top *frame) error {
	p := top.probe
	if p.state == probeCollect {
		p.schema = p.firstKeys
		p.firstKeys = nil
		p.spans = append(p.spans, p.cur)
		p.cur = nil
		p.state = probeStream
		e.stack = e.stack[:len(e.stack)-1]
		return e.valueDone()
	}
	if p.keyPos != len(p.schema) {
		// Fewer keys than the schema: divergence.
		if err := e.rollbackProbeMid(top); err != nil {
			return err
		}
		e.buf = append(e.buf, wire.CodeContainerEnd)
		if err := e.checkSize(); err != nil {
			return err
		}
		e.stack = e.stack[:len(e.stack)-1]
		return e.valueDone()
	}
	p.spans = append(p.spans, p.cur)
	p.cur = nil
	e.stack = e.stack[:len(e.stack)-1]
	return e.valueDone()
}

// endProbedArray closes the probed array: commit to record form with two
// or more matching instances, rewind to plain objects otherwise.
func (e *Encoder) endProbedArray(top *frame) error {
	p := top.probe
	switch {
	case p.state == probeStream && len(p.spans) >= 2:
		if err := e.commitProbe(p); err != nil {
			return err
		}
	case p.state == probeStream:
		if err := e.spliceToPlain(p, nil); err != nil {
			return err
		}
	}
	top.probe = nil
	e.probing = false
	e.buf = append(e.buf, wire.CodeContainerEnd)
	if err := e.checkSize(); err != nil {
		return err
	}
	e.stack = e.stack[:len(e.stack)-1]
	return e.valueDone()
}

// commitProbe rewrites the probed region as a record definition followed
// by key-less instances.
func (e *Encoder) commitProbe(p *recordProbe) error {
	region := e.buf[p.save:]
	scratch := utils.GetBuffer(len(region))
	defer utils.ReleaseBuffer(scratch)
	copy(scratch, region)
	e.buf = e.buf[:p.save]

	def := len(e.defs)
	e.buf = append(e.buf, wire.CodeRecordDef)
	for _, k := range p.schema {
		e.buf = wire.AppendString(e.buf, []byte(k))
	}
	e.buf = append(e.buf, wire.CodeContainerEnd)
	for _, spans := range p.spans {
		e.buf = append(e.buf, wire.CodeRecordInstance)
		e.buf = wire.AppendULEB128(e.buf, uint64(def))
		for _, sp := range spans {
			e.buf = append(e.buf, scratch[sp.start-p.save:sp.end-p.save]...)
		}
		e.buf = append(e.buf, wire.CodeContainerEnd)
	}
	e.defs = append(e.defs, p.schema)
	return e.checkSize()
}

// spliceToPlain rewrites the probed region as plain objects. partial, when
// non-nil, is the still-open element object; its completed pairs and any
// in-flight value bytes are re-emitted and the object is left open.
func (e *Encoder) spliceToPlain(p *recordProbe, partial *frame) error {
	region := e.buf[p.save:]
	scratch := utils.GetBuffer(len(region))
	defer utils.ReleaseBuffer(scratch)
	copy(scratch, region)
	e.buf = e.buf[:p.save]

	for _, spans := range p.spans {
		e.buf = append(e.buf, wire.CodeObjectBegin)
		for i, sp := range spans {
			e.buf = wire.AppendString(e.buf, []byte(p.schema[i]))
			e.buf = append(e.buf, scratch[sp.start-p.save:sp.end-p.save]...)
		}
		e.buf = append(e.buf, wire.CodeContainerEnd)
	}
	if partial != nil {
		keys := p.schema
		if p.state == probeCollect {
			keys = p.firstKeys
		}
		e.buf = append(e.buf, wire.CodeObjectBegin)
		for i, sp := range p.cur {
			e.buf = wire.AppendString(e.buf, []byte(keys[i]))
			e.buf = append(e.buf, scratch[sp.start-p.save:sp.end-p.save]...)
		}
		if !partial.expectKey {
			// A key was consumed; re-emit it, with the value bytes
			// written so far when the value has begun.
			e.buf = wire.AppendString(e.buf, []byte(keys[len(p.cur)]))
			if partial.valueStart >= 0 {
				e.buf = append(e.buf, scratch[partial.valueStart-p.save:]...)
			}
		}
		partial.probed = false
		partial.probe = nil
		partial.valueStart = -1
	}
	return e.checkSize()
}

// rollbackProbe rewinds an element-level divergence: the next element of
// the probed array is not an object.
func (e *Encoder) rollbackProbe(arrayFrame *frame) error {
	p := arrayFrame.probe
	arrayFrame.probe = nil
	e.probing = false
	return e.spliceToPlain(p, nil)
}

// rollbackProbeMid rewinds a divergence inside an element object.
func (e *Encoder) rollbackProbeMid(objFrame *frame) error {
	p := objFrame.probe
	for i := range e.stack {
		if e.stack[i].probe == p && !e.stack[i].probed {
			e.stack[i].probe = nil
		}
	}
	e.probing = false
	return e.spliceToPlain(p, objFrame)
}

// rollbackActiveProbe rewinds whatever probe is open, wherever the write
// cursor currently is. Used by the explicit record APIs.
func (e *Encoder) rollbackActiveProbe() error {
	var arrayFrame, objFrame *frame
	for i := range e.stack {
		f := &e.stack[i]
		if f.probe == nil {
			continue
		}
		if f.probed {
			objFrame = f
		} else {
			arrayFrame = f
		}
	}
	if arrayFrame == nil {
		e.probing = false
		return nil
	}
	p := arrayFrame.probe
	arrayFrame.probe = nil
	e.probing = false
	return e.spliceToPlain(p, objFrame)
}

// keySet is the encoder's duplicate-key filter: hashed membership with
// string confirmation on a hit.
type keySet struct {
	hasher maphash.Hasher[string]
	seen   *set3.Set3[uint64]
}

func newKeySet(hasher maphash.Hasher[string]) *keySet {
	return &keySet{hasher: hasher, seen: set3.EmptyWithCapacity[uint64](256)}
}

// probe inserts key and reports whether its hash was already present.
func (k *keySet) probe(key string) bool {
	h := k.hasher.Hash(key)
	if k.seen.Contains(h) {
		return true
	}
	k.seen.Add(h)
	return false
}
