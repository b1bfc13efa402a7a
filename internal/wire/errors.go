// Package wire provides the low-level BONJSON wire format primitives:
// the type-code dispatch table, the variable-width length codec, LEB128,
// numeric width selection, BigNumber framing, and UTF-8 validation.
// It also defines the error taxonomy and the policy options shared by
// the encoder and the scanner.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrorKind identifies one member of the closed error taxonomy.
type ErrorKind uint8

// The closed set of error kinds. Structural and value kinds are raised by
// the scanner and the codecs, policy kinds by the limit checks, access
// kinds by the reader.
const (
	KindNone ErrorKind = iota

	// Structural.
	KindTruncated
	KindTrailingBytes
	KindInvalidTypeCode
	KindUnclosedContainer
	KindNonCanonicalLength
	KindInvalidData

	// Value.
	KindInvalidUTF8
	KindNulInString
	KindValueOutOfRange
	KindInvalidObjectKey
	KindEmptyChunkContinuation
	KindTooManyChunks

	// Policy.
	KindDuplicateKey
	KindNaNNotAllowed
	KindInfinityNotAllowed
	KindMaxDepthExceeded
	KindMaxStringLengthExceeded
	KindMaxContainerSizeExceeded
	KindMaxDocumentSizeExceeded
	KindMaxBigNumberExponentExceeded
	KindMaxBigNumberMagnitudeExceeded

	// Access.
	KindTypeMismatch
	KindKeyNotFound
)

var kindNames = map[ErrorKind]string{
	KindNone:                          "none",
	KindTruncated:                     "truncated",
	KindTrailingBytes:                 "trailing_bytes",
	KindInvalidTypeCode:               "invalid_type_code",
	KindUnclosedContainer:             "unclosed_container",
	KindNonCanonicalLength:            "non_canonical_length",
	KindInvalidData:                   "invalid_data",
	KindInvalidUTF8:                   "invalid_utf8",
	KindNulInString:                   "nul_in_string",
	KindValueOutOfRange:               "value_out_of_range",
	KindInvalidObjectKey:              "invalid_object_key",
	KindEmptyChunkContinuation:        "empty_chunk_continuation",
	KindTooManyChunks:                 "too_many_chunks",
	KindDuplicateKey:                  "duplicate_key",
	KindNaNNotAllowed:                 "nan_not_allowed",
	KindInfinityNotAllowed:            "infinity_not_allowed",
	KindMaxDepthExceeded:              "max_depth_exceeded",
	KindMaxStringLengthExceeded:       "max_string_length_exceeded",
	KindMaxContainerSizeExceeded:      "max_container_size_exceeded",
	KindMaxDocumentSizeExceeded:       "max_document_size_exceeded",
	KindMaxBigNumberExponentExceeded:  "max_bignumber_exponent_exceeded",
	KindMaxBigNumberMagnitudeExceeded: "max_bignumber_magnitude_exceeded",
	KindTypeMismatch:                  "type_mismatch",
	KindKeyNotFound:                   "key_not_found",
}

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error_kind(%d)", uint8(k))
}

// PathSegment is one link of a coding path. Paths are built as linked
// lists (child points at parent) so that opening a container costs one
// allocation instead of an array copy per level; flattening happens only
// when an error message is rendered.
type PathSegment struct {
	Parent *PathSegment
	Key    string // object key, used when Index < 0
	Index  int    // array index, or -1 for a keyed segment
}

// Child returns a new segment below s for an array index.
func (s *PathSegment) Child(index int) *PathSegment {
	return &PathSegment{Parent: s, Index: index}
}

// ChildKey returns a new segment below s for an object key.
func (s *PathSegment) ChildKey(key string) *PathSegment {
	return &PathSegment{Parent: s, Key: key, Index: -1}
}

// String flattens the path to a readable form such as `$.users[3].name`.
func (s *PathSegment) String() string {
	if s == nil {
		return "$"
	}
	var segs []*PathSegment
	for cur := s; cur != nil; cur = cur.Parent {
		segs = append(segs, cur)
	}
	var b strings.Builder
	b.WriteByte('$')
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].Index >= 0 {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(segs[i].Index))
			b.WriteByte(']')
		} else {
			b.WriteByte('.')
			b.WriteString(segs[i].Key)
		}
	}
	return b.String()
}

// Error is the tagged error surfaced by every fallible operation.
// Offset is the byte offset (decode) or buffer position (encode) where the
// failure was detected, or -1 when it does not apply.
type Error struct {
	Kind    ErrorKind
	Offset  int64
	Path    *PathSegment
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Path != nil {
		b.WriteString(" at ")
		b.WriteString(e.Path.String())
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " (offset %d)", e.Offset)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// NewError creates an error of the given kind.
func NewError(kind ErrorKind, offset int64, message string) *Error {
	return &Error{Kind: kind, Offset: offset, Message: message}
}

// Errorf creates an error with a formatted message.
func Errorf(kind ErrorKind, offset int64, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// WithPath attaches a coding path, returning e for chaining.
func (e *Error) WithPath(p *PathSegment) *Error {
	e.Path = p
	return e
}
