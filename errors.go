// Copyright (c) 2025 SciGo BONJSON Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package bonjson

import (
	"errors"

	"github.com/scigolib/bonjson/internal/wire"
)

// Error is the tagged error returned by every fallible operation: a kind
// from the closed taxonomy, the byte offset where the failure was
// detected, and the coding path, rendered lazily.
type Error = wire.Error

// ErrorKind identifies one member of the closed error taxonomy.
type ErrorKind = wire.ErrorKind

// Error kinds, grouped as in the format's taxonomy.
const (
	// Structural.
	ErrTruncated          = wire.KindTruncated
	ErrTrailingBytes      = wire.KindTrailingBytes
	ErrInvalidTypeCode    = wire.KindInvalidTypeCode
	ErrUnclosedContainer  = wire.KindUnclosedContainer
	ErrNonCanonicalLength = wire.KindNonCanonicalLength
	ErrInvalidData        = wire.KindInvalidData

	// Value.
	ErrInvalidUTF8            = wire.KindInvalidUTF8
	ErrNulInString            = wire.KindNulInString
	ErrValueOutOfRange        = wire.KindValueOutOfRange
	ErrInvalidObjectKey       = wire.KindInvalidObjectKey
	ErrEmptyChunkContinuation = wire.KindEmptyChunkContinuation
	ErrTooManyChunks          = wire.KindTooManyChunks

	// Policy.
	ErrDuplicateKey                  = wire.KindDuplicateKey
	ErrNaNNotAllowed                 = wire.KindNaNNotAllowed
	ErrInfinityNotAllowed            = wire.KindInfinityNotAllowed
	ErrMaxDepthExceeded              = wire.KindMaxDepthExceeded
	ErrMaxStringLengthExceeded       = wire.KindMaxStringLengthExceeded
	ErrMaxContainerSizeExceeded      = wire.KindMaxContainerSizeExceeded
	ErrMaxDocumentSizeExceeded       = wire.KindMaxDocumentSizeExceeded
	ErrMaxBigNumberExponentExceeded  = wire.KindMaxBigNumberExponentExceeded
	ErrMaxBigNumberMagnitudeExceeded = wire.KindMaxBigNumberMagnitudeExceeded

	// Access.
	ErrTypeMismatch = wire.KindTypeMismatch
	ErrKeyNotFound  = wire.KindKeyNotFound
)

// KindOf extracts the error kind, or ErrorKind zero when err is not a
// codec error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return wire.KindNone
}
