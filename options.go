// Copyright (c) 2025 SciGo BONJSON Library Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

package bonjson

import "github.com/scigolib/bonjson/internal/wire"

// Options is the policy layer: security limits plus the user-selectable
// relaxations of the default rejections.
type Options = wire.Options

// BigNumber is a signed arbitrary-precision decimal with value
// sign * integer(magnitude, little-endian) * 10^exponent.
type BigNumber = wire.BigNumber

// DefaultOptions returns the default policy: every relaxation off, the
// default limits of the format.
func DefaultOptions() Options { return wire.DefaultOptions() }

// Option configures an encoder or a decode call.
// This follows the Functional Options Pattern (Go standard 2025).
//
// Example:
//
//	doc, err := bonjson.Decode(data,
//	    bonjson.WithMaxDepth(64),
//	    bonjson.WithDuplicateKeys(bonjson.DuplicateKeyKeepLast),
//	)
type Option func(*Options)

// Strategy values re-exported for option construction.
const (
	NulReject = wire.NulReject
	NulAllow  = wire.NulAllow

	UTF8Reject  = wire.UTF8Reject
	UTF8Replace = wire.UTF8Replace
	UTF8Delete  = wire.UTF8Delete

	DuplicateKeyReject    = wire.DuplicateKeyReject
	DuplicateKeyKeepFirst = wire.DuplicateKeyKeepFirst
	DuplicateKeyKeepLast  = wire.DuplicateKeyKeepLast

	TrailingBytesReject = wire.TrailingBytesReject
	TrailingBytesAllow  = wire.TrailingBytesAllow

	NonFiniteReject    = wire.NonFiniteReject
	NonFiniteAllow     = wire.NonFiniteAllow
	NonFiniteStringify = wire.NonFiniteStringify

	NormalizationNone = wire.NormalizationNone
	NormalizationNFC  = wire.NormalizationNFC

	BigNumberReject    = wire.BigNumberReject
	BigNumberStringify = wire.BigNumberStringify
)

// WithMaxDepth caps container nesting on encode and decode.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithMaxContainerSize caps elements per container (objects count keys and
// values separately).
func WithMaxContainerSize(n int) Option {
	return func(o *Options) { o.MaxContainerSize = n }
}

// WithMaxStringLength caps the byte length of a single string.
func WithMaxStringLength(n int) Option {
	return func(o *Options) { o.MaxStringLength = n }
}

// WithMaxDocumentSize caps the total document size in bytes.
func WithMaxDocumentSize(n int64) Option {
	return func(o *Options) { o.MaxDocumentSize = n }
}

// WithMaxBigNumberExponent caps abs(exponent) of BigNumbers; 0 disables
// the cap.
func WithMaxBigNumberExponent(n int64) Option {
	return func(o *Options) { o.MaxBigNumberExponent = n }
}

// WithMaxBigNumberMagnitude caps the magnitude byte count of BigNumbers;
// 0 disables the cap.
func WithMaxBigNumberMagnitude(n int) Option {
	return func(o *Options) { o.MaxBigNumberMagnitude = n }
}

// WithNulInString selects the treatment of U+0000 inside strings.
func WithNulInString(s wire.NulStrategy) Option {
	return func(o *Options) { o.NulInString = s }
}

// WithInvalidUTF8 selects the treatment of malformed UTF-8.
func WithInvalidUTF8(s wire.UTF8Strategy) Option {
	return func(o *Options) { o.InvalidUTF8 = s }
}

// WithDuplicateKeys selects the treatment of repeated object keys.
func WithDuplicateKeys(s wire.DuplicateKeyStrategy) Option {
	return func(o *Options) { o.DuplicateKeys = s }
}

// WithTrailingBytes selects the treatment of bytes after the root value.
func WithTrailingBytes(s wire.TrailingBytesStrategy) Option {
	return func(o *Options) { o.TrailingBytes = s }
}

// WithNonFinite selects the treatment of NaN and infinities.
func WithNonFinite(s wire.NonFiniteStrategy) Option {
	return func(o *Options) { o.NonFinite = s }
}

// WithNonFiniteSpellings sets the three strings substituted for +Inf,
// -Inf and NaN under the stringify policy, and recognised by the reader
// under the symmetric decode policy.
func WithNonFiniteSpellings(posInf, negInf, nan string) Option {
	return func(o *Options) {
		o.PosInfString = posInf
		o.NegInfString = negInf
		o.NaNString = nan
	}
}

// WithNormalization selects Unicode normalization of decoded strings.
func WithNormalization(f wire.NormalizationForm) Option {
	return func(o *Options) { o.Normalization = f }
}

// WithBigNumberRange selects the treatment of BigNumbers exceeding the
// configured caps.
func WithBigNumberRange(s wire.BigNumberRangeStrategy) Option {
	return func(o *Options) { o.BigNumberRange = s }
}

// WithAutoRecords enables record-mode probing: arrays of two or more
// objects with identical key sequences are emitted as a record definition
// plus key-less instances.
func WithAutoRecords(on bool) Option {
	return func(o *Options) { o.AutoRecords = on }
}

func buildOptions(opts []Option) Options {
	o := wire.DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
