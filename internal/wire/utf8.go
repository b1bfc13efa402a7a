package wire

import (
	"bytes"
	"unicode/utf8"
)

// UTF-8 validation and repair. Validation rejects malformed sequences,
// surrogates, overlong encodings and code points above U+10FFFF (all of
// which utf8.DecodeRune reports as RuneError with size 1). NUL handling is
// a separate policy.

// CheckString validates b against the string policies. It returns
// needsRepair=true when the bytes are malformed but the policy repairs
// rather than rejects.
func CheckString(b []byte, offset int64, opts *Options) (needsRepair bool, err error) {
	if opts.NulInString == NulReject && bytes.IndexByte(b, 0x00) >= 0 {
		return false, NewError(KindNulInString, offset, "string contains U+0000")
	}
	if utf8.Valid(b) {
		return false, nil
	}
	if opts.InvalidUTF8 == UTF8Reject {
		return false, NewError(KindInvalidUTF8, offset, "malformed UTF-8 sequence")
	}
	return true, nil
}

// RepairUTF8 rewrites b according to the strategy: malformed bytes become
// U+FFFD under UTF8Replace and are dropped under UTF8Delete.
func RepairUTF8(b []byte, strategy UTF8Strategy) []byte {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size == 1 {
			if strategy == UTF8Replace {
				out = utf8.AppendRune(out, utf8.RuneError)
			}
			i++
			continue
		}
		out = append(out, b[i:i+size]...)
		i += size
	}
	return out
}
