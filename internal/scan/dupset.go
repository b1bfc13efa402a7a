package scan

import (
	set3 "github.com/TomTonic/Set3"
	"github.com/dolthub/maphash"
)

// dupSet is the scanner's scratch duplicate-key detector for one object:
// a hash set of key hashes used as a fast filter, with byte comparison
// against the stored key offsets on a hash hit. It is discarded when the
// object closes.
type dupSet struct {
	hasher maphash.Hasher[string]
	seen   *set3.Set3[uint64]
}

func newDupSet(hasher maphash.Hasher[string]) *dupSet {
	return &dupSet{
		hasher: hasher,
		seen:   set3.EmptyWithCapacity[uint64](256),
	}
}

// probe hashes key and reports whether the hash was already present,
// inserting it either way. A true result is only a candidate duplicate;
// the caller must confirm by comparing bytes.
func (d *dupSet) probe(key []byte) bool {
	h := d.hasher.Hash(string(key))
	if d.seen.Contains(h) {
		return true
	}
	d.seen.Add(h)
	return false
}
