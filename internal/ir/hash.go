package ir

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainSource        = "pentagram/source/v1"
	DomainTerms         = "pentagram/terms/v1"
	DomainResolvedTerms = "pentagram/resolved-terms/v1"
	DomainTestResult    = "pentagram/test-result/v1"
	DomainTransitive    = "pentagram/transitive/v1"
)

// ContentHash is a 256-bit digest. Hashes are totally ordered by Compare.
type ContentHash [32]byte

func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters, for logs.
func (h ContentHash) Short() string {
	return h.String()[:12]
}

// Compare orders hashes bytewise.
func (h ContentHash) Compare(other ContentHash) int {
	return bytes.Compare(h[:], other[:])
}

// IsZero reports whether h is the all-zero hash.
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// digest accumulates a domain-separated BLAKE2b-256 hash.
// Format: BLAKE2b(domain + 0x00 + fields...)
// Strings are length-prefixed and integers little-endian so that distinct
// field sequences never produce the same byte stream.
type digest struct {
	h   hash.Hash
	buf [8]byte
}

func newDigest(domain string) *digest {
	// New256 only fails for keys longer than 64 bytes.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	return &digest{h: h}
}

func (d *digest) byte(b byte) {
	d.h.Write([]byte{b})
}

func (d *digest) uint64(v uint64) {
	binary.LittleEndian.PutUint64(d.buf[:], v)
	d.h.Write(d.buf[:])
}

func (d *digest) string(s string) {
	d.uint64(uint64(len(s)))
	d.h.Write([]byte(s))
}

func (d *digest) span(s Span) {
	d.uint64(uint64(s.Start))
	d.uint64(uint64(s.End))
}

func (d *digest) value(v Value) {
	switch v := v.(type) {
	case Integer:
		d.byte('i')
		d.uint64(uint64(v))
	case String:
		d.byte('s')
		d.string(string(v))
	case Boolean:
		d.byte('b')
		if v {
			d.byte(1)
		} else {
			d.byte(0)
		}
	}
}

func (d *digest) sum() ContentHash {
	var out ContentHash
	copy(out[:], d.h.Sum(nil))
	return out
}

// HashSource hashes raw file content.
func HashSource(content string) ContentHash {
	d := newDigest(DomainSource)
	d.string(content)
	return d.sum()
}

// HashTerms hashes a syntactic body. Spans are part of the hash, so moving a
// term changes the hash even when the terms are equal.
func HashTerms(body []Spanned[Term]) ContentHash {
	d := newDigest(DomainTerms)
	d.uint64(uint64(len(body)))
	for _, t := range body {
		switch v := t.Value.(type) {
		case Literal:
			d.byte('L')
			d.value(v.Value)
		case Word:
			d.byte('W')
			d.string(v.Name)
		}
		d.span(t.Span)
	}
	return d.sum()
}

// HashResolvedTerms hashes a resolved body.
func HashResolvedTerms(body []Spanned[ResolvedTerm]) ContentHash {
	d := newDigest(DomainResolvedTerms)
	d.uint64(uint64(len(body)))
	for _, t := range body {
		switch v := t.Value.(type) {
		case Literal:
			d.byte('L')
			d.value(v.Value)
		case WordRef:
			switch w := v.Target.(type) {
			case Builtin:
				d.byte('B')
				d.byte(byte(w))
			case FunctionID:
				d.byte('F')
				d.string(string(w))
			}
		}
		d.span(t.Span)
	}
	return d.sum()
}

// HashTestResult hashes a test outcome.
func HashTestResult(passed bool, output string) ContentHash {
	d := newDigest(DomainTestResult)
	if passed {
		d.byte(1)
	} else {
		d.byte(0)
	}
	d.string(output)
	return d.sum()
}

// FoldHashes folds an item's own hash with the transitive hashes of its
// callees. Callers supply deps already ordered by callee id.
func FoldHashes(own ContentHash, deps []ContentHash) ContentHash {
	d := newDigest(DomainTransitive)
	d.h.Write(own[:])
	d.uint64(uint64(len(deps)))
	for _, h := range deps {
		d.h.Write(h[:])
	}
	return d.sum()
}
