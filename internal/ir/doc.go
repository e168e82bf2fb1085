// Package ir provides the shared data model for the Pentagram engine.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// record types, identifiers and hashing rules in one foundational layer.
//
// Key design constraints:
//   - Integers are int64; there are no floating point values in the language
//   - Spans are byte offsets into the owning file's source
//   - Every record carries exactly one Generation; only the db and engine
//     packages mutate it
//   - Content hashes are 256-bit BLAKE2b digests with domain separation
package ir
