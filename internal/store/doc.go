// Package store is the SQLite batch journal.
//
// Every engine batch appends one row to batches, plus one row per test
// result it produced to test_outcomes. The journal is write-only from the
// engine's point of view: it is never read back to rebuild a database.
//
// # Ordering
//
//   - Batches are ordered by seq, a logical clock, never by wall time.
//   - Queries return batches newest first and outcomes in test id order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Captured test output is stored zstd-compressed.
package store
