// Package db holds the in-memory incremental database.
//
// A Database is a set of parallel record tables. Every record carries an
// ir.Generation and every batch against the database ends in exactly one of
// Commit or Rollback:
//
//   - Commit keeps records that are new to the batch and retags them OldOnly
//   - Rollback keeps records that predate the batch and retags them OldOnly
//
// Both walk every table. A table added to Database but missing from
// normalize is caught by TestCommitCoversEveryTable.
//
// Records produced during a batch enter through the Merge* methods, which
// all share Reconcile: a fresh record matching an unconfirmed OldOnly record
// promotes that record to NewAndOld instead of being stored twice.
//
// The database is not safe for concurrent use. Exactly one batch may be in
// flight at a time; callers serialize access.
package db
