// Package engine runs Pentagram batches against an incremental database.
//
// A batch is one call to ExecuteFile, ExecuteREPL or ExecuteTests. Every
// batch moves through the same phases against the engine's one Database:
//
//  1. shred: ingest source, reusing the committed records of unchanged files
//  2. resolve: bind words to builtins or functions
//  3. analyze: compute transitive hashes over the call graph
//  4. run: execute statements, main, or the tests whose hashes changed
//
// Records produced by a batch are NewOnly; committed records a batch
// confirms are promoted to NewAndOld. If every phase succeeds the batch
// commits and keeps what is new; if any phase fails it rolls back and keeps
// what is old. Either way every record ends the batch OldOnly.
//
// Failures are returned as *Error. Located failures carry a
// *diag.ResolvedDiagnostic, resolved before rollback so that the source of
// a file first seen in the failing batch is still available.
//
// The engine is single-threaded and synchronous. Batches are numbered by a
// logical clock and, when a journal is configured, recorded in it.
package engine
