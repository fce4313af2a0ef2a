// Package core provides the business logic for importing and reporting on
// student exam results.
//
// This package holds all domain logic independent of any UI or transport
// layer. The CLI, the terminal menu and the HTTP API all call into it.
//
// # Pipeline
//
// Each input line goes through three steps:
//
//  1. [ParseLine] splits it into exactly four cleaned fields.
//  2. [Validate] checks the fields in a fixed order and parses the score.
//  3. [Classify] attaches the letter grade.
//
// The [Importer] runs a batch of lines through that pipeline, rejecting
// repeated index numbers within the batch. A bad line never aborts a batch:
// it becomes a [Rejection] carrying the line number, the raw text and a
// taxonomy reason (see [Reason]).
//
// # Persistence
//
// Accepted records are written through the [Store] interface. [PgStore]
// implements it on PostgreSQL, writing each batch in one transaction with a
// savepoint per record so a single refused record does not undo the others.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - VAL001-VAL008: Line errors (malformed, empty or long fields, score problems)
//   - FILE001-FILE002: File errors (unreadable, too large)
//   - DB001-DB006: Database errors (duplicates, missing records, connections)
//   - IMP001-IMP003: Import errors (busy, cancelled, timeout)
//   - AUTH001-AUTH003: Account errors
package core
