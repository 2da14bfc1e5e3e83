// Package database provides the driver abstraction the docq binding runs on.
//
// This package defines the Database interface that abstracts SurrealDB
// operations, keeping the expression, query and session layers free of
// driver details.
//
// # Interface Design
//
// The Database interface provides three query methods:
//   - Query: Returns multiple results (for SELECT queries returning lists)
//   - QueryOne: Returns a single result (for SELECT by ID)
//   - Execute: No return value (for CREATE/UPDATE/DELETE mutations)
//
// # Transaction Support
//
// IMPORTANT: Transactions in this package are BATCH-BASED, not
// connection-level. Statements accumulate in memory and are wrapped in
// BEGIN TRANSACTION / COMMIT TRANSACTION at execution time, so they succeed
// or fail together but see no isolation between Add() calls. AtomicBatch is
// the primary entry point; session.SaveChanges flushes through it.
//
// # Error Handling
//
// Standard errors are defined for common failure cases:
//   - ErrNotFound: Record does not exist
//   - ErrMultiple: More than one record where exactly one was expected
//   - ErrDuplicate: Unique constraint violation
//   - ErrConnection: Database connection issues
//   - ErrQuery: Query execution failures
//
// Use errors.Is() to check error types:
//
//	if errors.Is(err, database.ErrNotFound) {
//	    // Handle missing record
//	}
//
// # Usage Example
//
//	db := database.NewSurrealDB(cfg)
//	db.Connect(ctx)
//	defer db.Close()
//
//	result, err := db.QueryOne(ctx, "SELECT * FROM type::record($id)", map[string]any{"id": id})
package database
