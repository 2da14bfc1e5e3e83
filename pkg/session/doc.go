// Package session provides the unit-of-work surface of the binding.
//
// A Session queues document mutations (Store, Delete, DeleteWhere and
// field-level patches) and flushes them atomically with SaveChanges, which
// wraps everything queued in one database transaction. Reads (Load, TryLoad
// and the query package) execute immediately and never see queued writes.
//
//	sess := session.Open(db)
//	sess.Store("dog", &dog)
//	sess.Patch("dog", other.ID).Inc(visitsSel, 1)
//	if err := sess.SaveChanges(ctx); err != nil { ... }
//
// Documents are structs or maps carrying a string "id" field; Store assigns
// a fresh table-prefixed UUID when the field is empty. TryLoad converts the
// driver's not-found signal into a nil pointer; Load keeps it as an error.
package session
