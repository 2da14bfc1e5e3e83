// Package query provides LINQ-style combinators over the database layer.
//
// A query starts From a table, accumulates filters, ordering and paging, and
// executes with a terminal method:
//
//	dogs, err := query.From[Dog](db, "dog").
//		Where(expr.Fn("d", expr.Gt(expr.Field(expr.Var("d"), "age"), expr.Val(3)))).
//		OrderBy(expr.Fn("d", expr.Field(expr.Var("d"), "name"))).
//		Take(10).
//		ToList(ctx)
//
// Combinator misuse (an unsupported literal shape, ThenBy without OrderBy)
// does not fail mid-chain; the first error is carried and returned by the
// terminal method. Rows decode into the type parameter via mapstructure,
// with driver-specific values (record IDs, datetimes) converted on the way.
//
// Single-row semantics follow the wrapped driver's conventions: First returns
// database.ErrNotFound when nothing matches, TryFirst converts absence into a
// nil pointer, and the ExactlyOne variants additionally reject multiple rows
// with database.ErrMultiple.
package query
