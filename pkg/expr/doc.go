// Package expr models function literals as expression trees and flattens
// them into the form the query compiler consumes.
//
// A literal such as "fun d -> d.Age > 30" is built with the package's
// constructors:
//
//	expr.Fn("d", expr.Gt(expr.Field(expr.Var("d"), "age"), expr.Val(30)))
//
// Multi-parameter literals nest as curried lambdas (Fn2 builds the nesting).
// Quote produces the invocation-wrapped shape a quoting frontend emits, and
// Translate unwinds that shape into an ordered parameter list plus a single
// expression body. NewCallable combines both and enforces a declared arity.
//
// # Node set
//
// The node set is closed: Invoke, Lambda, Ident, Member, Const, Binary,
// Unary and Builtin are the only implementations of Node. Consumers switch
// over the concrete types and treat anything they do not handle as an
// unsupported shape.
//
// # Purity
//
// Translate and Eval never mutate their input and hold no state; both are
// safe to call concurrently.
package expr
