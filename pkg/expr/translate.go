package expr

import "fmt"

// quoteMethod names the conversion call a quoting frontend emits around each
// lambda level.
const quoteMethod = "ToFunc"

// Quote converts a function literal into its invocation-wrapped form: every
// lambda level becomes the first argument of a conversion call. This is the
// shape Translate expects for well-formed input. Nodes that are not lambdas
// pass through unchanged.
func Quote(n Node) Node {
	if l, ok := n.(*Lambda); ok {
		return &Invoke{
			Method: quoteMethod,
			Args:   []Node{&Lambda{Param: l.Param, Body: Quote(l.Body)}},
		}
	}
	return n
}

// Translate flattens an invocation-wrapped function literal into its ordered
// parameter list and single expression body.
//
// An Invoke whose first argument is a Lambda contributes that lambda's formal
// parameter and recursion continues into the lambda body, so curried nesting
// unwinds into one flat, declaration-ordered list. Any other shape terminates
// the walk and becomes the body as-is.
//
// Translate never fails and never checks arity: input it cannot unwind
// degrades to an empty parameter list, and the mismatch surfaces later when a
// callable of a declared arity is constructed from the result.
func Translate(n Node) ([]Param, Node) {
	inv, ok := n.(*Invoke)
	if !ok || len(inv.Args) == 0 {
		return nil, n
	}
	if l, ok := inv.Args[0].(*Lambda); ok {
		params, body := Translate(l.Body)
		return append([]Param{l.Param}, params...), body
	}
	// A member access (or anything else) in wrapper position contributes no
	// parameters; the whole invocation node becomes the body.
	return nil, n
}

// Callable is a function value in flattened form: an ordered parameter list
// and one expression body.
type Callable struct {
	Params []Param
	Body   Node
}

// NewCallable quotes and translates a function literal and checks the
// extracted parameter count against the declared arity. The arity check
// happens here, not in Translate: literals the translation cannot unwind
// produce an empty parameter list and fail at this point with an explicit
// mismatch error.
func NewCallable(arity int, n Node) (Callable, error) {
	params, body := Translate(Quote(n))
	if len(params) != arity {
		return Callable{}, fmt.Errorf("callable of arity %d: literal has %d parameters", arity, len(params))
	}
	return Callable{Params: params, Body: body}, nil
}

// Callable1 constructs a single-parameter callable, the form consumed by
// predicates, projections and orderings.
func Callable1(n Node) (Callable, error) {
	return NewCallable(1, n)
}

// Callable2 constructs a two-parameter callable, the form consumed by
// reductions.
func Callable2(n Node) (Callable, error) {
	return NewCallable(2, n)
}
