// Package surql renders translated callables into SurrealQL fragments.
//
// The expression layer stays database-agnostic; this package is the one
// place that knows how a flattened function literal maps onto SurrealQL
// syntax. All constants are bound as $pN variables through a Binder so
// fragments from several callables can share one statement safely.
package surql

import (
	"fmt"
	"strings"

	"github.com/forgo/docq/pkg/expr"
)

// Binder allocates statement variables and accumulates their values.
// One Binder serves one statement; fragments compiled against the same
// Binder never collide.
type Binder struct {
	n    int
	vars map[string]any
}

// NewBinder creates an empty Binder.
func NewBinder() *Binder {
	return &Binder{vars: make(map[string]any)}
}

// Vars returns the accumulated variable values keyed by name (without the
// $ prefix, the way the driver expects them).
func (b *Binder) Vars() map[string]any {
	return b.vars
}

// Bind registers a value under a fresh variable name and returns its $name
// reference.
func (b *Binder) Bind(v any) string {
	b.n++
	name := fmt.Sprintf("p%d", b.n)
	b.vars[name] = v
	return "$" + name
}

// Where renders an arity-1 callable as a WHERE condition. The callable's
// single parameter stands for the document, so member access renders as a
// bare field path.
func Where(b *Binder, c expr.Callable) (string, error) {
	doc, err := docParam(c)
	if err != nil {
		return "", err
	}
	return render(b, c.Body, doc)
}

// Value renders an arity-1 callable as a value expression, the form used by
// SELECT VALUE projections and aggregate arguments.
func Value(b *Binder, c expr.Callable) (string, error) {
	doc, err := docParam(c)
	if err != nil {
		return "", err
	}
	return render(b, c.Body, doc)
}

// OrderTerm renders an arity-1 selector as an ORDER BY term. Only a plain
// field path is orderable.
func OrderTerm(c expr.Callable) (string, error) {
	doc, err := docParam(c)
	if err != nil {
		return "", err
	}
	return fieldPath(c.Body, doc)
}

// AssignOp selects the patch assignment form.
type AssignOp string

// Assignment forms for field-level patches.
const (
	AssignSet AssignOp = "="
	AssignInc AssignOp = "+="
)

// Assign renders a field selector and a bound value as a SET assignment.
func Assign(b *Binder, c expr.Callable, op AssignOp, value any) (string, error) {
	path, err := OrderTerm(c)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", path, op, b.Bind(value)), nil
}

func docParam(c expr.Callable) (string, error) {
	if len(c.Params) != 1 {
		return "", fmt.Errorf("surql: expected a single-parameter callable, got arity %d", len(c.Params))
	}
	return c.Params[0].Name, nil
}

// fieldPath resolves a member chain rooted at the document parameter into a
// dotted field path.
func fieldPath(n expr.Node, doc string) (string, error) {
	var parts []string
	for {
		switch t := n.(type) {
		case *expr.Member:
			parts = append([]string{t.Name}, parts...)
			n = t.Target
		case *expr.Ident:
			if t.Name != doc {
				return "", fmt.Errorf("surql: unbound identifier %q", t.Name)
			}
			if len(parts) == 0 {
				return "", fmt.Errorf("surql: document parameter %q must be used through a field access", doc)
			}
			return strings.Join(parts, "."), nil
		default:
			return "", fmt.Errorf("surql: expected a field access, got %T", n)
		}
	}
}

var binaryOps = map[expr.Op]string{
	expr.OpEq:  "=",
	expr.OpNe:  "!=",
	expr.OpGt:  ">",
	expr.OpGte: ">=",
	expr.OpLt:  "<",
	expr.OpLte: "<=",
	expr.OpAnd: "AND",
	expr.OpOr:  "OR",
	expr.OpAdd: "+",
	expr.OpSub: "-",
	expr.OpMul: "*",
	expr.OpDiv: "/",
}

var builtins = map[string]string{
	expr.FnContains:   "string::contains",
	expr.FnStartsWith: "string::starts_with",
	expr.FnEndsWith:   "string::ends_with",
	expr.FnLower:      "string::lowercase",
	expr.FnUpper:      "string::uppercase",
}

func render(b *Binder, n expr.Node, doc string) (string, error) {
	switch t := n.(type) {
	case *expr.Const:
		return b.Bind(t.Value), nil
	case *expr.Member, *expr.Ident:
		return fieldPath(n, doc)
	case *expr.Binary:
		op, ok := binaryOps[t.Op]
		if !ok {
			return "", fmt.Errorf("surql: unsupported operator %s", t.Op)
		}
		left, err := render(b, t.Left, doc)
		if err != nil {
			return "", err
		}
		right, err := render(b, t.Right, doc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	case *expr.Unary:
		operand, err := render(b, t.Operand, doc)
		if err != nil {
			return "", err
		}
		switch t.Op {
		case expr.OpNot:
			return fmt.Sprintf("(NOT %s)", operand), nil
		case expr.OpNeg:
			return fmt.Sprintf("(-%s)", operand), nil
		default:
			return "", fmt.Errorf("surql: unsupported operator %s", t.Op)
		}
	case *expr.Builtin:
		return renderBuiltin(b, t, doc)
	default:
		// Lambda and Invoke nodes inside a body mean the literal was not a
		// plain predicate or projection.
		return "", fmt.Errorf("surql: unsupported node %T", n)
	}
}

func renderBuiltin(b *Binder, fn *expr.Builtin, doc string) (string, error) {
	args := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		s, err := render(b, a, doc)
		if err != nil {
			return "", err
		}
		args[i] = s
	}

	if fn.Name == expr.FnIn {
		if len(args) != 2 {
			return "", fmt.Errorf("surql: in requires 2 arguments, got %d", len(args))
		}
		return fmt.Sprintf("(%s IN %s)", args[0], args[1]), nil
	}

	name, ok := builtins[fn.Name]
	if !ok {
		return "", fmt.Errorf("surql: unknown builtin %q", fn.Name)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
}
