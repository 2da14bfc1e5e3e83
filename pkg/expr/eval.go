package expr

import (
	"fmt"
	"reflect"
	"strings"
)

// Eval evaluates a callable's body with args bound to its parameters in
// declaration order. Documents are map[string]any values; member access
// navigates map keys. Numbers compare and combine as float64 regardless of
// their concrete integer or float type.
func Eval(c Callable, args ...any) (any, error) {
	if len(args) != len(c.Params) {
		return nil, fmt.Errorf("eval: callable of arity %d called with %d arguments", len(c.Params), len(args))
	}
	env := make(map[string]any, len(args))
	for i, p := range c.Params {
		env[p.Name] = args[i]
	}
	return evalNode(c.Body, env)
}

// EvalBool evaluates a callable expected to produce a boolean, such as a
// predicate body.
func EvalBool(c Callable, args ...any) (bool, error) {
	v, err := Eval(c, args...)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("eval: expected boolean result, got %T", v)
	}
	return b, nil
}

func evalNode(n Node, env map[string]any) (any, error) {
	switch t := n.(type) {
	case *Const:
		return t.Value, nil
	case *Ident:
		v, ok := env[t.Name]
		if !ok {
			return nil, fmt.Errorf("eval: unbound identifier %q", t.Name)
		}
		return v, nil
	case *Member:
		target, err := evalNode(t.Target, env)
		if err != nil {
			return nil, err
		}
		doc, ok := target.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("eval: member %q on non-document value %T", t.Name, target)
		}
		return doc[t.Name], nil
	case *Binary:
		return evalBinary(t, env)
	case *Unary:
		return evalUnary(t, env)
	case *Builtin:
		return evalBuiltin(t, env)
	default:
		return nil, fmt.Errorf("eval: unsupported node %T", n)
	}
}

func evalBinary(b *Binary, env map[string]any) (any, error) {
	// Logic operators short-circuit.
	switch b.Op {
	case OpAnd, OpOr:
		l, err := evalNode(b.Left, env)
		if err != nil {
			return nil, err
		}
		lb, ok := l.(bool)
		if !ok {
			return nil, fmt.Errorf("eval: %s on non-boolean %T", b.Op, l)
		}
		if b.Op == OpAnd && !lb {
			return false, nil
		}
		if b.Op == OpOr && lb {
			return true, nil
		}
		r, err := evalNode(b.Right, env)
		if err != nil {
			return nil, err
		}
		rb, ok := r.(bool)
		if !ok {
			return nil, fmt.Errorf("eval: %s on non-boolean %T", b.Op, r)
		}
		return rb, nil
	}

	l, err := evalNode(b.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := evalNode(b.Right, env)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case OpEq:
		return equal(l, r), nil
	case OpNe:
		return !equal(l, r), nil
	case OpGt, OpGte, OpLt, OpLte:
		cmp, err := compare(l, r)
		if err != nil {
			return nil, err
		}
		switch b.Op {
		case OpGt:
			return cmp > 0, nil
		case OpGte:
			return cmp >= 0, nil
		case OpLt:
			return cmp < 0, nil
		default:
			return cmp <= 0, nil
		}
	case OpAdd:
		if ls, ok := l.(string); ok {
			rs, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("eval: + on string and %T", r)
			}
			return ls + rs, nil
		}
		return arith(b.Op, l, r)
	case OpSub, OpMul, OpDiv:
		return arith(b.Op, l, r)
	default:
		return nil, fmt.Errorf("eval: unsupported operator %s", b.Op)
	}
}

func evalUnary(u *Unary, env map[string]any) (any, error) {
	v, err := evalNode(u.Operand, env)
	if err != nil {
		return nil, err
	}
	switch u.Op {
	case OpNot:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("eval: ! on non-boolean %T", v)
		}
		return !b, nil
	case OpNeg:
		f, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("eval: negation of non-numeric %T", v)
		}
		return -f, nil
	default:
		return nil, fmt.Errorf("eval: unsupported operator %s", u.Op)
	}
}

func evalBuiltin(fn *Builtin, env map[string]any) (any, error) {
	args := make([]any, len(fn.Args))
	for i, a := range fn.Args {
		v, err := evalNode(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	str := func(i int) (string, error) {
		s, ok := args[i].(string)
		if !ok {
			return "", fmt.Errorf("eval: %s requires a string argument, got %T", fn.Name, args[i])
		}
		return s, nil
	}

	switch fn.Name {
	case FnContains, FnStartsWith, FnEndsWith:
		s, err := str(0)
		if err != nil {
			return nil, err
		}
		sub, err := str(1)
		if err != nil {
			return nil, err
		}
		switch fn.Name {
		case FnContains:
			return strings.Contains(s, sub), nil
		case FnStartsWith:
			return strings.HasPrefix(s, sub), nil
		default:
			return strings.HasSuffix(s, sub), nil
		}
	case FnLower:
		s, err := str(0)
		if err != nil {
			return nil, err
		}
		return strings.ToLower(s), nil
	case FnUpper:
		s, err := str(0)
		if err != nil {
			return nil, err
		}
		return strings.ToUpper(s), nil
	case FnIn:
		rv := reflect.ValueOf(args[1])
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("eval: in requires a collection, got %T", args[1])
		}
		for i := 0; i < rv.Len(); i++ {
			if equal(args[0], rv.Index(i).Interface()) {
				return true, nil
			}
		}
		return false, nil
	default:
		return nil, fmt.Errorf("eval: unknown builtin %q", fn.Name)
	}
}

// equal compares two values, treating any pair of numbers as equal when
// their float64 values match.
func equal(l, r any) bool {
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if lok && rok {
		return lf == rf
	}
	return reflect.DeepEqual(l, r)
}

func compare(l, r any) (int, error) {
	if lf, ok := toFloat(l); ok {
		rf, ok := toFloat(r)
		if !ok {
			return 0, fmt.Errorf("eval: cannot compare number with %T", r)
		}
		switch {
		case lf < rf:
			return -1, nil
		case lf > rf:
			return 1, nil
		default:
			return 0, nil
		}
	}
	if ls, ok := l.(string); ok {
		rs, ok := r.(string)
		if !ok {
			return 0, fmt.Errorf("eval: cannot compare string with %T", r)
		}
		return strings.Compare(ls, rs), nil
	}
	return 0, fmt.Errorf("eval: cannot order values of type %T", l)
}

func arith(op Op, l, r any) (any, error) {
	lf, lok := toFloat(l)
	rf, rok := toFloat(r)
	if !lok || !rok {
		return nil, fmt.Errorf("eval: %s on non-numeric operands %T and %T", op, l, r)
	}
	switch op {
	case OpAdd:
		return lf + rf, nil
	case OpSub:
		return lf - rf, nil
	case OpMul:
		return lf * rf, nil
	case OpDiv:
		if rf == 0 {
			return nil, fmt.Errorf("eval: division by zero")
		}
		return lf / rf, nil
	default:
		return nil, fmt.Errorf("eval: unsupported operator %s", op)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
