package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forgo/docq/pkg/expr"
)

// docParam is the formal parameter name used by CLI-built literals.
const docParam = "d"

// ParseWhere turns filter expressions of the form "field op value" into one
// predicate literal, conjoining multiple filters with AND. Supported
// operators: = != > >= < <= contains startswith endswith. The field may be a
// dotted path; the value parses as a bool, int, or float before falling back
// to a string (surrounding quotes stripped).
func ParseWhere(filters []string) (*expr.Lambda, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	var body expr.Node
	for _, f := range filters {
		cond, err := parseFilter(f)
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = cond
		} else {
			body = expr.And(body, cond)
		}
	}
	return expr.Fn(docParam, body), nil
}

// ParseSelector turns a dotted field path into a projection literal.
func ParseSelector(path string) *expr.Lambda {
	return expr.Fn(docParam, fieldNode(path))
}

func parseFilter(f string) (expr.Node, error) {
	parts := strings.SplitN(strings.TrimSpace(f), " ", 3)
	if len(parts) != 3 {
		return nil, fmt.Errorf("filter %q: want \"field op value\"", f)
	}
	field, op, raw := parts[0], parts[1], parts[2]

	lhs := fieldNode(field)
	val := expr.Val(parseValue(raw))

	switch op {
	case "=":
		return expr.Eq(lhs, val), nil
	case "!=":
		return expr.Ne(lhs, val), nil
	case ">":
		return expr.Gt(lhs, val), nil
	case ">=":
		return expr.Gte(lhs, val), nil
	case "<":
		return expr.Lt(lhs, val), nil
	case "<=":
		return expr.Lte(lhs, val), nil
	case "contains":
		return expr.Contains(lhs, val), nil
	case "startswith":
		return expr.StartsWith(lhs, val), nil
	case "endswith":
		return expr.EndsWith(lhs, val), nil
	default:
		return nil, fmt.Errorf("filter %q: unknown operator %q", f, op)
	}
}

func fieldNode(path string) expr.Node {
	return expr.Field(expr.Var(docParam), strings.Split(path, ".")...)
}

func parseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 2 {
		if (raw[0] == '\'' && raw[len(raw)-1] == '\'') || (raw[0] == '"' && raw[len(raw)-1] == '"') {
			return raw[1 : len(raw)-1]
		}
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
