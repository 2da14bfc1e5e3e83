package expr

// Op identifies a binary or unary operator.
type Op string

// Binary operators.
const (
	OpEq  Op = "="
	OpNe  Op = "!="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpAnd Op = "&&"
	OpOr  Op = "||"
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
)

// Unary operators.
const (
	OpNot Op = "!"
	OpNeg Op = "neg"
)

// Param is a formal parameter of a function literal.
type Param struct {
	Name string
}

// Node is a single node of an expression tree. The set of implementations
// is closed to this package.
type Node interface {
	isNode()
}

// Invoke is a method-invocation node. Quoting frontends wrap every lambda
// level in an Invoke whose first argument is the lambda itself; Translate
// recognizes exactly that shape.
type Invoke struct {
	Method string
	Args   []Node
}

// Lambda is a function literal with exactly one formal parameter.
// Literals of higher arity nest as curried lambdas, each level binding the
// next parameter.
type Lambda struct {
	Param Param
	Body  Node
}

// Ident references a formal parameter by name.
type Ident struct {
	Name string
}

// Member accesses a named field of its target.
type Member struct {
	Target Node
	Name   string
}

// Const is a literal value captured in the expression.
type Const struct {
	Value any
}

// Binary applies an infix operator to two operands.
type Binary struct {
	Op    Op
	Left  Node
	Right Node
}

// Unary applies a prefix operator to one operand.
type Unary struct {
	Op      Op
	Operand Node
}

// Builtin applies a named builtin function, such as the string helpers.
type Builtin struct {
	Name string
	Args []Node
}

func (*Invoke) isNode()  {}
func (*Lambda) isNode()  {}
func (*Ident) isNode()   {}
func (*Member) isNode()  {}
func (*Const) isNode()   {}
func (*Binary) isNode()  {}
func (*Unary) isNode()   {}
func (*Builtin) isNode() {}

// Fn builds a single-parameter function literal.
func Fn(param string, body Node) *Lambda {
	return &Lambda{Param: Param{Name: param}, Body: body}
}

// Fn2 builds a two-parameter function literal in curried form: the outer
// lambda binds a, the inner binds b.
func Fn2(a, b string, body Node) *Lambda {
	return Fn(a, Fn(b, body))
}

// Var references a formal parameter by name.
func Var(name string) *Ident {
	return &Ident{Name: name}
}

// Field accesses a field path on a target, nesting one Member per element.
func Field(target Node, path ...string) Node {
	n := target
	for _, p := range path {
		n = &Member{Target: n, Name: p}
	}
	return n
}

// Val wraps a literal value.
func Val(v any) *Const {
	return &Const{Value: v}
}

// Eq compares two operands for equality.
func Eq(l, r Node) *Binary { return &Binary{Op: OpEq, Left: l, Right: r} }

// Ne compares two operands for inequality.
func Ne(l, r Node) *Binary { return &Binary{Op: OpNe, Left: l, Right: r} }

// Gt is the greater-than comparison.
func Gt(l, r Node) *Binary { return &Binary{Op: OpGt, Left: l, Right: r} }

// Gte is the greater-or-equal comparison.
func Gte(l, r Node) *Binary { return &Binary{Op: OpGte, Left: l, Right: r} }

// Lt is the less-than comparison.
func Lt(l, r Node) *Binary { return &Binary{Op: OpLt, Left: l, Right: r} }

// Lte is the less-or-equal comparison.
func Lte(l, r Node) *Binary { return &Binary{Op: OpLte, Left: l, Right: r} }

// And is the short-circuit conjunction.
func And(l, r Node) *Binary { return &Binary{Op: OpAnd, Left: l, Right: r} }

// Or is the short-circuit disjunction.
func Or(l, r Node) *Binary { return &Binary{Op: OpOr, Left: l, Right: r} }

// Add sums two numeric operands, or concatenates two strings.
func Add(l, r Node) *Binary { return &Binary{Op: OpAdd, Left: l, Right: r} }

// Sub subtracts the right operand from the left.
func Sub(l, r Node) *Binary { return &Binary{Op: OpSub, Left: l, Right: r} }

// Mul multiplies two numeric operands.
func Mul(l, r Node) *Binary { return &Binary{Op: OpMul, Left: l, Right: r} }

// Div divides the left operand by the right.
func Div(l, r Node) *Binary { return &Binary{Op: OpDiv, Left: l, Right: r} }

// Not negates a boolean operand.
func Not(n Node) *Unary { return &Unary{Op: OpNot, Operand: n} }

// Neg negates a numeric operand.
func Neg(n Node) *Unary { return &Unary{Op: OpNeg, Operand: n} }

// Builtin function names understood by the compiler and the evaluator.
const (
	FnContains   = "contains"
	FnStartsWith = "startsWith"
	FnEndsWith   = "endsWith"
	FnLower      = "lower"
	FnUpper      = "upper"
	FnIn         = "in"
)

// Contains tests whether string s contains substring sub.
func Contains(s, sub Node) *Builtin {
	return &Builtin{Name: FnContains, Args: []Node{s, sub}}
}

// StartsWith tests whether string s starts with prefix.
func StartsWith(s, prefix Node) *Builtin {
	return &Builtin{Name: FnStartsWith, Args: []Node{s, prefix}}
}

// EndsWith tests whether string s ends with suffix.
func EndsWith(s, suffix Node) *Builtin {
	return &Builtin{Name: FnEndsWith, Args: []Node{s, suffix}}
}

// Lower lowercases a string operand.
func Lower(s Node) *Builtin {
	return &Builtin{Name: FnLower, Args: []Node{s}}
}

// Upper uppercases a string operand.
func Upper(s Node) *Builtin {
	return &Builtin{Name: FnUpper, Args: []Node{s}}
}

// In tests whether a value is an element of a collection.
func In(v, collection Node) *Builtin {
	return &Builtin{Name: FnIn, Args: []Node{v, collection}}
}
