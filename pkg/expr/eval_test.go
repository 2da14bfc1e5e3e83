package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCallable1(t *testing.T, fn *Lambda) Callable {
	t.Helper()
	c, err := Callable1(fn)
	require.NoError(t, err)
	return c
}

func TestEvalPredicate(t *testing.T) {
	dog := map[string]any{"name": "Spark", "age": 5}

	cases := []struct {
		name string
		body Node
		want bool
	}{
		{"equality match", Eq(Field(Var("d"), "name"), Val("Spark")), true},
		{"equality miss", Eq(Field(Var("d"), "name"), Val("Rex")), false},
		{"greater than", Gt(Field(Var("d"), "age"), Val(3)), true},
		{"greater than miss", Gt(Field(Var("d"), "age"), Val(5)), false},
		{"gte boundary", Gte(Field(Var("d"), "age"), Val(5)), true},
		{"less than", Lt(Field(Var("d"), "age"), Val(10)), true},
		{"lte boundary", Lte(Field(Var("d"), "age"), Val(5)), true},
		{"not equal", Ne(Field(Var("d"), "name"), Val("Rex")), true},
		{"conjunction", And(Gt(Field(Var("d"), "age"), Val(3)), Eq(Field(Var("d"), "name"), Val("Spark"))), true},
		{"conjunction short-circuit", And(Val(false), Eq(Val(1), Val(2))), false},
		{"disjunction", Or(Val(false), Gt(Field(Var("d"), "age"), Val(1))), true},
		{"negation", Not(Eq(Field(Var("d"), "name"), Val("Rex"))), true},
		{"contains", Contains(Field(Var("d"), "name"), Val("par")), true},
		{"starts with", StartsWith(Field(Var("d"), "name"), Val("Sp")), true},
		{"ends with", EndsWith(Field(Var("d"), "name"), Val("rk")), true},
		{"in", In(Field(Var("d"), "name"), Val([]string{"Rex", "Spark"})), true},
		{"not in", In(Field(Var("d"), "name"), Val([]string{"Rex", "Fido"})), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EvalBool(mustCallable1(t, Fn("d", tc.body)), dog)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvalNumericCoercion(t *testing.T) {
	// Driver results carry numbers as float64 or uint64 depending on codec;
	// comparisons must not care.
	c := mustCallable1(t, Fn("d", Eq(Field(Var("d"), "age"), Val(5))))

	for _, age := range []any{5, int64(5), uint64(5), float64(5)} {
		got, err := EvalBool(c, map[string]any{"age": age})
		require.NoError(t, err)
		assert.True(t, got, "age of type %T", age)
	}
}

func TestEvalProjection(t *testing.T) {
	c := mustCallable1(t, Fn("s", Field(Var("s"), "name")))
	got, err := Eval(c, map[string]any{"name": "Spark"})
	require.NoError(t, err)
	assert.Equal(t, "Spark", got)
}

func TestEvalNestedMember(t *testing.T) {
	c := mustCallable1(t, Fn("d", Field(Var("d"), "owner", "city")))
	got, err := Eval(c, map[string]any{"owner": map[string]any{"city": "Lisbon"}})
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got)
}

func TestEvalTwoParameterReduction(t *testing.T) {
	c, err := Callable2(Fn2("acc", "d", Add(Var("acc"), Field(Var("d"), "age"))))
	require.NoError(t, err)

	acc := any(0)
	for _, age := range []int{3, 5, 7} {
		acc, err = Eval(c, acc, map[string]any{"age": age})
		require.NoError(t, err)
	}
	assert.Equal(t, float64(15), acc)
}

func TestEvalArithmetic(t *testing.T) {
	c := mustCallable1(t, Fn("d", Mul(Sub(Field(Var("d"), "age"), Val(1)), Val(2))))
	got, err := Eval(c, map[string]any{"age": 5})
	require.NoError(t, err)
	assert.Equal(t, float64(8), got)
}

func TestEvalErrors(t *testing.T) {
	t.Run("wrong argument count", func(t *testing.T) {
		c := mustCallable1(t, Fn("d", Val(true)))
		_, err := Eval(c)
		require.Error(t, err)
	})

	t.Run("member on scalar", func(t *testing.T) {
		c := mustCallable1(t, Fn("d", Field(Var("d"), "name")))
		_, err := Eval(c, "not a document")
		require.Error(t, err)
	})

	t.Run("ordering incompatible types", func(t *testing.T) {
		c := mustCallable1(t, Fn("d", Gt(Field(Var("d"), "age"), Val("five"))))
		_, err := Eval(c, map[string]any{"age": 5})
		require.Error(t, err)
	})

	t.Run("division by zero", func(t *testing.T) {
		c := mustCallable1(t, Fn("d", Div(Val(1), Val(0))))
		_, err := Eval(c, map[string]any{})
		require.Error(t, err)
	})

	t.Run("non-boolean predicate", func(t *testing.T) {
		c := mustCallable1(t, Fn("d", Field(Var("d"), "age")))
		_, err := EvalBool(c, map[string]any{"age": 5})
		require.Error(t, err)
	})
}
