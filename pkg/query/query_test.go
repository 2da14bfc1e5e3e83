package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/docq/internal/database"
	"github.com/forgo/docq/internal/results"
	"github.com/forgo/docq/pkg/expr"
)

type Dog struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Age     int       `json:"age"`
	Adopted time.Time `json:"adopted"`
}

// fakeDB serves canned statement results and records what it was asked.
type fakeDB struct {
	queryFunc func(ctx context.Context, query string, vars map[string]any) ([]any, error)
	lastQuery string
	lastVars  map[string]any
}

func (f *fakeDB) Connect(ctx context.Context) error { return nil }
func (f *fakeDB) Close() error                      { return nil }
func (f *fakeDB) Ping(ctx context.Context) error    { return nil }

func (f *fakeDB) Query(ctx context.Context, query string, vars map[string]any) ([]any, error) {
	f.lastQuery = query
	f.lastVars = vars
	if f.queryFunc != nil {
		return f.queryFunc(ctx, query, vars)
	}
	return nil, nil
}

func (f *fakeDB) QueryOne(ctx context.Context, query string, vars map[string]any) (any, error) {
	resp, err := f.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	rows := results.StatementRows(resp)
	if len(rows) == 0 {
		return nil, database.ErrNotFound
	}
	return rows[0], nil
}

func (f *fakeDB) Execute(ctx context.Context, query string, vars map[string]any) error {
	_, err := f.Query(ctx, query, vars)
	return err
}

// respond wraps rows in the driver's statement response shape.
func respond(rows ...any) []any {
	return []any{map[string]any{"status": "OK", "result": rows}}
}

func dogRow(id, name string, age int) map[string]any {
	return map[string]any{"id": id, "name": name, "age": age}
}

func byName(name string) *expr.Lambda {
	return expr.Fn("d", expr.Eq(expr.Field(expr.Var("d"), "name"), expr.Val(name)))
}

func olderThan(age int) *expr.Lambda {
	return expr.Fn("d", expr.Gt(expr.Field(expr.Var("d"), "age"), expr.Val(age)))
}

func nameSel() *expr.Lambda {
	return expr.Fn("d", expr.Field(expr.Var("d"), "name"))
}

func ageSel() *expr.Lambda {
	return expr.Fn("d", expr.Field(expr.Var("d"), "age"))
}

func TestToListBuildsStatement(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(dogRow("dog:1", "Spark", 5)), nil
	}}

	dogs, err := From[Dog](db, "dog").
		Where(olderThan(3)).
		Where(byName("Spark")).
		OrderBy(nameSel()).
		ThenByDescending(ageSel()).
		Skip(5).
		Take(10).
		ToList(context.Background())
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT * FROM type::table($tb) WHERE (age > $p1) AND (name = $p2) ORDER BY name, age DESC LIMIT 10 START 5",
		db.lastQuery)
	assert.Equal(t, map[string]any{"tb": "dog", "p1": 3, "p2": "Spark"}, db.lastVars)

	require.Len(t, dogs, 1)
	assert.Equal(t, "Spark", dogs[0].Name)
	assert.Equal(t, 5, dogs[0].Age)
}

func TestToListDecodesWeakTypes(t *testing.T) {
	// CBOR decoding hands numbers back as uint64 or float64.
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(map[string]any{"id": "dog:1", "name": "Rex", "age": uint64(7)}), nil
	}}

	dogs, err := From[Dog](db, "dog").ToList(context.Background())
	require.NoError(t, err)
	require.Len(t, dogs, 1)
	assert.Equal(t, 7, dogs[0].Age)
}

func TestFirstSemantics(t *testing.T) {
	t.Run("returns first row with LIMIT 1", func(t *testing.T) {
		db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
			return respond(dogRow("dog:1", "Spark", 5)), nil
		}}
		dog, err := From[Dog](db, "dog").First(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Spark", dog.Name)
		assert.Contains(t, db.lastQuery, "LIMIT 1")
	})

	t.Run("not found", func(t *testing.T) {
		db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
			return respond(), nil
		}}
		_, err := From[Dog](db, "dog").First(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("TryFirst converts absence to nil", func(t *testing.T) {
		db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
			return respond(), nil
		}}
		dog, err := From[Dog](db, "dog").TryFirst(context.Background())
		require.NoError(t, err)
		assert.Nil(t, dog)
	})
}

func TestExactlyOneSemantics(t *testing.T) {
	withRows := func(rows ...any) *fakeDB {
		return &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
			return respond(rows...), nil
		}}
	}

	t.Run("single row", func(t *testing.T) {
		db := withRows(dogRow("dog:1", "Spark", 5))
		dog, err := From[Dog](db, "dog").ExactlyOne(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Spark", dog.Name)
		assert.Contains(t, db.lastQuery, "LIMIT 2", "fetches two rows to detect multiples")
	})

	t.Run("none", func(t *testing.T) {
		_, err := From[Dog](withRows(), "dog").ExactlyOne(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("multiple", func(t *testing.T) {
		db := withRows(dogRow("dog:1", "Spark", 5), dogRow("dog:2", "Rex", 3))
		_, err := From[Dog](db, "dog").ExactlyOne(context.Background())
		assert.ErrorIs(t, err, ErrMultiple)
	})

	t.Run("TryExactlyOne none is nil", func(t *testing.T) {
		dog, err := From[Dog](withRows(), "dog").TryExactlyOne(context.Background())
		require.NoError(t, err)
		assert.Nil(t, dog)
	})

	t.Run("TryExactlyOne multiple still fails", func(t *testing.T) {
		db := withRows(dogRow("dog:1", "Spark", 5), dogRow("dog:2", "Rex", 3))
		_, err := From[Dog](db, "dog").TryExactlyOne(context.Background())
		assert.ErrorIs(t, err, ErrMultiple)
	})
}

func TestCount(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(map[string]any{"count": float64(3)}), nil
	}}

	n, err := From[Dog](db, "dog").Where(olderThan(2)).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t,
		"SELECT count() AS count FROM type::table($tb) WHERE (age > $p1) GROUP ALL",
		db.lastQuery)
}

func TestCountEmptyTable(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(), nil
	}}
	n, err := From[Dog](db, "dog").Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAny(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(dogRow("dog:1", "Spark", 5)), nil
	}}
	ok, err := From[Dog](db, "dog").Any(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, db.lastQuery, "LIMIT 1")
}

func TestSelectProjection(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond("Rex", "Spark"), nil
	}}

	names, err := Select[string](From[Dog](db, "dog").Where(olderThan(1)), nameSel()).
		ToList(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Rex", "Spark"}, names)
	assert.Equal(t,
		"SELECT VALUE name FROM type::table($tb) WHERE (age > $p1)",
		db.lastQuery)
}

func TestMinMax(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(map[string]any{"agg": float64(2)}), nil
	}}

	minAge, err := Min[int](context.Background(), From[Dog](db, "dog"), ageSel())
	require.NoError(t, err)
	assert.Equal(t, 2, minAge)
	assert.Equal(t, "SELECT math::min(age) AS agg FROM type::table($tb) GROUP ALL", db.lastQuery)

	_, err = Max[int](context.Background(), From[Dog](db, "dog"), ageSel())
	require.NoError(t, err)
	assert.Equal(t, "SELECT math::max(age) AS agg FROM type::table($tb) GROUP ALL", db.lastQuery)
}

func TestMinEmptyTable(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(), nil
	}}
	_, err := Min[int](context.Background(), From[Dog](db, "dog"), ageSel())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFold(t *testing.T) {
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return respond(dogRow("dog:1", "Spark", 5), dogRow("dog:2", "Rex", 3)), nil
	}}

	total, err := Fold(context.Background(), From[Dog](db, "dog"), 0,
		expr.Fn2("acc", "d", expr.Add(expr.Var("acc"), expr.Field(expr.Var("d"), "age"))))
	require.NoError(t, err)
	assert.Equal(t, 8, total)
}

func TestFoldRequiresTwoParameters(t *testing.T) {
	db := &fakeDB{}
	_, err := Fold(context.Background(), From[Dog](db, "dog"), 0, byName("Spark"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arity 2")
	assert.Empty(t, db.lastQuery, "no statement runs when the literal is rejected")
}

func TestDeferredCombinatorErrors(t *testing.T) {
	db := &fakeDB{}

	t.Run("ThenBy without OrderBy", func(t *testing.T) {
		_, err := From[Dog](db, "dog").ThenBy(nameSel()).ToList(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ThenBy")
	})

	t.Run("unsupported predicate shape", func(t *testing.T) {
		// A two-parameter literal where a predicate is expected fails at
		// callable construction, reported by the terminal method.
		bad := expr.Fn2("a", "b", expr.Val(true))
		_, err := From[Dog](db, "dog").Where(bad).ToList(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "arity 1")
	})

	t.Run("first error wins", func(t *testing.T) {
		q := From[Dog](db, "dog").
			Skip(-1).
			Where(byName("Spark"))
		_, err := q.ToList(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "skip")
	})
}

func TestQueryErrorPassthrough(t *testing.T) {
	boom := errors.New("connection reset")
	db := &fakeDB{queryFunc: func(ctx context.Context, q string, vars map[string]any) ([]any, error) {
		return nil, boom
	}}
	_, err := From[Dog](db, "dog").ToList(context.Background())
	assert.ErrorIs(t, err, boom)
}
