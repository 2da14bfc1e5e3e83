package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/docq/internal/testing/testdb"
	"github.com/forgo/docq/pkg/expr"
	"github.com/forgo/docq/pkg/query"
	"github.com/forgo/docq/pkg/session"
)

type dog struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Adopted bool   `json:"adopted"`
}

// Round-trips documents through a live SurrealDB instance. Skips unless
// TEST_DB_HOST is set.
func TestSessionRoundTrip(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()
	ctx := tdb.Ctx()

	s := session.Open(tdb.DB)
	spark := &dog{Name: "Spark", Age: 5}
	rex := &dog{Name: "Rex", Age: 2, Adopted: true}
	require.NoError(t, s.Store("dog", spark, rex))
	require.NoError(t, s.SaveChanges(ctx))

	loaded, err := session.Load[dog](ctx, s, spark.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spark", loaded.Name)
	assert.Equal(t, 5, loaded.Age)

	adopted, err := query.From[dog](tdb.DB, "dog").
		Where(expr.Fn("d", expr.Eq(expr.Field(expr.Var("d"), "adopted"), expr.Val(true)))).
		ToList(ctx)
	require.NoError(t, err)
	require.Len(t, adopted, 1)
	assert.Equal(t, "Rex", adopted[0].Name)

	n, err := query.From[dog](tdb.DB, "dog").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	s.Patch("dog", spark.ID).Inc(expr.Fn("d", expr.Field(expr.Var("d"), "age")), 1)
	require.NoError(t, s.SaveChanges(ctx))

	bumped, err := session.Load[dog](ctx, s, spark.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, bumped.Age)

	require.NoError(t, s.DeleteWhere("dog", expr.Fn("d",
		expr.Eq(expr.Field(expr.Var("d"), "adopted"), expr.Val(true)))))
	require.NoError(t, s.SaveChanges(ctx))

	gone, err := session.TryLoad[dog](ctx, s, rex.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestQueryAggregatesLive(t *testing.T) {
	tdb := testdb.New(t)
	defer tdb.Close()
	ctx := tdb.Ctx()

	s := session.Open(tdb.DB)
	require.NoError(t, s.Store("dog",
		&dog{Name: "Ada", Age: 1},
		&dog{Name: "Bo", Age: 4},
		&dog{Name: "Cy", Age: 9},
	))
	require.NoError(t, s.SaveChanges(ctx))

	q := query.From[dog](tdb.DB, "dog")

	oldest, err := query.Max[int](ctx, q, expr.Fn("d", expr.Field(expr.Var("d"), "age")))
	require.NoError(t, err)
	assert.Equal(t, 9, oldest)

	youngest, err := query.Min[int](ctx, q, expr.Fn("d", expr.Field(expr.Var("d"), "age")))
	require.NoError(t, err)
	assert.Equal(t, 1, youngest)

	total, err := query.Fold(ctx, q, 0, expr.Fn2("acc", "d",
		expr.Add(expr.Var("acc"), expr.Field(expr.Var("d"), "age"))))
	require.NoError(t, err)
	assert.Equal(t, 14, total)

	names, err := query.Select[string](
		query.From[dog](tdb.DB, "dog").OrderBy(expr.Fn("d", expr.Field(expr.Var("d"), "name"))),
		expr.Fn("d", expr.Field(expr.Var("d"), "name")),
	).ToList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Bo", "Cy"}, names)
}
