package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/docq/internal/database"
	"github.com/forgo/docq/internal/results"
	"github.com/forgo/docq/internal/surql"
	"github.com/forgo/docq/pkg/expr"
)

// Query is a deferred read over one table. Combinators accumulate state and
// return the same builder; terminal methods build and run the SurrealQL
// statement.
type Query[T any] struct {
	db     database.Database
	table  string
	binder *surql.Binder
	wheres []string
	orders []string
	value  string // SELECT VALUE expression; empty selects whole documents
	skip   int
	take   int
	err    error
}

// From starts a query over table, producing values of type T.
func From[T any](db database.Database, table string) *Query[T] {
	return &Query[T]{
		db:     db,
		table:  table,
		binder: surql.NewBinder(),
		skip:   -1,
		take:   -1,
	}
}

func (q *Query[T]) fail(err error) *Query[T] {
	if q.err == nil {
		q.err = err
	}
	return q
}

// Where adds a predicate literal; multiple calls conjoin.
func (q *Query[T]) Where(pred *expr.Lambda) *Query[T] {
	c, err := expr.Callable1(pred)
	if err != nil {
		return q.fail(err)
	}
	clause, err := surql.Where(q.binder, c)
	if err != nil {
		return q.fail(err)
	}
	q.wheres = append(q.wheres, clause)
	return q
}

// OrderBy sorts ascending by a field selector.
func (q *Query[T]) OrderBy(sel *expr.Lambda) *Query[T] {
	return q.order(sel, false)
}

// OrderByDescending sorts descending by a field selector.
func (q *Query[T]) OrderByDescending(sel *expr.Lambda) *Query[T] {
	return q.order(sel, true)
}

// ThenBy adds a secondary ascending sort; requires a prior OrderBy.
func (q *Query[T]) ThenBy(sel *expr.Lambda) *Query[T] {
	if len(q.orders) == 0 {
		return q.fail(errors.New("query: ThenBy without a preceding OrderBy"))
	}
	return q.order(sel, false)
}

// ThenByDescending adds a secondary descending sort; requires a prior OrderBy.
func (q *Query[T]) ThenByDescending(sel *expr.Lambda) *Query[T] {
	if len(q.orders) == 0 {
		return q.fail(errors.New("query: ThenByDescending without a preceding OrderBy"))
	}
	return q.order(sel, true)
}

func (q *Query[T]) order(sel *expr.Lambda, desc bool) *Query[T] {
	c, err := expr.Callable1(sel)
	if err != nil {
		return q.fail(err)
	}
	term, err := surql.OrderTerm(c)
	if err != nil {
		return q.fail(err)
	}
	if desc {
		term += " DESC"
	}
	q.orders = append(q.orders, term)
	return q
}

// Skip drops the first n matching rows.
func (q *Query[T]) Skip(n int) *Query[T] {
	if n < 0 {
		return q.fail(fmt.Errorf("query: negative skip %d", n))
	}
	q.skip = n
	return q
}

// Take caps the number of returned rows at n.
func (q *Query[T]) Take(n int) *Query[T] {
	if n < 0 {
		return q.fail(fmt.Errorf("query: negative take %d", n))
	}
	q.take = n
	return q
}

// Select re-types a query with a projection literal; terminal methods then
// produce U values instead of whole documents.
func Select[U any, T any](q *Query[T], sel *expr.Lambda) *Query[U] {
	out := &Query[U]{
		db:     q.db,
		table:  q.table,
		binder: q.binder,
		wheres: q.wheres,
		orders: q.orders,
		skip:   q.skip,
		take:   q.take,
		err:    q.err,
	}
	if out.err != nil {
		return out
	}
	c, err := expr.Callable1(sel)
	if err != nil {
		out.err = err
		return out
	}
	v, err := surql.Value(q.binder, c)
	if err != nil {
		out.err = err
		return out
	}
	out.value = v
	return out
}

// buildSelect assembles the statement with an optional LIMIT override.
func (q *Query[T]) buildSelect(takeOverride int) (string, map[string]any) {
	var sb strings.Builder
	if q.value != "" {
		sb.WriteString("SELECT VALUE ")
		sb.WriteString(q.value)
	} else {
		sb.WriteString("SELECT *")
	}
	sb.WriteString(" FROM type::table($tb)")
	if len(q.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.wheres, " AND "))
	}
	if len(q.orders) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(q.orders, ", "))
	}
	take := q.take
	if takeOverride >= 0 {
		take = takeOverride
	}
	if take >= 0 {
		fmt.Fprintf(&sb, " LIMIT %d", take)
	}
	if q.skip >= 0 {
		fmt.Fprintf(&sb, " START %d", q.skip)
	}
	return sb.String(), q.vars()
}

// vars copies the binder variables and adds the table binding, so one builder
// can execute more than once.
func (q *Query[T]) vars() map[string]any {
	vars := make(map[string]any, len(q.binder.Vars())+1)
	for k, v := range q.binder.Vars() {
		vars[k] = v
	}
	vars["tb"] = q.table
	return vars
}

func (q *Query[T]) rawRows(ctx context.Context, takeOverride int) ([]any, error) {
	if q.err != nil {
		return nil, q.err
	}
	stmt, vars := q.buildSelect(takeOverride)
	resp, err := q.db.Query(ctx, stmt, vars)
	if err != nil {
		return nil, err
	}
	return results.StatementRows(resp), nil
}

// ToList executes the query and decodes every row.
func (q *Query[T]) ToList(ctx context.Context) ([]T, error) {
	rows, err := q.rawRows(ctx, -1)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := results.Decode(row, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// First returns the first matching row, or database.ErrNotFound.
func (q *Query[T]) First(ctx context.Context) (T, error) {
	var zero T
	rows, err := q.rawRows(ctx, 1)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, database.ErrNotFound
	}
	var v T
	if err := results.Decode(rows[0], &v); err != nil {
		return zero, err
	}
	return v, nil
}

// TryFirst returns the first matching row, or nil when nothing matches.
func (q *Query[T]) TryFirst(ctx context.Context) (*T, error) {
	v, err := q.First(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// ExactlyOne returns the single matching row. It fails with
// database.ErrNotFound when nothing matches and database.ErrMultiple when
// more than one row does.
func (q *Query[T]) ExactlyOne(ctx context.Context) (T, error) {
	var zero T
	rows, err := q.rawRows(ctx, 2)
	if err != nil {
		return zero, err
	}
	switch len(rows) {
	case 0:
		return zero, database.ErrNotFound
	case 1:
		var v T
		if err := results.Decode(rows[0], &v); err != nil {
			return zero, err
		}
		return v, nil
	default:
		return zero, database.ErrMultiple
	}
}

// TryExactlyOne returns the single matching row, nil when nothing matches,
// and database.ErrMultiple when more than one row does.
func (q *Query[T]) TryExactlyOne(ctx context.Context) (*T, error) {
	v, err := q.ExactlyOne(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// Count returns the number of matching rows.
func (q *Query[T]) Count(ctx context.Context) (int, error) {
	if q.err != nil {
		return 0, q.err
	}
	var sb strings.Builder
	sb.WriteString("SELECT count() AS count FROM type::table($tb)")
	if len(q.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.wheres, " AND "))
	}
	sb.WriteString(" GROUP ALL")

	resp, err := q.db.Query(ctx, sb.String(), q.vars())
	if err != nil {
		return 0, err
	}
	rows := results.StatementRows(resp)
	if len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("query: unexpected count row %T", rows[0])
	}
	var n int
	if err := results.Decode(row["count"], &n); err != nil {
		return 0, err
	}
	return n, nil
}

// Any reports whether at least one row matches.
func (q *Query[T]) Any(ctx context.Context) (bool, error) {
	rows, err := q.rawRows(ctx, 1)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// Min aggregates a field selector with math::min over the matching rows.
// It fails with database.ErrNotFound when nothing matches.
func Min[R any, T any](ctx context.Context, q *Query[T], sel *expr.Lambda) (R, error) {
	return aggregate[R](ctx, q, sel, "math::min")
}

// Max aggregates a field selector with math::max over the matching rows.
// It fails with database.ErrNotFound when nothing matches.
func Max[R any, T any](ctx context.Context, q *Query[T], sel *expr.Lambda) (R, error) {
	return aggregate[R](ctx, q, sel, "math::max")
}

func aggregate[R any, T any](ctx context.Context, q *Query[T], sel *expr.Lambda, fn string) (R, error) {
	var zero R
	if q.err != nil {
		return zero, q.err
	}
	c, err := expr.Callable1(sel)
	if err != nil {
		return zero, err
	}
	v, err := surql.Value(q.binder, c)
	if err != nil {
		return zero, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s(%s) AS agg FROM type::table($tb)", fn, v)
	if len(q.wheres) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.wheres, " AND "))
	}
	sb.WriteString(" GROUP ALL")

	resp, err := q.db.Query(ctx, sb.String(), q.vars())
	if err != nil {
		return zero, err
	}
	rows := results.StatementRows(resp)
	if len(rows) == 0 {
		return zero, database.ErrNotFound
	}
	row, ok := rows[0].(map[string]any)
	if !ok {
		return zero, fmt.Errorf("query: unexpected aggregate row %T", rows[0])
	}
	var out R
	if err := results.Decode(row["agg"], &out); err != nil {
		return zero, err
	}
	return out, nil
}

// Fold fetches the matching documents and reduces them client-side with a
// two-parameter literal (accumulator first, document second).
func Fold[R any, T any](ctx context.Context, q *Query[T], seed R, fn *expr.Lambda) (R, error) {
	var zero R
	c, err := expr.Callable2(fn)
	if err != nil {
		return zero, err
	}
	rows, err := q.rawRows(ctx, -1)
	if err != nil {
		return zero, err
	}

	acc := any(seed)
	for _, row := range rows {
		doc, ok := row.(map[string]any)
		if !ok {
			return zero, fmt.Errorf("query: fold over non-document row %T", row)
		}
		acc, err = expr.Eval(c, acc, doc)
		if err != nil {
			return zero, err
		}
	}

	var out R
	if err := results.Decode(acc, &out); err != nil {
		return zero, err
	}
	return out, nil
}
