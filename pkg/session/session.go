package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/forgo/docq/internal/database"
	"github.com/forgo/docq/internal/results"
	"github.com/forgo/docq/internal/surql"
	"github.com/forgo/docq/pkg/expr"
)

// Sentinel errors re-exported for callers outside the module.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = database.ErrNotFound
)

// Session queues mutations against one database connection and flushes them
// atomically. Sessions are cheap; open one per logical unit of work. A
// Session is not safe for concurrent use.
type Session struct {
	db      database.Database
	pending []pendingOp
	err     error
}

type pendingOp struct {
	query string
	vars  map[string]any
}

// Open starts a new unit of work over db.
func Open(db database.Database) *Session {
	return &Session{db: db}
}

// Database returns the underlying connection, for handing to the query
// package.
func (s *Session) Database() database.Database {
	return s.db
}

func (s *Session) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *Session) queue(query string, vars map[string]any) {
	s.pending = append(s.pending, pendingOp{query: query, vars: vars})
}

// Pending returns the number of queued mutations.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Store queues an upsert for each document. Documents are structs (or
// pointers to structs) with a string ID field, or map[string]any values with
// an "id" key; an empty id gets a fresh table-prefixed UUID, written back
// when the document is addressable.
func (s *Session) Store(table string, docs ...any) error {
	for _, doc := range docs {
		id, err := ensureID(table, doc)
		if err != nil {
			s.fail(err)
			return err
		}
		content, err := contentOf(doc)
		if err != nil {
			s.fail(err)
			return err
		}
		s.queue("UPSERT type::record($id) CONTENT $doc", map[string]any{
			"id":  id,
			"doc": content,
		})
	}
	return nil
}

// contentOf flattens a document into its field map, minus the id. The record
// is addressed through type::record($id); an id inside CONTENT would have to
// match it as a record value, and the string form does not.
func contentOf(doc any) (map[string]any, error) {
	var content map[string]any
	if m, ok := doc.(map[string]any); ok {
		content = make(map[string]any, len(m))
		for k, v := range m {
			content[k] = v
		}
	} else if err := results.Decode(doc, &content); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	delete(content, "id")
	return content, nil
}

// Delete queues the removal of one record by id.
func (s *Session) Delete(table, id string) {
	s.queue("DELETE type::record($id)", map[string]any{
		"id": qualifyID(table, id),
	})
}

// DeleteWhere queues the removal of every record matching a predicate
// literal.
func (s *Session) DeleteWhere(table string, pred *expr.Lambda) error {
	c, err := expr.Callable1(pred)
	if err != nil {
		s.fail(err)
		return err
	}
	b := surql.NewBinder()
	clause, err := surql.Where(b, c)
	if err != nil {
		s.fail(err)
		return err
	}
	vars := b.Vars()
	vars["tb"] = table
	s.queue(fmt.Sprintf("DELETE type::table($tb) WHERE %s", clause), vars)
	return nil
}

// SaveChanges flushes every queued mutation in one transaction. The queue is
// cleared on success and kept on failure, so a failed flush can be retried.
func (s *Session) SaveChanges(ctx context.Context) error {
	if s.err != nil {
		return s.err
	}
	if len(s.pending) == 0 {
		return nil
	}
	batch := database.NewAtomicBatch()
	for _, op := range s.pending {
		batch.Add(op.query, op.vars)
	}
	if err := batch.Execute(ctx, s.db); err != nil {
		return err
	}
	s.pending = nil
	return nil
}

// Load reads one record by id, decoded into T. It fails with ErrNotFound
// when the record does not exist.
func Load[T any](ctx context.Context, s *Session, id string) (T, error) {
	var zero T
	res, err := s.db.QueryOne(ctx, "SELECT * FROM type::record($id)", map[string]any{"id": id})
	if err != nil {
		return zero, err
	}
	var v T
	if err := results.Decode(res, &v); err != nil {
		return zero, err
	}
	return v, nil
}

// TryLoad reads one record by id, returning nil when it does not exist.
func TryLoad[T any](ctx context.Context, s *Session, id string) (*T, error) {
	v, err := Load[T](ctx, s, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// qualifyID prefixes a bare id with its table.
func qualifyID(table, id string) string {
	if strings.Contains(id, ":") {
		return id
	}
	return table + ":" + id
}

// ensureID resolves the document's id, assigning a fresh one when empty.
func ensureID(table string, doc any) (string, error) {
	if m, ok := doc.(map[string]any); ok {
		if id, ok := m["id"].(string); ok && id != "" {
			return qualifyID(table, id), nil
		}
		id := newID(table)
		m["id"] = id
		return id, nil
	}

	v := reflect.ValueOf(doc)
	addressable := false
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", errors.New("session: cannot store a nil document")
		}
		v = v.Elem()
		addressable = true
	}
	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("session: cannot store a %s document", v.Kind())
	}

	field := v.FieldByName("ID")
	if !field.IsValid() || field.Kind() != reflect.String {
		return "", fmt.Errorf("session: document type %s has no string ID field", v.Type())
	}
	if id := field.String(); id != "" {
		return qualifyID(table, id), nil
	}
	if !addressable {
		return "", fmt.Errorf("session: pass *%s to assign an id to a new document", v.Type())
	}
	id := newID(table)
	field.SetString(id)
	return id, nil
}

func newID(table string) string {
	return table + ":" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
