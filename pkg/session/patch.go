package session

import (
	"fmt"

	"github.com/forgo/docq/internal/surql"
	"github.com/forgo/docq/pkg/expr"
)

// Patch is a builder for field-level updates to one record. Each Set or Inc
// queues an UPDATE on the owning session; nothing runs until SaveChanges.
type Patch struct {
	s     *Session
	table string
	id    string
}

// Patch starts a field-level update of one record.
func (s *Session) Patch(table, id string) *Patch {
	return &Patch{s: s, table: table, id: qualifyID(table, id)}
}

// Set queues an assignment of value to the field named by the selector
// literal.
func (p *Patch) Set(sel *expr.Lambda, value any) *Patch {
	return p.assign(sel, surql.AssignSet, value)
}

// Inc queues an in-place increment of the field named by the selector
// literal. A negative delta decrements.
func (p *Patch) Inc(sel *expr.Lambda, delta any) *Patch {
	return p.assign(sel, surql.AssignInc, delta)
}

func (p *Patch) assign(sel *expr.Lambda, op surql.AssignOp, value any) *Patch {
	c, err := expr.Callable1(sel)
	if err != nil {
		p.s.fail(err)
		return p
	}
	b := surql.NewBinder()
	assign, err := surql.Assign(b, c, op, value)
	if err != nil {
		p.s.fail(err)
		return p
	}
	vars := b.Vars()
	vars["id"] = p.id
	p.s.queue(fmt.Sprintf("UPDATE type::record($id) SET %s", assign), vars)
	return p
}
