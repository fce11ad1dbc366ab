package translate

import "github.com/roach88/odataq/internal/doc"

// scope is the working context threaded through one traversal.
//
// Slots are nil (or empty for identifier) when absent. A handler that
// consumes a slot takes it, which reads and clears it in one step.
type scope struct {
	query      doc.Object
	sort       SortSpec
	projection Projection
	identifier string
	literal    doc.Value
	options    map[string]bool // option kinds seen by QueryOptions
}

// newScratch returns a scope with every result slot allocated, as used for
// the options of one expanded navigation property.
func newScratch() *scope {
	return &scope{
		query:      doc.Object{},
		sort:       SortSpec{},
		projection: Projection{},
		options:    map[string]bool{},
	}
}

// takeOperands returns the pending identifier and literal and clears both.
func (s *scope) takeOperands() (string, doc.Value) {
	id, lit := s.identifier, s.literal
	s.identifier, s.literal = "", nil
	return id, lit
}

// takeQuery returns the query slot and clears it.
func (s *scope) takeQuery() doc.Object {
	q := s.query
	s.query = nil
	return q
}

// takeSort returns the sort slot and clears it.
func (s *scope) takeSort() SortSpec {
	sort := s.sort
	s.sort = nil
	return sort
}

// takeProjection returns the projection slot and clears it.
func (s *scope) takeProjection() Projection {
	p := s.projection
	s.projection = nil
	return p
}
