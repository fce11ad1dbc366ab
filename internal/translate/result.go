package translate

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/odataq/internal/doc"
)

// Result is the document-store query specification for one resource.
//
// The top-level Result answers the request's entity set; each entry of
// Includes answers one expanded navigation property.
type Result struct {
	Collection         string     `json:"collection,omitempty"`
	Filter             doc.Object `json:"query"`
	Sort               SortSpec   `json:"sort,omitempty"`
	Projection         Projection `json:"projection,omitempty"`
	Skip               *int64     `json:"skip,omitempty"`
	Limit              *int64     `json:"limit,omitempty"`
	InlineCount        *bool      `json:"inlinecount,omitempty"`
	NavigationProperty string     `json:"navigationProperty,omitempty"`
	Includes           []*Result  `json:"includes,omitempty"`
}

// Include returns the child result for a navigation property, or nil.
func (r *Result) Include(navigationProperty string) *Result {
	for _, inc := range r.Includes {
		if inc.NavigationProperty == navigationProperty {
			return inc
		}
	}
	return nil
}

// Document converts the result into a document value. Sort becomes an
// object keyed by field, so sort order is not preserved; use Sort directly
// when order matters.
func (r *Result) Document() doc.Object {
	obj := doc.Object{"query": r.Filter}
	if r.Filter == nil {
		obj["query"] = doc.Object{}
	}
	if r.Collection != "" {
		obj["collection"] = doc.String(r.Collection)
	}
	if len(r.Sort) > 0 {
		sort := doc.Object{}
		for _, f := range r.Sort {
			sort[f.Field] = doc.Int(f.Direction)
		}
		obj["sort"] = sort
	}
	if len(r.Projection) > 0 {
		proj := doc.Object{}
		for k, v := range r.Projection {
			proj[k] = doc.Int(v)
		}
		obj["projection"] = proj
	}
	if r.Skip != nil {
		obj["skip"] = doc.Int(*r.Skip)
	}
	if r.Limit != nil {
		obj["limit"] = doc.Int(*r.Limit)
	}
	if r.InlineCount != nil {
		obj["inlinecount"] = doc.Bool(*r.InlineCount)
	}
	if r.NavigationProperty != "" {
		obj["navigationProperty"] = doc.String(r.NavigationProperty)
	}
	if len(r.Includes) > 0 {
		includes := make(doc.Array, len(r.Includes))
		for i, inc := range r.Includes {
			includes[i] = inc.Document()
		}
		obj["includes"] = includes
	}
	return obj
}

// SortField is one entry of a sort specification.
type SortField struct {
	Field     string
	Direction int // 1 ascending, -1 descending
}

// SortSpec is an ordered sort specification. Order is significant: the
// first field is the primary sort key.
type SortSpec []SortField

// Set records a direction for field. An existing field keeps its position.
func (s *SortSpec) Set(field string, direction int) {
	for i := range *s {
		if (*s)[i].Field == field {
			(*s)[i].Direction = direction
			return
		}
	}
	*s = append(*s, SortField{Field: field, Direction: direction})
}

// MarshalJSON writes the sort as a JSON object whose keys keep their order.
func (s SortSpec) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Field)
		if err != nil {
			return nil, fmt.Errorf("marshal sort key %q: %w", f.Field, err)
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", f.Direction)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Projection maps dotted field paths to the inclusion marker 1.
type Projection map[string]int
