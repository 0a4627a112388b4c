package domain

import (
	"encoding/json"

	"github.com/akira/indexify/internal/platform/apperr"
)

type FilterOp string

const (
	FilterEq  FilterOp = "eq"
	FilterNeq FilterOp = "neq"
)

// Filter is one equality/inequality clause against a content's metadata.
// Clauses on a binding combine conjunctively.
type Filter struct {
	Op    FilterOp        `json:"op"`
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}

func Eq(field string, value interface{}) Filter {
	return newFilter(FilterEq, field, value)
}

func Neq(field string, value interface{}) Filter {
	return newFilter(FilterNeq, field, value)
}

func newFilter(op FilterOp, field string, value interface{}) Filter {
	raw, err := json.Marshal(value)
	if err != nil {
		raw = json.RawMessage("null")
	}
	return Filter{Op: op, Field: field, Value: raw}
}

// StringValue decodes the filter value, rejecting anything that is not a
// JSON string. A non-string value is an input error, not a transient one.
func (f Filter) StringValue() (string, error) {
	var s string
	if err := json.Unmarshal(f.Value, &s); err != nil {
		return "", apperr.Newf(apperr.KindInvalidFilter, "filter on %q requires a string value, got %s", f.Field, string(f.Value))
	}
	return s, nil
}
