package repos

import (
	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
)

// compileFilter turns one binding filter into a SQL clause against the
// content metadata column. Values must be JSON strings; anything else is an
// input error surfaced before the query runs.
func compileFilter(dialect string, f domain.Filter) (string, []interface{}, error) {
	value, err := f.StringValue()
	if err != nil {
		return "", nil, err
	}
	var lhs string
	if dialect == "postgres" {
		lhs = "metadata->>?"
	} else {
		lhs = "metadata->>('$.' || ?)"
	}
	switch f.Op {
	case domain.FilterEq:
		return lhs + " = ?", []interface{}{f.Field, value}, nil
	case domain.FilterNeq:
		return lhs + " <> ?", []interface{}{f.Field, value}, nil
	}
	return "", nil, apperr.Newf(apperr.KindInvalidFilter, "unknown filter op %q", f.Op)
}

// unappliedClause matches content whose completion marker for the binding is
// absent or zero.
func unappliedClause(dialect string) string {
	if dialect == "postgres" {
		return "COALESCE(CAST(binding_state->'state'->>? AS integer), 0) < 1"
	}
	return "COALESCE(CAST(binding_state->>('$.state.' || ?) AS integer), 0) < 1"
}

// completionPath renders the JSON path of one binding's completion marker in
// the form the dialect's JSON set function expects.
func completionPath(dialect, bindingID string) string {
	if dialect == "postgres" {
		return "{state," + bindingID + "}"
	}
	return "state." + bindingID
}
