package domain

import (
	"testing"

	"github.com/akira/indexify/internal/platform/apperr"
)

func TestFilterStringValue(t *testing.T) {
	f := Eq("topic", "pipe")
	v, err := f.StringValue()
	if err != nil {
		t.Fatalf("StringValue: %v", err)
	}
	if v != "pipe" {
		t.Fatalf("StringValue = %q, want %q", v, "pipe")
	}
}

func TestFilterNonStringValueIsInputError(t *testing.T) {
	for _, f := range []Filter{Eq("count", 7), Neq("flag", true), Eq("obj", map[string]string{"a": "b"})} {
		_, err := f.StringValue()
		if !apperr.IsKind(err, apperr.KindInvalidFilter) {
			t.Errorf("filter %v: expected invalid-filter error, got %v", f, err)
		}
	}
}
