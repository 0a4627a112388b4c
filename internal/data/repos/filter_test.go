package repos

import (
	"testing"

	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
)

func TestCompileFilterPostgres(t *testing.T) {
	sql, args, err := compileFilter("postgres", domain.Eq("topic", "pipe"))
	if err != nil {
		t.Fatalf("compile eq: %v", err)
	}
	if sql != "metadata->>? = ?" {
		t.Fatalf("eq sql = %q", sql)
	}
	if len(args) != 2 || args[0] != "topic" || args[1] != "pipe" {
		t.Fatalf("eq args = %v", args)
	}

	sql, args, err = compileFilter("postgres", domain.Neq("topic", "pipe"))
	if err != nil {
		t.Fatalf("compile neq: %v", err)
	}
	if sql != "metadata->>? <> ?" {
		t.Fatalf("neq sql = %q", sql)
	}
	if len(args) != 2 {
		t.Fatalf("neq args = %v", args)
	}
}

func TestCompileFilterSQLite(t *testing.T) {
	sql, _, err := compileFilter("sqlite", domain.Eq("lang", "en"))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if sql != "metadata->>('$.' || ?) = ?" {
		t.Fatalf("sqlite sql = %q", sql)
	}
}

func TestCompileFilterRejectsNonStringValue(t *testing.T) {
	_, _, err := compileFilter("postgres", domain.Eq("count", 3))
	if !apperr.IsKind(err, apperr.KindInvalidFilter) {
		t.Fatalf("expected invalid-filter error, got %v", err)
	}
}

func TestCompletionPath(t *testing.T) {
	if got := completionPath("postgres", "b1"); got != "{state,b1}" {
		t.Fatalf("postgres path = %q", got)
	}
	if got := completionPath("sqlite", "b1"); got != "state.b1" {
		t.Fatalf("sqlite path = %q", got)
	}
}
