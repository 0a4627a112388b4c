package repos

import (
	"context"
	"testing"

	"github.com/akira/indexify/internal/data/repos/testutil"
	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/dbctx"
)

func mustText(t *testing.T, corpus, text string, metadata map[string]interface{}) *domain.Content {
	t.Helper()
	c, err := domain.NewText(corpus, text, metadata)
	if err != nil {
		t.Fatalf("NewText: %v", err)
	}
	return c
}

func TestContentInsertIsIdempotent(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewContentRepo(conn, testutil.Logger(t))

	c := mustText(t, "docs", "hello", nil)
	inserted, err := repo.Insert(dbc, c)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	dup := mustText(t, "docs", "hello", nil)
	inserted, err = repo.Insert(dbc, dup)
	if err != nil {
		t.Fatalf("duplicate insert errored: %v", err)
	}
	if inserted {
		t.Fatal("duplicate insert reported as inserted")
	}
}

func TestUnappliedFilteringAndCompletion(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewContentRepo(conn, testutil.Logger(t))

	pipe := mustText(t, "docs", "hello", map[string]interface{}{"topic": "pipe"})
	baz := mustText(t, "docs", "world", map[string]interface{}{"topic": "baz"})
	for _, c := range []*domain.Content{pipe, baz} {
		if _, err := repo.Insert(dbc, c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	eqBinding := domain.NewExtractorBinding("docs", "extractor1", "index1",
		[]domain.Filter{domain.Eq("topic", "pipe")}, nil)
	neqBinding := domain.NewExtractorBinding("docs", "extractor1", "index2",
		[]domain.Filter{domain.Neq("topic", "pipe")}, nil)

	got, err := repo.ListUnapplied(dbc, "docs", eqBinding, "")
	if err != nil {
		t.Fatalf("ListUnapplied eq: %v", err)
	}
	if len(got) != 1 || got[0].ID != pipe.ID {
		t.Fatalf("eq filter returned %d rows, want the pipe item", len(got))
	}

	got, err = repo.ListUnapplied(dbc, "docs", neqBinding, "")
	if err != nil {
		t.Fatalf("ListUnapplied neq: %v", err)
	}
	if len(got) != 1 || got[0].ID != baz.ID {
		t.Fatalf("neq filter returned %d rows, want the baz item", len(got))
	}

	// Completion is monotonic: once marked, the item never reappears for
	// that binding, while other bindings are unaffected.
	if err := repo.MarkProcessed(dbc, pipe.ID, eqBinding.ID); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	got, err = repo.ListUnapplied(dbc, "docs", eqBinding, "")
	if err != nil {
		t.Fatalf("ListUnapplied after mark: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("marked content still returned for its binding")
	}
	got, err = repo.ListUnapplied(dbc, "docs", neqBinding, "")
	if err != nil {
		t.Fatalf("ListUnapplied other binding: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("marker for one binding leaked into another binding's query")
	}

	state, err := pipeReload(t, repo, dbc, pipe.ID).CompletionState()
	if err != nil {
		t.Fatalf("CompletionState: %v", err)
	}
	if state.State[eqBinding.ID] < 1 {
		t.Fatalf("completion marker not set: %v", state.State)
	}
}

func TestUnappliedNarrowedToOneContent(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewContentRepo(conn, testutil.Logger(t))

	a := mustText(t, "docs", "first", map[string]interface{}{"lang": "en"})
	b := mustText(t, "docs", "second", map[string]interface{}{"lang": "en"})
	for _, c := range []*domain.Content{a, b} {
		if _, err := repo.Insert(dbc, c); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	binding := domain.NewExtractorBinding("docs", "e", "i",
		[]domain.Filter{domain.Eq("lang", "en")}, nil)

	got, err := repo.ListUnapplied(dbc, "docs", binding, a.ID)
	if err != nil {
		t.Fatalf("ListUnapplied: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("narrowed query returned %d rows", len(got))
	}
}

func TestMarkProcessedMissingContent(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewContentRepo(conn, testutil.Logger(t))

	err := repo.MarkProcessed(dbc, "missing", "b1")
	if err == nil {
		t.Fatal("expected not-found error for missing content")
	}
}

func pipeReload(t *testing.T, repo ContentRepo, dbc dbctx.Context, id string) *domain.Content {
	t.Helper()
	c, err := repo.Get(dbc, id)
	if err != nil {
		t.Fatalf("reload content: %v", err)
	}
	return c
}
