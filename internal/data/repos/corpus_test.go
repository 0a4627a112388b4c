package repos

import (
	"context"
	"testing"

	"github.com/akira/indexify/internal/data/repos/testutil"
	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/dbctx"
)

func TestCorpusUpsertReplacesBindings(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCorpusRepo(conn, testutil.Logger(t))

	b1 := domain.NewExtractorBinding("docs", "extractor1", "index1", nil, nil)
	corpus := &domain.Corpus{
		Name:              "docs",
		ExtractorBindings: []domain.ExtractorBinding{b1},
		Metadata:          map[string]interface{}{"owner": "ops"},
	}
	if err := repo.Upsert(dbc, corpus); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.GetByName(dbc, "docs")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if len(got.ExtractorBindings) != 1 || got.ExtractorBindings[0].ID != b1.ID {
		t.Fatalf("bindings after upsert: %#v", got.ExtractorBindings)
	}

	// Bindings replace wholesale on re-upsert.
	b2 := domain.NewExtractorBinding("docs", "extractor2", "index2", nil, nil)
	corpus.ExtractorBindings = []domain.ExtractorBinding{b2}
	if err := repo.Upsert(dbc, corpus); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	got, err = repo.GetByName(dbc, "docs")
	if err != nil {
		t.Fatalf("GetByName after replace: %v", err)
	}
	if len(got.ExtractorBindings) != 1 || got.ExtractorBindings[0].ID != b2.ID {
		t.Fatalf("bindings were not replaced: %#v", got.ExtractorBindings)
	}
}

func TestBindingByID(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCorpusRepo(conn, testutil.Logger(t))

	binding := domain.NewExtractorBinding("docs", "extractor1", "index1",
		[]domain.Filter{domain.Eq("lang", "en")}, nil)
	if err := repo.Upsert(dbc, &domain.Corpus{
		Name:              "docs",
		ExtractorBindings: []domain.ExtractorBinding{binding},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.BindingByID(dbc, "docs", binding.ID)
	if err != nil {
		t.Fatalf("BindingByID: %v", err)
	}
	if got.ExtractorName != "extractor1" || len(got.Filters) != 1 {
		t.Fatalf("binding round trip lost data: %#v", got)
	}

	_, err = repo.BindingByID(dbc, "docs", "missing")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found for missing binding, got %v", err)
	}
}

func TestGetCorpusNotFound(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCorpusRepo(conn, testutil.Logger(t))

	_, err := repo.GetByName(dbc, "nope")
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
