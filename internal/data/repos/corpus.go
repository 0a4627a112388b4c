package repos

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/dbctx"
	"github.com/akira/indexify/internal/platform/logger"
)

type CorpusRepo interface {
	// Upsert inserts or replaces a corpus by name; bindings, connectors and
	// metadata fully replace prior values.
	Upsert(dbc dbctx.Context, corpus *domain.Corpus) error
	GetByName(dbc dbctx.Context, name string) (*domain.Corpus, error)
	List(dbc dbctx.Context) ([]*domain.Corpus, error)
	BindingByID(dbc dbctx.Context, corpus, bindingID string) (*domain.ExtractorBinding, error)
}

type corpusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCorpusRepo(db *gorm.DB, baseLog *logger.Logger) CorpusRepo {
	return &corpusRepo{db: db, log: baseLog.With("repo", "CorpusRepo")}
}

func (r *corpusRepo) Upsert(dbc dbctx.Context, corpus *domain.Corpus) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	row, err := corpus.Row()
	if err != nil {
		return err
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"extractor_bindings", "data_connectors", "metadata"}),
		}).
		Create(row).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "upsert corpus", err)
	}
	return nil
}

func (r *corpusRepo) GetByName(dbc dbctx.Context, name string) (*domain.Corpus, error) {
	row, err := r.rowByName(dbc, name)
	if err != nil {
		return nil, err
	}
	return row.Domain()
}

func (r *corpusRepo) List(dbc dbctx.Context) ([]*domain.Corpus, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*domain.CorpusRow
	if err := transaction.WithContext(dbc.Ctx).Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "list corpora", err)
	}
	out := make([]*domain.Corpus, 0, len(rows))
	for _, row := range rows {
		c, err := row.Domain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *corpusRepo) BindingByID(dbc dbctx.Context, corpus, bindingID string) (*domain.ExtractorBinding, error) {
	row, err := r.rowByName(dbc, corpus)
	if err != nil {
		return nil, err
	}
	bindings, err := row.Bindings()
	if err != nil {
		return nil, err
	}
	for i := range bindings {
		if bindings[i].ID == bindingID {
			return &bindings[i], nil
		}
	}
	return nil, apperr.NotFound("binding", bindingID)
}

func (r *corpusRepo) rowByName(dbc dbctx.Context, name string) (*domain.CorpusRow, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row domain.CorpusRow
	err := transaction.WithContext(dbc.Ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("corpus", name)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get corpus", err)
	}
	return &row, nil
}
