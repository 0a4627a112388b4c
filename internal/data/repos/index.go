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

type IndexRepo interface {
	// Insert declares an index; a name conflict reports inserted=false so the
	// caller can check the existing declaration against the new one.
	Insert(dbc dbctx.Context, index *domain.Index) (bool, error)
	Get(dbc dbctx.Context, name, corpus string) (*domain.Index, error)
}

type indexRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIndexRepo(db *gorm.DB, baseLog *logger.Logger) IndexRepo {
	return &indexRepo{db: db, log: baseLog.With("repo", "IndexRepo")}
}

func (r *indexRepo) Insert(dbc dbctx.Context, index *domain.Index) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(index)
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindStore, "insert index", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *indexRepo) Get(dbc dbctx.Context, name, corpus string) (*domain.Index, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var index domain.Index
	err := transaction.WithContext(dbc.Ctx).
		Where("name = ? AND corpus_name = ?", name, corpus).
		First(&index).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("index", name)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get index", err)
	}
	return &index, nil
}
