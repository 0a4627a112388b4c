package repos

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/dbctx"
	"github.com/akira/indexify/internal/platform/logger"
)

type AttributeRepo interface {
	// Upsert writes an extractor's structured output for one content item;
	// re-running the extractor overwrites the prior row.
	Upsert(dbc dbctx.Context, attrs *domain.ExtractedAttributes) error
	List(dbc dbctx.Context, corpus, indexName, contentID string) ([]*domain.ExtractedAttributes, error)
}

type attributeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttributeRepo(db *gorm.DB, baseLog *logger.Logger) AttributeRepo {
	return &attributeRepo{db: db, log: baseLog.With("repo", "AttributeRepo")}
}

func (r *attributeRepo) Upsert(dbc dbctx.Context, attrs *domain.ExtractedAttributes) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	attrs.CreatedAt = time.Now()
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "created_at"}),
		}).
		Create(attrs).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "upsert extracted attributes", err)
	}
	return nil
}

func (r *attributeRepo) List(dbc dbctx.Context, corpus, indexName, contentID string) ([]*domain.ExtractedAttributes, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).
		Where("corpus_name = ? AND index_name = ?", corpus, indexName)
	if contentID != "" {
		q = q.Where("content_id = ?", contentID)
	}
	var out []*domain.ExtractedAttributes
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "list extracted attributes", err)
	}
	return out, nil
}
