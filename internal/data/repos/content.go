package repos

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/dbctx"
	"github.com/akira/indexify/internal/platform/logger"
)

// ContentRepo stores ingested content and its per-binding completion map.
type ContentRepo interface {
	// Insert adds one content row; a conflict on the deterministic id means
	// the content was already ingested and reports inserted=false.
	Insert(dbc dbctx.Context, content *domain.Content) (bool, error)
	GetByID(dbc dbctx.Context, corpus, contentID string) (*domain.Content, error)
	Get(dbc dbctx.Context, contentID string) (*domain.Content, error)
	// MarkProcessed sets the completion marker for one binding via a targeted
	// field-level JSON update, leaving concurrent markers for other bindings
	// untouched.
	MarkProcessed(dbc dbctx.Context, contentID, bindingID string) error
	// ListUnapplied returns corpus content whose marker for the binding is
	// absent or zero and that satisfies every binding filter. contentID, when
	// non-empty, narrows the query to that single item.
	ListUnapplied(dbc dbctx.Context, corpus string, binding domain.ExtractorBinding, contentID string) ([]*domain.Content, error)
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) Insert(dbc dbctx.Context, content *domain.Content) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(content)
	if res.Error != nil {
		return false, apperr.Wrap(apperr.KindStore, "insert content", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *contentRepo) GetByID(dbc dbctx.Context, corpus, contentID string) (*domain.Content, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var content domain.Content
	err := transaction.WithContext(dbc.Ctx).
		Where("corpus_name = ? AND id = ?", corpus, contentID).
		First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("content", contentID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get content", err)
	}
	return &content, nil
}

func (r *contentRepo) Get(dbc dbctx.Context, contentID string) (*domain.Content, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var content domain.Content
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", contentID).
		First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("content", contentID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get content", err)
	}
	return &content, nil
}

func (r *contentRepo) MarkProcessed(dbc dbctx.Context, contentID, bindingID string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	path := completionPath(transaction.Dialector.Name(), bindingID)
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Content{}).
		Where("id = ?", contentID).
		UpdateColumn("binding_state", datatypes.JSONSet("binding_state").Set(path, 1))
	if res.Error != nil {
		return apperr.Wrap(apperr.KindStore, "mark content processed", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("content", contentID)
	}
	return nil
}

func (r *contentRepo) ListUnapplied(dbc dbctx.Context, corpus string, binding domain.ExtractorBinding, contentID string) ([]*domain.Content, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	dialect := transaction.Dialector.Name()
	q := transaction.WithContext(dbc.Ctx).
		Model(&domain.Content{}).
		Where("corpus_name = ?", corpus).
		Where(unappliedClause(dialect), binding.ID)
	if contentID != "" {
		q = q.Where("id = ?", contentID)
	}
	for _, f := range binding.Filters {
		clauseSQL, args, err := compileFilter(dialect, f)
		if err != nil {
			return nil, err
		}
		q = q.Where(clauseSQL, args...)
	}
	var out []*domain.Content
	if err := q.Find(&out).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "list unapplied content", err)
	}
	return out, nil
}
