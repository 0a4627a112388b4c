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

type ExtractorRepo interface {
	// Record registers extractors; re-recording updates description and
	// params for the same name.
	Record(dbc dbctx.Context, extractors []domain.ExtractorConfig) error
	List(dbc dbctx.Context) ([]*domain.ExtractorConfig, error)
	GetByName(dbc dbctx.Context, name string) (*domain.ExtractorConfig, error)
}

type extractorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtractorRepo(db *gorm.DB, baseLog *logger.Logger) ExtractorRepo {
	return &extractorRepo{db: db, log: baseLog.With("repo", "ExtractorRepo")}
}

func (r *extractorRepo) Record(dbc dbctx.Context, extractors []domain.ExtractorConfig) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(extractors) == 0 {
		return nil
	}
	rows := make([]*domain.ExtractorRow, 0, len(extractors))
	for i := range extractors {
		row, err := extractors[i].Row()
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "input_params"}),
		}).
		Create(rows).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "record extractors", err)
	}
	return nil
}

func (r *extractorRepo) List(dbc dbctx.Context) ([]*domain.ExtractorConfig, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*domain.ExtractorRow
	if err := transaction.WithContext(dbc.Ctx).Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "list extractors", err)
	}
	out := make([]*domain.ExtractorConfig, 0, len(rows))
	for _, row := range rows {
		cfg, err := row.Domain()
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (r *extractorRepo) GetByName(dbc dbctx.Context, name string) (*domain.ExtractorConfig, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row domain.ExtractorRow
	err := transaction.WithContext(dbc.Ctx).Where("name = ?", name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("extractor", name)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get extractor", err)
	}
	return row.Domain()
}
