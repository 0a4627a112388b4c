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

// WorkRepo tracks extraction work items through their lifecycle. State
// transitions are caller-driven; AdvanceState does not guard against
// regression (forward-only is the executor's contract).
type WorkRepo interface {
	// Enqueue inserts pending work; a duplicate deterministic id is a no-op.
	Enqueue(dbc dbctx.Context, work *domain.Work) error
	GetByID(dbc dbctx.Context, workID string) (*domain.Work, error)
	// Unassigned returns pending work with no worker, for the scheduler.
	Unassigned(dbc dbctx.Context) ([]*domain.Work, error)
	// Assign bulk-sets worker ids. Re-assigning overwrites: last writer wins.
	Assign(dbc dbctx.Context, assignments map[string]string) error
	AdvanceState(dbc dbctx.Context, workID string, state domain.WorkState) error
	// ForWorker returns a worker's pending backlog, e.g. after a restart.
	ForWorker(dbc dbctx.Context, workerID string) ([]*domain.Work, error)
}

type workRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewWorkRepo(db *gorm.DB, baseLog *logger.Logger) WorkRepo {
	return &workRepo{db: db, log: baseLog.With("repo", "WorkRepo")}
}

func (r *workRepo) Enqueue(dbc dbctx.Context, work *domain.Work) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(work)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindStore, "enqueue work", res.Error)
	}
	return nil
}

func (r *workRepo) GetByID(dbc dbctx.Context, workID string) (*domain.Work, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var work domain.Work
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", workID).First(&work).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("work", workID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get work", err)
	}
	return &work, nil
}

func (r *workRepo) Unassigned(dbc dbctx.Context) ([]*domain.Work, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Work
	if err := transaction.WithContext(dbc.Ctx).
		Where("state = ? AND worker_id IS NULL", domain.WorkStatePending).
		Find(&out).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "list unassigned work", err)
	}
	return out, nil
}

func (r *workRepo) Assign(dbc dbctx.Context, assignments map[string]string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	for workID, workerID := range assignments {
		if err := transaction.WithContext(dbc.Ctx).
			Model(&domain.Work{}).
			Where("id = ?", workID).
			Update("worker_id", workerID).Error; err != nil {
			return apperr.Wrap(apperr.KindStore, "assign work "+workID, err)
		}
	}
	return nil
}

func (r *workRepo) AdvanceState(dbc dbctx.Context, workID string, state domain.WorkState) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&domain.Work{}).
		Where("id = ?", workID).
		Update("state", state).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "update work state", err)
	}
	return nil
}

func (r *workRepo) ForWorker(dbc dbctx.Context, workerID string) ([]*domain.Work, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Work
	if err := transaction.WithContext(dbc.Ctx).
		Where("worker_id = ? AND state = ?", workerID, domain.WorkStatePending).
		Find(&out).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "list work for worker", err)
	}
	return out, nil
}
