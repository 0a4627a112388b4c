package repos

import (
	"time"

	"gorm.io/gorm"

	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/dbctx"
	"github.com/akira/indexify/internal/platform/logger"
)

// OutboxRepo is the durable event log. Append must run inside the same
// transaction as the mutation it announces; the store facade owns that
// boundary and passes the transaction through dbc.Tx.
type OutboxRepo interface {
	Append(dbc dbctx.Context, events []*domain.ExtractionEvent) error
	PollUnprocessed(dbc dbctx.Context) ([]*domain.ExtractionEvent, error)
	MarkProcessed(dbc dbctx.Context, eventID string) error
}

type outboxRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOutboxRepo(db *gorm.DB, baseLog *logger.Logger) OutboxRepo {
	return &outboxRepo{db: db, log: baseLog.With("repo", "OutboxRepo")}
}

func (r *outboxRepo) Append(dbc dbctx.Context, events []*domain.ExtractionEvent) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(events) == 0 {
		return nil
	}
	rows := make([]*domain.ExtractionEventRow, 0, len(events))
	for _, ev := range events {
		row, err := ev.Row()
		if err != nil {
			return err
		}
		row.CreatedAt = time.Now()
		rows = append(rows, row)
	}
	if err := transaction.WithContext(dbc.Ctx).Create(rows).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "append extraction events", err)
	}
	return nil
}

func (r *outboxRepo) PollUnprocessed(dbc dbctx.Context) ([]*domain.ExtractionEvent, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []*domain.ExtractionEventRow
	if err := transaction.WithContext(dbc.Ctx).
		Where("processed_at IS NULL").
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "poll unprocessed events", err)
	}
	out := make([]*domain.ExtractionEvent, 0, len(rows))
	for _, row := range rows {
		ev, err := row.Domain()
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// MarkProcessed is idempotent: marking an already-marked or missing event is
// a no-op so a consumer can safely retry after a crash.
func (r *outboxRepo) MarkProcessed(dbc dbctx.Context, eventID string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().Unix()
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.ExtractionEventRow{}).
		Where("id = ? AND processed_at IS NULL", eventID).
		Update("processed_at", now)
	if res.Error != nil {
		return apperr.Wrap(apperr.KindStore, "mark event processed", res.Error)
	}
	return nil
}
