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

type ChunkRepo interface {
	// Create inserts chunks for an index; id collisions are no-ops.
	Create(dbc dbctx.Context, chunks []*domain.Chunk, indexName string) error
	GetWithMetadata(dbc dbctx.Context, chunkID string) (*domain.ChunkWithMetadata, error)
}

type chunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkRepo(db *gorm.DB, baseLog *logger.Logger) ChunkRepo {
	return &chunkRepo{db: db, log: baseLog.With("repo", "ChunkRepo")}
}

func (r *chunkRepo) Create(dbc dbctx.Context, chunks []*domain.Chunk, indexName string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		c.IndexName = indexName
	}
	// Keep batches small because Text is large.
	const batchSize = 100
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "chunk_id"}}, DoNothing: true}).
		CreateInBatches(chunks, batchSize).Error; err != nil {
		return apperr.Wrap(apperr.KindStore, "create chunks", err)
	}
	return nil
}

func (r *chunkRepo) GetWithMetadata(dbc dbctx.Context, chunkID string) (*domain.ChunkWithMetadata, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var chunk domain.Chunk
	err := transaction.WithContext(dbc.Ctx).Where("chunk_id = ?", chunkID).First(&chunk).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("chunk", chunkID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get chunk", err)
	}
	var content domain.Content
	err = transaction.WithContext(dbc.Ctx).Where("id = ?", chunk.ContentID).First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("content", chunk.ContentID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "get chunk content", err)
	}
	metadata, err := content.MetadataMap()
	if err != nil {
		return nil, err
	}
	return &domain.ChunkWithMetadata{
		ChunkID:   chunk.ChunkID,
		ContentID: chunk.ContentID,
		Text:      chunk.Text,
		Metadata:  metadata,
	}, nil
}
