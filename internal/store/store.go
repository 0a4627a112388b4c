// Package store composes the repos behind domain operations and owns the
// transaction boundaries: every mutation that must announce itself writes
// its outbox events inside the same transaction, so a reader either sees
// both the row and its event or neither.
package store

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/akira/indexify/internal/data/repos"
	"github.com/akira/indexify/internal/domain"
	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/dbctx"
	"github.com/akira/indexify/internal/platform/logger"
	"github.com/akira/indexify/internal/vector"
)

type Store struct {
	db         *gorm.DB
	log        *logger.Logger
	corpora    repos.CorpusRepo
	contents   repos.ContentRepo
	outbox     repos.OutboxRepo
	work       repos.WorkRepo
	extractors repos.ExtractorRepo
	indexes    repos.IndexRepo
	chunks     repos.ChunkRepo
	attributes repos.AttributeRepo
	vectors    vector.Store
}

// New wires the store. vectors may be nil when no vector backend is
// configured; CreateIndex then fails with a logic error.
func New(db *gorm.DB, vectors vector.Store, baseLog *logger.Logger) *Store {
	log := baseLog.With("service", "Store")
	return &Store{
		db:         db,
		log:        log,
		corpora:    repos.NewCorpusRepo(db, baseLog),
		contents:   repos.NewContentRepo(db, baseLog),
		outbox:     repos.NewOutboxRepo(db, baseLog),
		work:       repos.NewWorkRepo(db, baseLog),
		extractors: repos.NewExtractorRepo(db, baseLog),
		indexes:    repos.NewIndexRepo(db, baseLog),
		chunks:     repos.NewChunkRepo(db, baseLog),
		attributes: repos.NewAttributeRepo(db, baseLog),
		vectors:    vectors,
	}
}

// IngestContent inserts the given content rows and appends one
// content_created event per row actually inserted, atomically. A conflict on
// a content id means "already ingested": no error, and no duplicate event.
func (s *Store) IngestContent(ctx context.Context, corpus string, items []*domain.Content) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		var events []*domain.ExtractionEvent
		for _, item := range items {
			item.CorpusName = corpus
			inserted, err := s.contents.Insert(dbc, item)
			if err != nil {
				return err
			}
			if !inserted {
				s.log.Debug("content already ingested", "content_id", item.ID)
				continue
			}
			events = append(events, domain.NewExtractionEvent(corpus, domain.ContentCreated{ContentID: item.ID}))
		}
		return s.outbox.Append(dbc, events)
	})
}

// UpsertCorpus replaces the corpus row and appends one binding_added event
// per currently declared binding, atomically. Re-upserting an unchanged
// corpus re-emits its binding events: at-least-once at this granularity,
// consumers deduplicate by binding id.
func (s *Store) UpsertCorpus(ctx context.Context, corpus *domain.Corpus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.corpora.Upsert(dbc, corpus); err != nil {
			return err
		}
		events := make([]*domain.ExtractionEvent, 0, len(corpus.ExtractorBindings))
		for _, b := range corpus.ExtractorBindings {
			events = append(events, domain.NewExtractionEvent(corpus.Name, domain.BindingAdded{
				Corpus:    corpus.Name,
				BindingID: b.ID,
			}))
		}
		return s.outbox.Append(dbc, events)
	})
}

// CreateIndex records the index metadata and creates the backing vector
// collection in one atomic unit: if the collaborator call fails the metadata
// insert is rolled back. Re-declaring an index with identical parameters is a
// no-op; re-declaring with different parameters fails with already_exists.
func (s *Store) CreateIndex(ctx context.Context, corpus, extractorName, indexName string, params vector.CreateIndexParams) error {
	if s.vectors == nil {
		return apperr.New(apperr.KindLogic, "no vector backend configured")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		index := &domain.Index{
			Name:            indexName,
			CorpusName:      corpus,
			ExtractorName:   extractorName,
			VectorIndexName: params.VectorIndexName,
			IndexType:       string(domain.ExtractorKindEmbedding),
		}
		inserted, err := s.indexes.Insert(dbc, index)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := s.indexes.Get(dbc, indexName, corpus)
			if apperr.IsKind(err, apperr.KindNotFound) {
				// The name is taken by another corpus's index.
				return apperr.Newf(apperr.KindAlreadyExists, "index %q already declared elsewhere", indexName)
			}
			if err != nil {
				return err
			}
			if existing.ExtractorName != extractorName || existing.VectorIndexName != params.VectorIndexName {
				return apperr.Newf(apperr.KindAlreadyExists, "index %q already declared with different parameters", indexName)
			}
		}
		if err := s.vectors.CreateIndex(ctx, params); err != nil {
			return apperr.Wrap(apperr.KindVectorBackend, "create vector index "+indexName, err)
		}
		return nil
	})
}

func (s *Store) GetIndex(ctx context.Context, name, corpus string) (*domain.Index, error) {
	return s.indexes.Get(dbctx.Context{Ctx: ctx}, name, corpus)
}

func (s *Store) ListCorpora(ctx context.Context) ([]*domain.Corpus, error) {
	return s.corpora.List(dbctx.Context{Ctx: ctx})
}

func (s *Store) GetCorpus(ctx context.Context, name string) (*domain.Corpus, error) {
	return s.corpora.GetByName(dbctx.Context{Ctx: ctx}, name)
}

func (s *Store) BindingByID(ctx context.Context, corpus, bindingID string) (*domain.ExtractorBinding, error) {
	return s.corpora.BindingByID(dbctx.Context{Ctx: ctx}, corpus, bindingID)
}

func (s *Store) GetContent(ctx context.Context, corpus, contentID string) (*domain.Content, error) {
	return s.contents.GetByID(dbctx.Context{Ctx: ctx}, corpus, contentID)
}

func (s *Store) ContentByID(ctx context.Context, contentID string) (*domain.Content, error) {
	return s.contents.Get(dbctx.Context{Ctx: ctx}, contentID)
}

// UnappliedContent returns corpus content the binding has not been applied
// to yet, compiled server-side from the binding's filters. contentID, when
// non-empty, restricts the check to that single item.
func (s *Store) UnappliedContent(ctx context.Context, corpus string, binding domain.ExtractorBinding, contentID string) ([]*domain.Content, error) {
	return s.contents.ListUnapplied(dbctx.Context{Ctx: ctx}, corpus, binding, contentID)
}

func (s *Store) MarkContentProcessed(ctx context.Context, contentID, bindingID string) error {
	return s.contents.MarkProcessed(dbctx.Context{Ctx: ctx}, contentID, bindingID)
}

func (s *Store) UnprocessedEvents(ctx context.Context) ([]*domain.ExtractionEvent, error) {
	return s.outbox.PollUnprocessed(dbctx.Context{Ctx: ctx})
}

func (s *Store) MarkEventProcessed(ctx context.Context, eventID string) error {
	return s.outbox.MarkProcessed(dbctx.Context{Ctx: ctx}, eventID)
}

func (s *Store) CreateChunks(ctx context.Context, chunks []*domain.Chunk, indexName string) error {
	return s.chunks.Create(dbctx.Context{Ctx: ctx}, chunks, indexName)
}

func (s *Store) ChunkByID(ctx context.Context, chunkID string) (*domain.ChunkWithMetadata, error) {
	return s.chunks.GetWithMetadata(dbctx.Context{Ctx: ctx}, chunkID)
}

func (s *Store) AddAttributes(ctx context.Context, corpus, indexName string, attrs *domain.ExtractedAttributes) error {
	attrs.CorpusName = corpus
	attrs.IndexName = indexName
	return s.attributes.Upsert(dbctx.Context{Ctx: ctx}, attrs)
}

func (s *Store) ExtractedAttributes(ctx context.Context, corpus, indexName, contentID string) ([]*domain.ExtractedAttributes, error) {
	return s.attributes.List(dbctx.Context{Ctx: ctx}, corpus, indexName, contentID)
}

func (s *Store) RecordExtractors(ctx context.Context, extractors []domain.ExtractorConfig) error {
	return s.extractors.Record(dbctx.Context{Ctx: ctx}, extractors)
}

func (s *Store) ListExtractors(ctx context.Context) ([]*domain.ExtractorConfig, error) {
	return s.extractors.List(dbctx.Context{Ctx: ctx})
}

func (s *Store) GetExtractor(ctx context.Context, name string) (*domain.ExtractorConfig, error) {
	return s.extractors.GetByName(dbctx.Context{Ctx: ctx}, name)
}

// PlanWork derives and enqueues the work item for one (content, binding)
// pair. Deterministic work ids make re-planning after an outbox redelivery
// idempotent.
func (s *Store) PlanWork(ctx context.Context, contentID, corpus string, binding domain.ExtractorBinding) (*domain.Work, error) {
	work := domain.NewWork(contentID, corpus, binding.IndexName, binding.ExtractorName, json.RawMessage(binding.InputParams))
	if err := s.work.Enqueue(dbctx.Context{Ctx: ctx}, work); err != nil {
		return nil, err
	}
	return work, nil
}

func (s *Store) CreateWork(ctx context.Context, work *domain.Work) error {
	return s.work.Enqueue(dbctx.Context{Ctx: ctx}, work)
}

func (s *Store) WorkByID(ctx context.Context, workID string) (*domain.Work, error) {
	return s.work.GetByID(dbctx.Context{Ctx: ctx}, workID)
}

func (s *Store) UnassignedWork(ctx context.Context) ([]*domain.Work, error) {
	return s.work.Unassigned(dbctx.Context{Ctx: ctx})
}

func (s *Store) AssignWork(ctx context.Context, assignments map[string]string) error {
	return s.work.Assign(dbctx.Context{Ctx: ctx}, assignments)
}

func (s *Store) UpdateWorkState(ctx context.Context, workID string, state domain.WorkState) error {
	return s.work.AdvanceState(dbctx.Context{Ctx: ctx}, workID, state)
}

func (s *Store) WorkForWorker(ctx context.Context, workerID string) ([]*domain.Work, error) {
	return s.work.ForWorker(dbctx.Context{Ctx: ctx}, workerID)
}
