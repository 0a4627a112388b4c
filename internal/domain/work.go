package domain

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/akira/indexify/internal/platform/identity"
)

type WorkState string

const (
	WorkStateUnknown    WorkState = "Unknown"
	WorkStatePending    WorkState = "Pending"
	WorkStateInProgress WorkState = "InProgress"
	WorkStateCompleted  WorkState = "Completed"
	WorkStateFailed     WorkState = "Failed"
)

// ParseWorkState maps a stored string onto the state enum; anything
// undeserializable becomes the Unknown sentinel rather than an error.
func ParseWorkState(s string) WorkState {
	switch WorkState(s) {
	case WorkStatePending, WorkStateInProgress, WorkStateCompleted, WorkStateFailed:
		return WorkState(s)
	}
	return WorkStateUnknown
}

func (s WorkState) Terminal() bool {
	return s == WorkStateCompleted || s == WorkStateFailed
}

// Work is one unit of planned extraction (content x extractor x index).
// The id is derived from its coordinates, so re-planning the same work
// after an outbox redelivery is idempotent. State moves Pending ->
// InProgress -> {Completed, Failed}; forward-only is a caller contract.
type Work struct {
	ID              string         `gorm:"column:id;primaryKey"`
	ContentID       string         `gorm:"column:content_id;not null;index"`
	CorpusName      string         `gorm:"column:corpus_name;not null;index"`
	IndexName       string         `gorm:"column:index_name;not null"`
	ExtractorName   string         `gorm:"column:extractor_name;not null"`
	ExtractorParams datatypes.JSON `gorm:"column:extractor_params;type:jsonb"`
	State           WorkState      `gorm:"column:state;not null;index"`
	WorkerID        *string        `gorm:"column:worker_id;index"`
}

func (Work) TableName() string { return "work" }

func NewWork(contentID, corpus, indexName, extractorName string, extractorParams json.RawMessage) *Work {
	if extractorParams == nil {
		extractorParams = json.RawMessage("{}")
	}
	return &Work{
		ID:              identity.Derive(contentID, corpus, indexName, extractorName),
		ContentID:       contentID,
		CorpusName:      corpus,
		IndexName:       indexName,
		ExtractorName:   extractorName,
		ExtractorParams: datatypes.JSON(extractorParams),
		State:           WorkStatePending,
	}
}
