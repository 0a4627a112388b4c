package domain

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/identity"
)

type ContentType string

const ContentTypeText ContentType = "text"

// BindingState is the completion map stored inside the content row:
// binding id -> marker, 0 or absent means the binding has not been applied.
// It lives on the row so the unapplied query is one indexed scan, and it is
// only ever mutated via a targeted field-level update.
type BindingState struct {
	State map[string]int64 `json:"state"`
}

// Content is one ingested text unit. The id is derived from (corpus, text),
// making ingestion idempotent under retries and re-ingestion.
type Content struct {
	ID           string         `gorm:"column:id;primaryKey"`
	CorpusName   string         `gorm:"column:corpus_name;not null;index"`
	Text         string         `gorm:"column:text;type:text"`
	Metadata     datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	ContentType  string         `gorm:"column:content_type;not null"`
	BindingState datatypes.JSON `gorm:"column:binding_state;type:jsonb"`
}

func (Content) TableName() string { return "content" }

func NewText(corpus, text string, metadata map[string]interface{}) (*Content, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "encode content metadata", err)
	}
	stateJSON, err := json.Marshal(BindingState{State: map[string]int64{}})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "encode binding state", err)
	}
	return &Content{
		ID:           identity.Derive(corpus, text),
		CorpusName:   corpus,
		Text:         text,
		Metadata:     datatypes.JSON(metadataJSON),
		ContentType:  string(ContentTypeText),
		BindingState: datatypes.JSON(stateJSON),
	}, nil
}

func (c *Content) MetadataMap() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if len(c.Metadata) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(c.Metadata, &out); err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "decode metadata for content "+c.ID, err)
	}
	return out, nil
}

func (c *Content) CompletionState() (BindingState, error) {
	state := BindingState{State: map[string]int64{}}
	if len(c.BindingState) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(c.BindingState, &state); err != nil {
		return state, apperr.Wrap(apperr.KindSerialization, "decode binding state for content "+c.ID, err)
	}
	if state.State == nil {
		state.State = map[string]int64{}
	}
	return state, nil
}
