package domain

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/akira/indexify/internal/platform/identity"
)

// ExtractedAttributes holds one attribute extractor's structured output for
// one content item. Re-running the extractor overwrites the prior row.
type ExtractedAttributes struct {
	ID            string         `gorm:"column:id;primaryKey"`
	CorpusName    string         `gorm:"column:corpus_name;not null;index"`
	IndexName     string         `gorm:"column:index_name;not null;index"`
	ExtractorName string         `gorm:"column:extractor_name;not null"`
	ContentID     string         `gorm:"column:content_id;not null;index"`
	Data          datatypes.JSON `gorm:"column:data;type:jsonb"`
	CreatedAt     time.Time      `gorm:"column:created_at;not null"`
}

func (ExtractedAttributes) TableName() string { return "attributes_index" }

func NewExtractedAttributes(contentID, extractorName string, data json.RawMessage) *ExtractedAttributes {
	if data == nil {
		data = json.RawMessage("{}")
	}
	return &ExtractedAttributes{
		ID:            identity.Derive(contentID, extractorName),
		ContentID:     contentID,
		ExtractorName: extractorName,
		Data:          datatypes.JSON(data),
	}
}
