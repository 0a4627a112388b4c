package domain

import (
	"github.com/akira/indexify/internal/platform/identity"
)

// Chunk is a fragment of a content's text stored per index. The id derives
// from (content id, text), so re-chunking identical text is idempotent.
type Chunk struct {
	ChunkID   string `gorm:"column:chunk_id;primaryKey"`
	ContentID string `gorm:"column:content_id;not null;index"`
	Text      string `gorm:"column:text;type:text"`
	IndexName string `gorm:"column:index_name;not null;index"`
}

func (Chunk) TableName() string { return "index_chunk" }

func NewChunk(contentID, text string) *Chunk {
	return &Chunk{
		ChunkID:   identity.Derive(contentID, text),
		ContentID: contentID,
		Text:      text,
	}
}

// ChunkWithMetadata joins a chunk with its parent content's metadata.
type ChunkWithMetadata struct {
	ChunkID   string
	ContentID string
	Text      string
	Metadata  map[string]interface{}
}
