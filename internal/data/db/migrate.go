package db

import (
	"gorm.io/gorm"

	"github.com/akira/indexify/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.CorpusRow{},
		&domain.Content{},
		&domain.ExtractionEventRow{},
		&domain.Work{},
		&domain.ExtractorRow{},
		&domain.Index{},
		&domain.Chunk{},
		&domain.ExtractedAttributes{},
	)
}
