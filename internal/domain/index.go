package domain

// Index is the metadata row for a declared index. The backing vector
// collection is created through the vector collaborator in the same
// transaction scope.
type Index struct {
	Name            string `gorm:"column:name;primaryKey"`
	CorpusName      string `gorm:"column:corpus_name;not null;index"`
	ExtractorName   string `gorm:"column:extractor_name;not null"`
	VectorIndexName string `gorm:"column:vector_index_name"`
	IndexType       string `gorm:"column:index_type;not null"`
}

func (Index) TableName() string { return "index" }
