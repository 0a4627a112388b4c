package domain

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/platform/identity"
)

// ExtractorBinding declares that an extractor should run over a corpus's
// content matching Filters, writing into IndexName. The id is derived from
// (corpus, extractor, index) so re-declaring the same binding is a no-op.
type ExtractorBinding struct {
	ID            string          `json:"id"`
	ExtractorName string          `json:"extractor_name"`
	IndexName     string          `json:"index_name"`
	Filters       []Filter        `json:"filters"`
	InputParams   json.RawMessage `json:"input_params"`
}

func NewExtractorBinding(corpus, extractorName, indexName string, filters []Filter, inputParams json.RawMessage) ExtractorBinding {
	if inputParams == nil {
		inputParams = json.RawMessage("{}")
	}
	return ExtractorBinding{
		ID:            identity.Derive(corpus, extractorName, indexName),
		ExtractorName: extractorName,
		IndexName:     indexName,
		Filters:       filters,
		InputParams:   inputParams,
	}
}

type ConnectorKind string

const (
	ConnectorGoogleContact ConnectorKind = "google_contact"
	ConnectorGmail         ConnectorKind = "gmail"
)

type DataConnector struct {
	Kind     ConnectorKind `json:"kind"`
	Metadata string        `json:"metadata,omitempty"`
}

// Corpus is a named logical collection of content plus the extractor
// bindings declared on it. Bindings replace wholesale on upsert.
type Corpus struct {
	Name              string
	DataConnectors    []DataConnector
	ExtractorBindings []ExtractorBinding
	Metadata          map[string]interface{}
}

// CorpusRow is the persisted shape: bindings keyed by binding id so a
// re-declared binding overwrites itself instead of accumulating.
type CorpusRow struct {
	Name              string         `gorm:"column:name;primaryKey"`
	ExtractorBindings datatypes.JSON `gorm:"column:extractor_bindings;type:jsonb"`
	DataConnectors    datatypes.JSON `gorm:"column:data_connectors;type:jsonb"`
	Metadata          datatypes.JSON `gorm:"column:metadata;type:jsonb"`
}

func (CorpusRow) TableName() string { return "data_corpus" }

func (c *Corpus) Row() (*CorpusRow, error) {
	bindings := make(map[string]ExtractorBinding, len(c.ExtractorBindings))
	for _, b := range c.ExtractorBindings {
		bindings[b.ID] = b
	}
	bindingsJSON, err := json.Marshal(bindings)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "encode extractor bindings", err)
	}
	connectorsJSON, err := json.Marshal(c.DataConnectors)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "encode data connectors", err)
	}
	metadata := c.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "encode corpus metadata", err)
	}
	return &CorpusRow{
		Name:              c.Name,
		ExtractorBindings: datatypes.JSON(bindingsJSON),
		DataConnectors:    datatypes.JSON(connectorsJSON),
		Metadata:          datatypes.JSON(metadataJSON),
	}, nil
}

func (r *CorpusRow) Domain() (*Corpus, error) {
	bindings, err := r.Bindings()
	if err != nil {
		return nil, err
	}
	var connectors []DataConnector
	if len(r.DataConnectors) > 0 {
		if err := json.Unmarshal(r.DataConnectors, &connectors); err != nil {
			return nil, apperr.Wrap(apperr.KindSerialization, "decode data connectors for corpus "+r.Name, err)
		}
	}
	metadata := map[string]interface{}{}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &metadata); err != nil {
			return nil, apperr.Wrap(apperr.KindSerialization, "decode metadata for corpus "+r.Name, err)
		}
	}
	return &Corpus{
		Name:              r.Name,
		DataConnectors:    connectors,
		ExtractorBindings: bindings,
		Metadata:          metadata,
	}, nil
}

func (r *CorpusRow) Bindings() ([]ExtractorBinding, error) {
	if len(r.ExtractorBindings) == 0 {
		return nil, nil
	}
	byID := map[string]ExtractorBinding{}
	if err := json.Unmarshal(r.ExtractorBindings, &byID); err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "decode extractor bindings for corpus "+r.Name, err)
	}
	out := make([]ExtractorBinding, 0, len(byID))
	for _, b := range byID {
		out = append(out, b)
	}
	return out, nil
}
