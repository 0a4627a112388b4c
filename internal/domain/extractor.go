package domain

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/vector"
)

type ExtractorKind string

const (
	ExtractorKindEmbedding  ExtractorKind = "embedding"
	ExtractorKindAttributes ExtractorKind = "attributes"
)

// ExtractorType is a closed union: EmbeddingType or AttributesType.
type ExtractorType interface {
	ExtractorKind() ExtractorKind
}

type EmbeddingType struct {
	Dim      int             `json:"dim"`
	Distance vector.Distance `json:"distance"`
}

func (EmbeddingType) ExtractorKind() ExtractorKind { return ExtractorKindEmbedding }

type AttributesType struct {
	Schema string `json:"schema"`
}

func (AttributesType) ExtractorKind() ExtractorKind { return ExtractorKindAttributes }

type extractorTypeEnvelope struct {
	Kind ExtractorKind   `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func MarshalExtractorType(t ExtractorType) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "encode extractor type", err)
	}
	return json.Marshal(extractorTypeEnvelope{Kind: t.ExtractorKind(), Data: data})
}

func UnmarshalExtractorType(raw []byte) (ExtractorType, error) {
	var env extractorTypeEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "decode extractor type envelope", err)
	}
	switch env.Kind {
	case ExtractorKindEmbedding:
		var t EmbeddingType
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return nil, apperr.Wrap(apperr.KindSerialization, "decode embedding extractor type", err)
		}
		return t, nil
	case ExtractorKindAttributes:
		var t AttributesType
		if err := json.Unmarshal(env.Data, &t); err != nil {
			return nil, apperr.Wrap(apperr.KindSerialization, "decode attributes extractor type", err)
		}
		return t, nil
	}
	return nil, apperr.Newf(apperr.KindSerialization, "unknown extractor kind %q", env.Kind)
}

// ExtractorConfig describes a registered extractor.
type ExtractorConfig struct {
	Name        string
	Description string
	Type        ExtractorType
	InputParams json.RawMessage
}

// DefaultExtractorConfig is the embedding extractor assumed when none is
// registered explicitly.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		Name:        "default-embedder",
		Description: "Default Text Embedding Extractor",
		Type:        EmbeddingType{Dim: 384, Distance: vector.DistanceCosine},
		InputParams: json.RawMessage("{}"),
	}
}

type ExtractorRow struct {
	Name        string         `gorm:"column:name;primaryKey"`
	Description string         `gorm:"column:description"`
	Type        datatypes.JSON `gorm:"column:extractor_type;type:jsonb"`
	InputParams datatypes.JSON `gorm:"column:input_params;type:jsonb"`
}

func (ExtractorRow) TableName() string { return "extractor" }

func (c *ExtractorConfig) Row() (*ExtractorRow, error) {
	typeJSON, err := MarshalExtractorType(c.Type)
	if err != nil {
		return nil, err
	}
	params := c.InputParams
	if params == nil {
		params = json.RawMessage("{}")
	}
	return &ExtractorRow{
		Name:        c.Name,
		Description: c.Description,
		Type:        datatypes.JSON(typeJSON),
		InputParams: datatypes.JSON(params),
	}, nil
}

func (r *ExtractorRow) Domain() (*ExtractorConfig, error) {
	t, err := UnmarshalExtractorType(r.Type)
	if err != nil {
		return nil, err
	}
	return &ExtractorConfig{
		Name:        r.Name,
		Description: r.Description,
		Type:        t,
		InputParams: json.RawMessage(r.InputParams),
	}, nil
}
