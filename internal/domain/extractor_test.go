package domain

import (
	"testing"

	"github.com/akira/indexify/internal/platform/apperr"
	"github.com/akira/indexify/internal/vector"
)

func TestExtractorTypeRoundTrip(t *testing.T) {
	types := []ExtractorType{
		EmbeddingType{Dim: 384, Distance: vector.DistanceCosine},
		AttributesType{Schema: `{"type":"object"}`},
	}
	for _, typ := range types {
		raw, err := MarshalExtractorType(typ)
		if err != nil {
			t.Fatalf("marshal %T: %v", typ, err)
		}
		got, err := UnmarshalExtractorType(raw)
		if err != nil {
			t.Fatalf("unmarshal %T: %v", typ, err)
		}
		if got != typ {
			t.Fatalf("round trip changed type: %#v -> %#v", typ, got)
		}
	}
}

func TestExtractorTypeUnknownKind(t *testing.T) {
	_, err := UnmarshalExtractorType([]byte(`{"kind":"quantum","data":{}}`))
	if !apperr.IsKind(err, apperr.KindSerialization) {
		t.Fatalf("expected serialization error, got %v", err)
	}
}

func TestExtractorRowRoundTrip(t *testing.T) {
	cfg := DefaultExtractorConfig()
	row, err := cfg.Row()
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	got, err := row.Domain()
	if err != nil {
		t.Fatalf("Domain: %v", err)
	}
	if got.Name != cfg.Name || got.Type != cfg.Type {
		t.Fatalf("row round trip changed config: %#v -> %#v", cfg, got)
	}
}
