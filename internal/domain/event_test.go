package domain

import (
	"testing"

	"github.com/akira/indexify/internal/platform/apperr"
)

func TestEventPayloadRoundTrip(t *testing.T) {
	payloads := []EventPayload{
		BindingAdded{Corpus: "docs", BindingID: "abc123"},
		ContentCreated{ContentID: "def456"},
	}
	for _, p := range payloads {
		raw, err := MarshalEventPayload(p)
		if err != nil {
			t.Fatalf("marshal %T: %v", p, err)
		}
		got, err := UnmarshalEventPayload(raw)
		if err != nil {
			t.Fatalf("unmarshal %T: %v", p, err)
		}
		if got != p {
			t.Fatalf("round trip changed payload: %#v -> %#v", p, got)
		}
	}
}

func TestEventPayloadUnknownKind(t *testing.T) {
	_, err := UnmarshalEventPayload([]byte(`{"kind":"mystery","data":{}}`))
	if !apperr.IsKind(err, apperr.KindSerialization) {
		t.Fatalf("expected serialization error for unknown kind, got %v", err)
	}
}

func TestEventPayloadGarbage(t *testing.T) {
	_, err := UnmarshalEventPayload([]byte(`not json`))
	if !apperr.IsKind(err, apperr.KindSerialization) {
		t.Fatalf("expected serialization error for garbage, got %v", err)
	}
}

func TestNewExtractionEventIDsAreUnique(t *testing.T) {
	a := NewExtractionEvent("docs", ContentCreated{ContentID: "x"})
	b := NewExtractionEvent("docs", ContentCreated{ContentID: "x"})
	if a.ID == b.ID {
		t.Fatal("event ids must be random, got equal ids for two events")
	}
}

func TestEventRowRoundTrip(t *testing.T) {
	ev := NewExtractionEvent("docs", BindingAdded{Corpus: "docs", BindingID: "b1"})
	row, err := ev.Row()
	if err != nil {
		t.Fatalf("Row: %v", err)
	}
	if row.Processed() {
		t.Fatal("fresh event row must be unprocessed")
	}
	got, err := row.Domain()
	if err != nil {
		t.Fatalf("Domain: %v", err)
	}
	if got.ID != ev.ID || got.CorpusName != ev.CorpusName || got.Payload != ev.Payload {
		t.Fatalf("row round trip changed event: %#v -> %#v", ev, got)
	}
}
