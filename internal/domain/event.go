package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/akira/indexify/internal/platform/apperr"
)

type EventKind string

const (
	EventBindingAdded   EventKind = "binding_added"
	EventContentCreated EventKind = "content_created"
)

// EventPayload is a closed union: BindingAdded or ContentCreated.
type EventPayload interface {
	EventKind() EventKind
}

type BindingAdded struct {
	Corpus    string `json:"corpus"`
	BindingID string `json:"binding_id"`
}

func (BindingAdded) EventKind() EventKind { return EventBindingAdded }

type ContentCreated struct {
	ContentID string `json:"content_id"`
}

func (ContentCreated) EventKind() EventKind { return EventContentCreated }

// ExtractionEvent is one outbox entry. The id is random: events carry no
// identity of their own and consumers deduplicate on the payload's
// deterministic ids instead.
type ExtractionEvent struct {
	ID         string
	CorpusName string
	Payload    EventPayload
}

func NewExtractionEvent(corpus string, payload EventPayload) *ExtractionEvent {
	return &ExtractionEvent{
		ID:         uuid.NewString(),
		CorpusName: corpus,
		Payload:    payload,
	}
}

type eventEnvelope struct {
	Kind EventKind       `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func MarshalEventPayload(p EventPayload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "encode event payload", err)
	}
	return json.Marshal(eventEnvelope{Kind: p.EventKind(), Data: data})
}

func UnmarshalEventPayload(raw []byte) (EventPayload, error) {
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, "decode event envelope", err)
	}
	switch env.Kind {
	case EventBindingAdded:
		var p BindingAdded
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, apperr.Wrap(apperr.KindSerialization, "decode binding_added payload", err)
		}
		return p, nil
	case EventContentCreated:
		var p ContentCreated
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, apperr.Wrap(apperr.KindSerialization, "decode content_created payload", err)
		}
		return p, nil
	}
	return nil, apperr.Newf(apperr.KindSerialization, "unknown event kind %q", env.Kind)
}

// ExtractionEventRow is the outbox table: append-only, immutable except for
// the processed marker.
type ExtractionEventRow struct {
	ID             string         `gorm:"column:id;primaryKey"`
	CorpusName     string         `gorm:"column:corpus_name;index"`
	Payload        datatypes.JSON `gorm:"column:payload;type:jsonb"`
	AllocationInfo datatypes.JSON `gorm:"column:allocation_info;type:jsonb"`
	ProcessedAt    *int64         `gorm:"column:processed_at;index"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index"`
}

func (ExtractionEventRow) TableName() string { return "extraction_event" }

func (e *ExtractionEvent) Row() (*ExtractionEventRow, error) {
	payload, err := MarshalEventPayload(e.Payload)
	if err != nil {
		return nil, err
	}
	return &ExtractionEventRow{
		ID:         e.ID,
		CorpusName: e.CorpusName,
		Payload:    datatypes.JSON(payload),
	}, nil
}

func (r *ExtractionEventRow) Domain() (*ExtractionEvent, error) {
	payload, err := UnmarshalEventPayload(r.Payload)
	if err != nil {
		return nil, err
	}
	return &ExtractionEvent{
		ID:         r.ID,
		CorpusName: r.CorpusName,
		Payload:    payload,
	}, nil
}

func (r *ExtractionEventRow) Processed() bool { return r.ProcessedAt != nil }
