package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/akira/indexify/internal/platform/logger"
	"github.com/akira/indexify/internal/vector"
)

const maxErrorBodyBytes = 1024

type vectorStore struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

func NewVectorStore(log *logger.Logger, cfg Config) (vector.Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	s := &vectorStore{
		log:     log.With("service", "QdrantVectorStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	return s, nil
}

func (s *vectorStore) CreateIndex(ctx context.Context, params vector.CreateIndexParams) error {
	const op = "create_index"
	collection := strings.TrimSpace(params.VectorIndexName)
	if collection == "" {
		return opErr(op, OperationErrorValidation, "vector index name is required", nil)
	}
	if params.Dim <= 0 {
		return opErr(op, OperationErrorValidation, fmt.Sprintf("vector dim must be positive, got %d", params.Dim), nil)
	}
	distance, err := mapDistance(params.Distance)
	if err != nil {
		return opErr(op, OperationErrorValidation, err.Error(), nil)
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     params.Dim,
			"distance": distance,
		},
	}
	status, err := s.doJSON(ctx, op, http.MethodPut, "/collections/"+sanitizeCollection(collection), req)
	if err != nil {
		var oe *OperationError
		// A collection that already exists is a success, not a conflict.
		if errors.As(err, &oe) && oe.StatusCode == http.StatusConflict {
			s.log.Debug("collection already exists", "collection", collection)
			return nil
		}
		return err
	}
	s.log.Info("vector index created", "collection", collection, "dim", params.Dim, "distance", distance, "status", status)
	return nil
}

func mapDistance(d vector.Distance) (string, error) {
	switch d {
	case vector.DistanceCosine:
		return "Cosine", nil
	case vector.DistanceDot:
		return "Dot", nil
	case vector.DistanceEuclidean:
		return "Euclid", nil
	}
	return "", fmt.Errorf("unknown distance metric %q", d)
}

func sanitizeCollection(collection string) string {
	return strings.ReplaceAll(collection, "/", "-")
}

func (s *vectorStore) doJSON(ctx context.Context, op, method, path string, body any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, opErr(op, OperationErrorEncodeFailed, "encode request body", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, opErr(op, OperationErrorEncodeFailed, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("api-key", s.cfg.APIKey)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return 0, opErr(op, OperationErrorTimeout, "request timed out", err)
		}
		return 0, opErr(op, OperationErrorTransportFailed, "request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return resp.StatusCode, &OperationError{
			Code:       OperationErrorRequestFailed,
			Operation:  op,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(snippet)),
		}
	}
	return resp.StatusCode, nil
}
