package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akira/indexify/internal/platform/logger"
	"github.com/akira/indexify/internal/vector"
)

func testConfig(url string) Config {
	return Config{URL: url, Timeout: 5 * time.Second}
}

func newServerStore(t *testing.T, handler http.HandlerFunc) (vector.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := NewVectorStore(logger.NewNop(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}
	return s, srv
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"http", "http://localhost:6333", false},
		{"https", "https://qdrant.example.com", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"no scheme", "localhost:6333", true},
		{"bad scheme", "ftp://localhost", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(Config{URL: tc.url})
			if (err != nil) != tc.wantErr {
				t.Fatalf("ValidateConfig(%q) = %v, wantErr %v", tc.url, err, tc.wantErr)
			}
		})
	}
}

func TestCreateIndexSendsCollectionRequest(t *testing.T) {
	var gotPath, gotMethod, gotKey string
	var gotBody map[string]any
	s, _ := newServerStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotKey = r.Header.Get("api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	err := s.CreateIndex(context.Background(), vector.CreateIndexParams{
		VectorIndexName: "docs/embeddings",
		Dim:             384,
		Distance:        vector.DistanceCosine,
	})
	if err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Fatalf("method = %q", gotMethod)
	}
	// Slashes in the collection name would split the URL path.
	if gotPath != "/collections/docs-embeddings" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "" {
		t.Fatalf("api-key sent without configuration: %q", gotKey)
	}
	vectors, ok := gotBody["vectors"].(map[string]any)
	if !ok {
		t.Fatalf("request body missing vectors: %v", gotBody)
	}
	if vectors["size"] != float64(384) || vectors["distance"] != "Cosine" {
		t.Fatalf("vectors config = %v", vectors)
	}
}

func TestCreateIndexSendsAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("api-key")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.APIKey = "secret"
	s, err := NewVectorStore(logger.NewNop(), cfg)
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}
	if err := s.CreateIndex(context.Background(), vector.CreateIndexParams{
		VectorIndexName: "idx",
		Dim:             8,
		Distance:        vector.DistanceDot,
	}); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if gotKey != "secret" {
		t.Fatalf("api-key header = %q", gotKey)
	}
}

func TestCreateIndexConflictIsSuccess(t *testing.T) {
	s, _ := newServerStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	err := s.CreateIndex(context.Background(), vector.CreateIndexParams{
		VectorIndexName: "idx",
		Dim:             8,
		Distance:        vector.DistanceCosine,
	})
	if err != nil {
		t.Fatalf("existing collection must not error: %v", err)
	}
}

func TestCreateIndexServerError(t *testing.T) {
	s, _ := newServerStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of disk", http.StatusInternalServerError)
	})
	err := s.CreateIndex(context.Background(), vector.CreateIndexParams{
		VectorIndexName: "idx",
		Dim:             8,
		Distance:        vector.DistanceCosine,
	})
	var oe *OperationError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OperationError, got %v", err)
	}
	if oe.Code != OperationErrorRequestFailed || oe.StatusCode != http.StatusInternalServerError {
		t.Fatalf("classification = %+v", oe)
	}
	if oe.Message != "out of disk" {
		t.Fatalf("message should carry the body snippet, got %q", oe.Message)
	}
}

func TestCreateIndexValidation(t *testing.T) {
	s, _ := newServerStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("invalid params must not reach the server")
	})
	cases := []struct {
		name   string
		params vector.CreateIndexParams
	}{
		{"empty name", vector.CreateIndexParams{Dim: 8, Distance: vector.DistanceCosine}},
		{"zero dim", vector.CreateIndexParams{VectorIndexName: "idx", Distance: vector.DistanceCosine}},
		{"bad distance", vector.CreateIndexParams{VectorIndexName: "idx", Dim: 8, Distance: vector.Distance("chebyshev")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.CreateIndex(context.Background(), tc.params)
			var oe *OperationError
			if !errors.As(err, &oe) || oe.Code != OperationErrorValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateIndexTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s, err := NewVectorStore(logger.NewNop(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewVectorStore: %v", err)
	}
	err = s.CreateIndex(context.Background(), vector.CreateIndexParams{
		VectorIndexName: "idx",
		Dim:             8,
		Distance:        vector.DistanceCosine,
	})
	var oe *OperationError
	if !errors.As(err, &oe) || oe.Code != OperationErrorTransportFailed {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestMapDistance(t *testing.T) {
	cases := map[vector.Distance]string{
		vector.DistanceCosine:    "Cosine",
		vector.DistanceDot:       "Dot",
		vector.DistanceEuclidean: "Euclid",
	}
	for in, want := range cases {
		got, err := mapDistance(in)
		if err != nil || got != want {
			t.Fatalf("mapDistance(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := mapDistance(vector.Distance("manhattan")); err == nil {
		t.Fatal("unknown distance must error")
	}
}
