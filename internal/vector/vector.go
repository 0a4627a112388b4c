// Package vector defines the narrow contract this store requires from a
// vector-index backend. The store only declares indexes; search and upsert
// belong to the extraction pipeline downstream.
package vector

import (
	"context"
	"fmt"
	"strings"
)

type Distance string

const (
	DistanceCosine    Distance = "cosine"
	DistanceDot       Distance = "dot"
	DistanceEuclidean Distance = "euclidean"
)

func ParseDistance(s string) (Distance, error) {
	switch Distance(strings.ToLower(strings.TrimSpace(s))) {
	case DistanceCosine:
		return DistanceCosine, nil
	case DistanceDot:
		return DistanceDot, nil
	case DistanceEuclidean:
		return DistanceEuclidean, nil
	}
	return "", fmt.Errorf("unknown distance metric %q", s)
}

type CreateIndexParams struct {
	// IndexName is the store-facing index name.
	IndexName string
	// VectorIndexName is the backend collection the vectors land in.
	VectorIndexName string
	Dim             int
	Distance        Distance
}

type Store interface {
	CreateIndex(ctx context.Context, params CreateIndexParams) error
}
