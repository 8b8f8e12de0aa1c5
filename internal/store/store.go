package store

import (
	"context"
	"fmt"

	"textbook-rag/internal/chromemdb"
	"textbook-rag/internal/config"
	"textbook-rag/internal/db"
	"textbook-rag/internal/models"
)

// VectorStore is a persisted nearest-neighbor index over chunk embeddings.
// Implementations guarantee that Rebuild is exclusive with Search, that
// Search on an empty index returns models.ErrEmptyIndex, and that k is
// clamped to the number of entries.
type VectorStore interface {
	Rebuild(ctx context.Context, entries []models.ChunkEmbedding) error
	Search(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	_ VectorStore = (*chromemdb.VectorDBManager)(nil)
	_ VectorStore = (*db.Store)(nil)
)

// New creates the vector store named in the config.
func New(cfg *config.Config) (VectorStore, error) {
	switch cfg.Store {
	case config.StoreChromem:
		return chromemdb.NewVectorDBManager(cfg.Chromem.Path, cfg.Chromem.Collection, cfg.Chromem.Compress)
	case config.StorePostgres:
		return db.NewStore(&cfg.Database)
	default:
		return nil, fmt.Errorf("%w: unknown store %q", models.ErrInvalidConfiguration, cfg.Store)
	}
}
