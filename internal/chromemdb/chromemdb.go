package chromemdb

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"textbook-rag/internal/models"
)

// VectorDBManager encapsulates the chromem-go database operations. Rebuild is
// exclusive with Search: a query running concurrently with a rebuild blocks
// until the rebuild completes and never observes a partially built index.
type VectorDBManager struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	dbPath     string
	name       string
	compress   bool
}

// NewVectorDBManager opens (or creates) a persistent database at dbPath.
// Entries added in a previous run are loaded back from disk.
func NewVectorDBManager(dbPath, collectionName string, compress bool) (*VectorDBManager, error) {
	db, err := chromem.NewPersistentDB(dbPath, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %v", err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &VectorDBManager{
		db:         db,
		collection: collection,
		dbPath:     dbPath,
		name:       collectionName,
		compress:   compress,
	}, nil
}

// Rebuild atomically replaces the index contents with the given entries.
func (m *VectorDBManager) Rebuild(ctx context.Context, entries []models.ChunkEmbedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.db.DeleteCollection(m.name); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	collection, err := m.db.GetOrCreateCollection(m.name, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection: %v", err)
	}
	m.collection = collection

	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(entries))
	for i, entry := range entries {
		seq := i + 1
		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("%06d-%s-p%d-c%d", seq, filepath.Base(entry.SourceFilename), entry.PageNumber, entry.ChunkID),
			Content:   entry.Content,
			Metadata:  entryMetadata(entry, seq),
			Embedding: entry.Embedding,
		})
	}
	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Search returns the k entries nearest to the query embedding, at most the
// number of entries in the index. Ties on similarity keep insertion order.
func (m *VectorDBManager) Search(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := m.collection.Count()
	if count == 0 {
		return nil, models.ErrEmptyIndex
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", models.ErrInvalidConfiguration)
	}

	results, err := m.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	type ranked struct {
		result models.SearchResult
		seq    int
	}
	out := make([]ranked, 0, len(results))
	for _, res := range results {
		out = append(out, ranked{result: toSearchResult(res), seq: metaInt(res.Metadata, "seq")})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].result.Similarity != out[j].result.Similarity {
			return out[i].result.Similarity > out[j].result.Similarity
		}
		return out[i].seq < out[j].seq
	})

	searchResults := make([]models.SearchResult, len(out))
	for i, r := range out {
		searchResults[i] = r.result
	}
	return searchResults, nil
}

// Count reports the number of entries in the index.
func (m *VectorDBManager) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collection.Count(), nil
}

// Close is a no-op; chromem persists each write as it happens.
func (m *VectorDBManager) Close() error {
	return nil
}

func entryMetadata(entry models.ChunkEmbedding, seq int) map[string]string {
	return map[string]string{
		"source":   entry.SourceFilename,
		"page":     strconv.Itoa(entry.PageNumber),
		"chunk_id": strconv.Itoa(entry.ChunkID),
		"seq":      strconv.Itoa(seq),
	}
}

func toSearchResult(res chromem.Result) models.SearchResult {
	return models.SearchResult{
		ChunkEmbedding: models.ChunkEmbedding{
			Content:        res.Content,
			Embedding:      res.Embedding,
			SourceFilename: res.Metadata["source"],
			PageNumber:     metaInt(res.Metadata, "page"),
			ChunkID:        metaInt(res.Metadata, "chunk_id"),
		},
		Similarity: res.Similarity,
	}
}

func metaInt(metadata map[string]string, key string) int {
	n, _ := strconv.Atoi(metadata[key])
	return n
}
