package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"textbook-rag/internal/config"
	"textbook-rag/internal/models"
)

type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Content        string    `bun:"content,notnull"`
	Embedding      []float32 `bun:"embedding,notnull,type:vector(768)"`
	SourceFilename string    `bun:"source_filename"`
	PageNumber     int       `bun:"page_number"`
	ChunkID        int       `bun:"chunk_id"`
	Seq            int       `bun:"seq,notnull"`

	Distance float64 `bun:"distance,scanonly"`
}

// Store is a pgvector-backed vector index. Rebuild is exclusive with Search.
type Store struct {
	mu         sync.RWMutex
	db         *bun.DB
	vectorSize int
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	if cfg.Driver == "pq" {
		return sql.Open("postgres", cfg.URL)
	}
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.URL))), nil
}

// NewStore connects and ensures the pgvector schema exists.
func NewStore(cfg *config.DatabaseConfig) (*Store, error) {
	sqldb, err := ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		bunDB.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	s := &Store{db: bunDB, vectorSize: cfg.VectorSize}
	if err := s.initSchema(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("error creating vector extension: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.createTableSQL()); err != nil {
		return fmt.Errorf("error creating documents table: %w", err)
	}
	return nil
}

func (s *Store) createTableSQL() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		content TEXT NOT NULL,
		embedding vector(%d) NOT NULL,
		source_filename TEXT,
		page_number INT,
		chunk_id INT,
		seq INT NOT NULL
	)`, s.vectorSize)
}

// Rebuild atomically replaces the table contents in a single transaction.
func (s *Store) Rebuild(ctx context.Context, entries []models.ChunkEmbedding) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDropTable().Model((*Document)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.createTableSQL()); err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		docs := make([]Document, len(entries))
		for i, entry := range entries {
			docs[i] = Document{
				Content:        entry.Content,
				Embedding:      entry.Embedding,
				SourceFilename: entry.SourceFilename,
				PageNumber:     entry.PageNumber,
				ChunkID:        entry.ChunkID,
				Seq:            i + 1,
			}
		}
		_, err := tx.NewInsert().Model(&docs).Exec(ctx)
		return err
	})
}

// Search returns the k nearest entries by L2 distance, ties broken by
// insertion order. The distance is mapped onto a bounded similarity score.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count, err := s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, models.ErrEmptyIndex
	}
	if k > count {
		k = count
	}

	var docs []Document
	err = s.db.NewSelect().
		Model(&docs).
		ColumnExpr("d.*").
		ColumnExpr("embedding <-> ? AS distance", vectorParam(embedding)).
		OrderExpr("embedding <-> ?", vectorParam(embedding)).
		OrderExpr("seq ASC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, len(docs))
	for i, doc := range docs {
		results[i] = models.SearchResult{
			ChunkEmbedding: models.ChunkEmbedding{
				Content:        doc.Content,
				Embedding:      doc.Embedding,
				SourceFilename: doc.SourceFilename,
				PageNumber:     doc.PageNumber,
				ChunkID:        doc.ChunkID,
			},
			Similarity: float32(1.0 / (1.0 + doc.Distance)),
		}
	}
	return results, nil
}

// Count reports the number of entries in the index.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.NewSelect().Model((*Document)(nil)).Count(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// vectorParam renders an embedding in the pgvector text format.
func vectorParam(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
