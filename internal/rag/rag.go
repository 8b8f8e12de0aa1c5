package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"textbook-rag/internal/config"
	"textbook-rag/internal/embedding"
	"textbook-rag/internal/helper"
	"textbook-rag/internal/llmservice"
	"textbook-rag/internal/models"
	"textbook-rag/internal/parser"
	"textbook-rag/internal/store"
)

type RAG struct {
	store     store.VectorStore
	embedder  embedding.Embedder
	generator llmservice.Generator
	cfg       *config.Config
}

func NewRAG(vectorStore store.VectorStore, embedder embedding.Embedder, generator llmservice.Generator, cfg *config.Config) *RAG {
	return &RAG{store: vectorStore, embedder: embedder, generator: generator, cfg: cfg}
}

// Query answers a question from the indexed course material. The response
// carries the retrieved context and (document, page) citations in relevance
// order.
func (r *RAG) Query(ctx context.Context, query string) (*models.PromptResponse, error) {
	queryID, _ := helper.GenerateUUID()
	log.Debug().Str("query_id", queryID).Str("query", query).Msg("Answering query")

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", models.ErrBackendUnavailable, err)
	}

	results, err := r.store.Search(ctx, queryEmbedding, r.cfg.RAG.TopK)
	if err != nil {
		return nil, err
	}

	var contextText strings.Builder
	for _, result := range results {
		contextText.WriteString(result.Content + "\n\n")
	}

	prompt := fmt.Sprintf(models.RAGPromptTemplate, contextText.String(), query)
	answer, err := r.generator.GenerateText(ctx, models.SystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	return &models.PromptResponse{
		Query:     query,
		Source:    strings.TrimSpace(contextText.String()),
		Content:   answer,
		Citations: citationsFor(results),
	}, nil
}

// BuildIndex parses, embeds and stores every supported document under the
// configured directory, replacing the index contents. It returns the number
// of entries stored. Files that fail to parse are logged and skipped.
func (r *RAG) BuildIndex(ctx context.Context) (int, error) {
	files, err := parser.FindDocuments(r.cfg.DocsDir, r.cfg.Chromem.Path)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, fmt.Errorf("%w: no documents found under %s", models.ErrInvalidConfiguration, r.cfg.DocsDir)
	}
	log.Info().Int("files", len(files)).Str("dir", r.cfg.DocsDir).Msg("Found course documents")

	dimension, err := embedding.Probe(ctx, r.embedder)
	if err != nil {
		return 0, err
	}
	log.Debug().Int("dimension", dimension).Msg("Embedding backend reachable")

	var entries []models.ChunkEmbedding
	for _, file := range files {
		chunks, err := parser.Parse(file, r.cfg)
		if err != nil {
			log.Error().Err(err).Str("file", file).Msg("Error parsing document")
			continue
		}
		chunkEmbeddings, err := embedding.GenerateEmbedding(ctx, r.embedder, file, chunks)
		if err != nil {
			return 0, err
		}
		entries = append(entries, chunkEmbeddings...)
		log.Info().Str("file", file).Int("chunks", len(chunkEmbeddings)).Msg("Embedded document")
	}

	if err := r.store.Rebuild(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func citationsFor(results []models.SearchResult) []models.Citation {
	seen := make(map[models.Citation]bool, len(results))
	var citations []models.Citation
	for _, result := range results {
		citation := models.Citation{
			Document: filepath.Base(result.SourceFilename),
			Page:     result.PageNumber,
		}
		if seen[citation] {
			continue
		}
		seen[citation] = true
		citations = append(citations, citation)
	}
	return citations
}
